package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-progress-api/pkg/config"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	assert.Equal(t, ups, downs)
}

func TestLegacyStatusBackfillIsEmbedded(t *testing.T) {
	raw, err := fs.ReadFile(migrationFiles, "migrations/000002_lesson_status_backfill.up.sql")
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "SET status = 'pending'")
	assert.Contains(t, body, "SET NOT NULL")
}

func TestInternScoreIsDoublePrecision(t *testing.T) {
	raw, err := fs.ReadFile(migrationFiles, "migrations/000004_intern_score_precision.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "score TYPE DOUBLE PRECISION")
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", dsn)
}
