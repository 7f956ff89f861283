package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRegisterRejectsBadSpecAndDuplicates(t *testing.T) {
	s := New(time.UTC, nil)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Register("debt-reminders", "0 10 * * *", noop))
	assert.Error(t, s.Register("debt-reminders", "0 10 * * *", noop))
	assert.Error(t, s.Register("broken", "every tuesday", noop))
}

func TestRunNowRecordsLastRun(t *testing.T) {
	var completed []Result
	s := New(time.UTC, nil, WithOnComplete(func(r Result) { completed = append(completed, r) }))
	calls := 0
	require.NoError(t, s.Register("reset-evaluated", "0 0 * * 1", func(context.Context) error {
		calls++
		if calls == 2 {
			return errors.New("db down")
		}
		return nil
	}))

	res, err := s.RunNow(context.Background(), "reset-evaluated")
	require.NoError(t, err)
	assert.True(t, res.Manual)
	assert.Empty(t, res.Error)

	_, err = s.RunNow(context.Background(), "reset-evaluated")
	assert.EqualError(t, err, "db down")

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].LastRun)
	assert.Equal(t, "db down", tasks[0].LastRun.Error)
	assert.Len(t, completed, 2)
}

func TestRunNowUnknownTask(t *testing.T) {
	s := New(time.UTC, nil)
	_, err := s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestStartStopDoesNotLeak(t *testing.T) {
	s := New(time.FixedZone("UTC+5", 5*3600), nil)
	require.NoError(t, s.Register("debt-reminders", "0 10 * * *", func(context.Context) error { return nil }))
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
