package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	Dashboard   DashboardConfig
	Progression ProgressionConfig
	Jobs        JobsConfig
	AMQP        AMQPConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	Migrate      bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs dashboard caching.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ProgressionConfig tunes the scoring and progression rules.
type ProgressionConfig struct {
	Timezone                string
	RestDay                 string
	FeedbackWindow          string
	ProrationMode           string
	GradeTableFile          string
	LessonsPerWorkday       int
	PendingLessonLimit      int
	FeedbackRatioFloor      float64
	FeedbackRatioMinLessons int
	OwnMentorShare          float64
	StrictConcession        bool
}

// JobsConfig controls the scheduled sweeps and reminder dispatch.
type JobsConfig struct {
	Enabled            bool
	DebtReminderCron   string
	EvaluatedResetCron string
	ReminderWorkers    int
	ReminderRetries    int
	ReminderRetryDelay time.Duration
}

// AMQPConfig points reminder publication at a broker. An empty URL logs reminders instead.
type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		Migrate:      v.GetBool("DB_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled: v.GetBool("ENABLE_DASHBOARD_CACHE"),
		CacheTTL:     parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Progression = ProgressionConfig{
		Timezone:                v.GetString("PROGRESSION_TIMEZONE"),
		RestDay:                 v.GetString("PROGRESSION_REST_DAY"),
		FeedbackWindow:          v.GetString("FEEDBACK_WINDOW"),
		ProrationMode:           v.GetString("PRORATION_MODE"),
		GradeTableFile:          v.GetString("GRADE_TABLE_FILE"),
		LessonsPerWorkday:       v.GetInt("LESSONS_PER_WORKDAY"),
		PendingLessonLimit:      v.GetInt("PENDING_LESSON_LIMIT"),
		FeedbackRatioFloor:      v.GetFloat64("FEEDBACK_RATIO_FLOOR"),
		FeedbackRatioMinLessons: v.GetInt("FEEDBACK_RATIO_MIN_LESSONS"),
		OwnMentorShare:          v.GetFloat64("OWN_MENTOR_SHARE"),
		StrictConcession:        v.GetBool("CONCESSION_REQUIRES_DEADLINE"),
	}

	cfg.Jobs = JobsConfig{
		Enabled:            v.GetBool("ENABLE_JOBS"),
		DebtReminderCron:   v.GetString("DEBT_REMINDER_CRON"),
		EvaluatedResetCron: v.GetString("EVALUATED_RESET_CRON"),
		ReminderWorkers:    v.GetInt("REMINDER_WORKERS"),
		ReminderRetries:    v.GetInt("REMINDER_RETRIES"),
		ReminderRetryDelay: parseDuration(v.GetString("REMINDER_RETRY_DELAY"), 5*time.Second),
	}

	cfg.AMQP = AMQPConfig{
		URL:        v.GetString("AMQP_URL"),
		Exchange:   v.GetString("AMQP_EXCHANGE"),
		RoutingKey: v.GetString("AMQP_ROUTING_KEY"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "intern_progress")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_DASHBOARD_CACHE", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("PROGRESSION_TIMEZONE", "Asia/Tashkent")
	v.SetDefault("PROGRESSION_REST_DAY", "sunday")
	v.SetDefault("FEEDBACK_WINDOW", "week")
	v.SetDefault("PRORATION_MODE", "elapsed")
	v.SetDefault("GRADE_TABLE_FILE", "")
	v.SetDefault("LESSONS_PER_WORKDAY", 2)
	v.SetDefault("PENDING_LESSON_LIMIT", 3)
	v.SetDefault("FEEDBACK_RATIO_FLOOR", 0.7)
	v.SetDefault("FEEDBACK_RATIO_MIN_LESSONS", 5)
	v.SetDefault("OWN_MENTOR_SHARE", 0.3)
	v.SetDefault("CONCESSION_REQUIRES_DEADLINE", false)

	v.SetDefault("ENABLE_JOBS", false)
	v.SetDefault("DEBT_REMINDER_CRON", "0 10 * * *")
	v.SetDefault("EVALUATED_RESET_CRON", "0 0 * * 1")
	v.SetDefault("REMINDER_WORKERS", 2)
	v.SetDefault("REMINDER_RETRIES", 3)
	v.SetDefault("REMINDER_RETRY_DELAY", "5s")

	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "mentorship.reminders")
	v.SetDefault("AMQP_ROUTING_KEY", "mentor.debt")
}

func isMissingFile(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
