package config

import (
	"errors"
	"io/fs"
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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Solver    SolverConfig
	Simulator SimulatorConfig
	Exports   ExportsConfig
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
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig points at the external timetable solver API.
type SolverConfig struct {
	BaseURL     string
	APIToken    string
	HTTPTimeout time.Duration
}

// SimulatorConfig governs wizard sessions and the defaults of new simulations.
type SimulatorConfig struct {
	SessionTTL              time.Duration
	RunWorkers              int
	PersistSessions         bool
	InstitutionSource       bool
	WorkingDays             []string
	DefaultPeriodsPerDay    int
	MaxTeacherPeriodsPerDay int
	MaxConsecutivePeriods   int
	TimeLimitSeconds        int
}

// ExportsConfig controls where rendered timetables are written and how downloads are signed.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
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
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
		Expiry: parseDuration(v.GetString("JWT_ACCESS_TOKEN_EXPIRY"), time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Solver = SolverConfig{
		BaseURL:     strings.TrimRight(v.GetString("SOLVER_BASE_URL"), "/"),
		APIToken:    v.GetString("SOLVER_API_TOKEN"),
		HTTPTimeout: parseDuration(v.GetString("SOLVER_HTTP_TIMEOUT"), 0),
	}

	cfg.Simulator = SimulatorConfig{
		SessionTTL:              parseDuration(v.GetString("SIM_SESSION_TTL"), 2*time.Hour),
		RunWorkers:              v.GetInt("SIM_RUN_WORKERS"),
		PersistSessions:         v.GetBool("ENABLE_SESSION_PERSISTENCE"),
		InstitutionSource:       v.GetBool("ENABLE_INSTITUTION_SOURCE"),
		WorkingDays:             splitAndTrim(v.GetString("SIM_WORKING_DAYS")),
		DefaultPeriodsPerDay:    v.GetInt("SIM_DEFAULT_PERIODS_PER_DAY"),
		MaxTeacherPeriodsPerDay: v.GetInt("SIM_MAX_TEACHER_PERIODS_PER_DAY"),
		MaxConsecutivePeriods:   v.GetInt("SIM_MAX_CONSECUTIVE"),
		TimeLimitSeconds:        v.GetInt("SIM_TIME_LIMIT_SECONDS"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), time.Hour),
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
	v.SetDefault("DB_NAME", "sma_schedule_sim")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_ACCESS_TOKEN_EXPIRY", "1h")
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("SOLVER_API_TOKEN", "")
	v.SetDefault("SOLVER_HTTP_TIMEOUT", "")

	v.SetDefault("SIM_SESSION_TTL", "2h")
	v.SetDefault("SIM_RUN_WORKERS", 2)
	v.SetDefault("ENABLE_SESSION_PERSISTENCE", false)
	v.SetDefault("ENABLE_INSTITUTION_SOURCE", false)
	v.SetDefault("SIM_WORKING_DAYS", "Sunday,Monday,Tuesday,Wednesday,Thursday")
	v.SetDefault("SIM_DEFAULT_PERIODS_PER_DAY", 7)
	v.SetDefault("SIM_MAX_TEACHER_PERIODS_PER_DAY", 6)
	v.SetDefault("SIM_MAX_CONSECUTIVE", 3)
	v.SetDefault("SIM_TIME_LIMIT_SECONDS", 60)

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "1h")
}

// isMissingFile treats an absent .env as "no file config" rather than a failure.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
