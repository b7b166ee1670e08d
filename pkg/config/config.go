package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Year      int
	Semesters []string
	Workers   int
	OutputDir string
	UserAgent string

	Cache    CacheConfig
	Database DatabaseConfig
	Log      LogConfig
	Cloud    CloudConfig
}

type CacheConfig struct {
	Dir      string
	Disabled bool
}

type DatabaseConfig struct {
	File string
}

type LogConfig struct {
	Level  string
	Format string
}

// CloudConfig names the BigQuery dataset and Pub/Sub topic used by sync.
type CloudConfig struct {
	Project string
	Dataset string
	Topic   string
}

// Load reads the configuration from the environment (TAU_ prefixed), an
// optional .env file, and whatever flags were bound into v.
func Load(v *viper.Viper) (*Config, error) {
	_ = godotenv.Load()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.SetEnvPrefix("TAU")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{
		Env:       v.GetString("ENV"),
		Year:      v.GetInt("YEAR"),
		Semesters: splitAndTrim(v.GetString("SEMESTERS")),
		Workers:   v.GetInt("WORKERS"),
		OutputDir: v.GetString("OUTPUT_DIR"),
		UserAgent: v.GetString("USER_AGENT"),
	}

	cfg.Cache = CacheConfig{
		Dir:      v.GetString("CACHE_DIR"),
		Disabled: v.GetBool("NO_CACHE"),
	}

	cfg.Database = DatabaseConfig{
		File: v.GetString("DB_FILE"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cloud = CloudConfig{
		Project: v.GetString("BIGQUERY_PROJECT"),
		Dataset: v.GetString("BIGQUERY_DATASET"),
		Topic:   v.GetString("PUBSUB_TOPIC"),
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		userCacheDir = os.TempDir()
	}

	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("YEAR", 2023)
	v.SetDefault("SEMESTERS", "a,b")
	v.SetDefault("WORKERS", 1)
	v.SetDefault("OUTPUT_DIR", ".")
	v.SetDefault("USER_AGENT", "CourseScrape")
	v.SetDefault("CACHE_DIR", filepath.Join(userCacheDir, "taucourses", "web-cache"))
	v.SetDefault("NO_CACHE", false)
	v.SetDefault("DB_FILE", filepath.Join(userCacheDir, "taucourses", "taucourses.db"))
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("BIGQUERY_DATASET", "taucourses")
	v.SetDefault("PUBSUB_TOPIC", "catalog-refreshed")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
