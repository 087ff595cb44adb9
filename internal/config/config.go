package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr         string
	DBPath             string
	DocBackend         string
	PostgresDSN        string
	BlobPath           string
	PublicBaseURL      string
	AssetPrefix        string
	RequireImage       bool
	StepTimeout        time.Duration
	SeedConcurrency    int
	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
	LogFile            string
}

// Load reads configuration from the environment, falling back to an optional
// YAML file named by CONFIG_FILE and then to defaults. Keys in the file are
// the lower-case forms of the variable names, e.g. listen_addr.
func Load() *Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("failed to read config file, using defaults and env vars", "path", path, "error", err)
		}
	}

	return &Config{
		ListenAddr:         v.GetString("listen_addr"),
		DBPath:             v.GetString("db_path"),
		DocBackend:         v.GetString("doc_backend"),
		PostgresDSN:        v.GetString("postgres_dsn"),
		BlobPath:           v.GetString("blob_path"),
		PublicBaseURL:      v.GetString("public_base_url"),
		AssetPrefix:        v.GetString("asset_prefix"),
		RequireImage:       v.GetBool("require_image"),
		StepTimeout:        v.GetDuration("step_timeout"),
		SeedConcurrency:    v.GetInt("seed_concurrency"),
		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		LogFile:            v.GetString("log_file"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config_file", "")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("db_path", "/data/boxoffice.db")
	v.SetDefault("doc_backend", "sqlite")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("blob_path", "/data/blobs")
	v.SetDefault("public_base_url", "http://localhost:8080/assets")
	v.SetDefault("asset_prefix", "posters")
	v.SetDefault("require_image", true)
	v.SetDefault("step_timeout", "30s")
	v.SetDefault("seed_concurrency", 4)
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("log_file", "")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
