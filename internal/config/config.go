package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "ESIGNCORE"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("job.task_time_limit", 180*time.Second)
	v.SetDefault("job.default_max_retries", 5)
	v.SetDefault("job.worker_pool_size", 10)

	v.SetDefault("auth.default_token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.access_uri_bytes", 66)

	v.SetDefault("storage.use_path_style", false)
	v.SetDefault("storage.signed_url_ttl", time.Hour)
	v.SetDefault("storage.max_upload_size", 50*1024*1024)

	v.SetDefault("external.timeout", 30*time.Second)

	v.SetDefault("email.default_subject", "A document needs your signature")
	v.SetDefault("email.default_body", "http://localhost:3000?{{params}}")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", true)
}

// Load reads config/app.yaml (falling back to defaults if absent) and
// overlays ESIGNCORE_-prefixed environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.Job.DSN == "" {
		cfg.Job.DSN = cfg.Database.DSN
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	return nil
}

// MustLoad panics on failure; used at process bootstrap where a bad config
// should never let a service half-start.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}
