package config

import "time"

// Config is the fully resolved application configuration, loaded from
// config/app.yaml and overridden by ESIGNCORE_-prefixed environment
// variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Job      JobConfig      `mapstructure:"job"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	External ExternalConfig `mapstructure:"external"`
	Email    EmailConfig    `mapstructure:"email"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int32  `mapstructure:"max_open_conns"`
	MaxIdleConns int32  `mapstructure:"max_idle_conns"`
}

type JobConfig struct {
	// DSN defaults to Database.DSN when empty; kept separate so the job
	// queue can live in its own database in production.
	DSN             string        `mapstructure:"dsn"`
	TaskTimeLimit   time.Duration `mapstructure:"task_time_limit"`
	DefaultMaxRetries int         `mapstructure:"default_max_retries"`
	WorkerPoolSize  int           `mapstructure:"worker_pool_size"`
}

type AuthConfig struct {
	JWTSecret        string        `mapstructure:"jwt_secret"`
	DefaultTokenTTL  time.Duration `mapstructure:"default_token_ttl"`
	BcryptCost       int           `mapstructure:"bcrypt_cost"`
	AccessURIBytes   int           `mapstructure:"access_uri_bytes"`
}

type StorageConfig struct {
	Bucket        string        `mapstructure:"bucket"`
	Region        string        `mapstructure:"region"`
	Endpoint      string        `mapstructure:"endpoint"`
	UsePathStyle  bool          `mapstructure:"use_path_style"`
	SignedURLTTL  time.Duration `mapstructure:"signed_url_ttl"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
}

type ExternalConfig struct {
	FieldExtractorURL string        `mapstructure:"field_extractor_url"`
	FieldLocatorURL   string        `mapstructure:"field_locator_url"`
	StamperURL        string        `mapstructure:"stamper_url"`
	AuditRendererURL  string        `mapstructure:"audit_renderer_url"`
	ConcatURL         string        `mapstructure:"concat_url"`
	PageRendererURL   string        `mapstructure:"page_renderer_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type EmailConfig struct {
	MailgunDomain string `mapstructure:"mailgun_domain"`
	MailgunAPIKey string `mapstructure:"mailgun_api_key"`
	Sender        string `mapstructure:"sender"`
	ReplyTo       string `mapstructure:"reply_to"`
	DefaultSubject string `mapstructure:"default_subject"`
	DefaultBody   string `mapstructure:"default_body"`
	TargetBaseURL string `mapstructure:"target_base_url"`
}

func (e EmailConfig) Configured() bool {
	return e.MailgunDomain != "" && e.MailgunAPIKey != ""
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}
