package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Sync      SyncConfig
	Sources   SourcesConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// SyncConfig holds reconciliation pipeline tuning
type SyncConfig struct {
	Enabled         bool          // scheduled full-pipeline runs
	Interval        time.Duration // pause between scheduled full runs
	BatchSize       int           // engine partition size
	SmallBatchSize  int           // partition size for documents and options
	FlushEvery      int           // pending-write window
	BatchBudget     time.Duration // soft wall-clock limit per batch
	BatchPause      time.Duration // inter-batch pause
	ErrorsAsFailure bool          // record runs with errors>0 as FAILED
	MonitorInterval time.Duration // stuck-run sweep interval
	StuckThreshold  time.Duration // IN_PROGRESS age before reclassification
}

// SourceConfig holds one vendor platform's connection settings
type SourceConfig struct {
	Enabled    bool
	BaseURL    string        `validate:"omitempty,url"`
	Token      string        // bearer token (SITEX) or feed key (WEBRA/UNITEK)
	Timeout    time.Duration `validate:"omitempty,min=1s"`
	MaxRetries int           `validate:"min=0,max=10"`
	RetryDelay time.Duration
	FeedTTL    time.Duration // XML feed cache lifetime (WEBRA only)
	PageSize   int           // pagination window (UNITEK only)
	MaxPages   int           // page walk ceiling per fetch (UNITEK only)
}

// SourcesConfig holds the per-platform source settings
type SourcesConfig struct {
	Sitex  SourceConfig
	Webra  SourceConfig
	Unitek SourceConfig
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	DBTraceEnabled    bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with VITRINA_ prefix (e.g., VITRINA_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("VITRINA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Sync: SyncConfig{
			Enabled:         v.GetBool("sync.enabled"),
			Interval:        v.GetDuration("sync.interval"),
			BatchSize:       v.GetInt("sync.batch_size"),
			SmallBatchSize:  v.GetInt("sync.small_batch_size"),
			FlushEvery:      v.GetInt("sync.flush_every"),
			BatchBudget:     v.GetDuration("sync.batch_budget"),
			BatchPause:      v.GetDuration("sync.batch_pause"),
			ErrorsAsFailure: v.GetBool("sync.errors_as_failure"),
			MonitorInterval: v.GetDuration("sync.monitor_interval"),
			StuckThreshold:  v.GetDuration("sync.stuck_threshold"),
		},
		Sources: SourcesConfig{
			Sitex:  loadSource(v, "sources.sitex"),
			Webra:  loadSource(v, "sources.webra"),
			Unitek: loadSource(v, "sources.unitek"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadSource(v *viper.Viper, prefix string) SourceConfig {
	return SourceConfig{
		Enabled:    v.GetBool(prefix + ".enabled"),
		BaseURL:    v.GetString(prefix + ".base_url"),
		Token:      v.GetString(prefix + ".token"),
		Timeout:    v.GetDuration(prefix + ".timeout"),
		MaxRetries: v.GetInt(prefix + ".max_retries"),
		RetryDelay: v.GetDuration(prefix + ".retry_delay"),
		FeedTTL:    v.GetDuration(prefix + ".feed_ttl"),
		PageSize:   v.GetInt(prefix + ".page_size"),
		MaxPages:   v.GetInt(prefix + ".max_pages"),
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "vitrina-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "vitrina"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = 6 * time.Hour
	}
	if cfg.Sync.BatchSize == 0 {
		cfg.Sync.BatchSize = 30
	}
	if cfg.Sync.SmallBatchSize == 0 {
		cfg.Sync.SmallBatchSize = 20
	}
	if cfg.Sync.FlushEvery == 0 {
		cfg.Sync.FlushEvery = 15
	}
	if cfg.Sync.BatchBudget == 0 {
		cfg.Sync.BatchBudget = 5 * time.Minute
	}
	if cfg.Sync.BatchPause == 0 {
		cfg.Sync.BatchPause = 100 * time.Millisecond
	}
	if cfg.Sync.MonitorInterval == 0 {
		cfg.Sync.MonitorInterval = 5 * time.Minute
	}
	if cfg.Sync.StuckThreshold == 0 {
		cfg.Sync.StuckThreshold = 2 * time.Hour
	}
	for _, src := range []*SourceConfig{&cfg.Sources.Sitex, &cfg.Sources.Webra, &cfg.Sources.Unitek} {
		if src.Timeout == 0 {
			src.Timeout = 30 * time.Second
		}
		if src.MaxRetries == 0 {
			src.MaxRetries = 3
		}
		if src.RetryDelay == 0 {
			src.RetryDelay = 2 * time.Second
		}
		if src.FeedTTL == 0 {
			src.FeedTTL = 30 * time.Minute
		}
		if src.PageSize == 0 {
			src.PageSize = 100
		}
		if src.MaxPages == 0 {
			src.MaxPages = 500
		}
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
}

func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	validate := validator.New()
	sources := map[string]*SourceConfig{
		"sitex":  &c.Sources.Sitex,
		"webra":  &c.Sources.Webra,
		"unitek": &c.Sources.Unitek,
	}
	for name, src := range sources {
		if err := validate.Struct(src); err != nil {
			return fmt.Errorf("sources.%s: %w", name, err)
		}
		if src.Enabled && src.BaseURL == "" {
			return fmt.Errorf("sources.%s.base_url is required when the source is enabled", name)
		}
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for name, src := range sources {
			if src.Enabled && src.Token == "" {
				return fmt.Errorf("sources.%s.token is required in production", name)
			}
		}
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
