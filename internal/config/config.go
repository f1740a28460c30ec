package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Prefetch PrefetchConfig `mapstructure:"prefetch" validate:"required"`
	Client   ClientConfig   `mapstructure:"client"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"            validate:"required,gt=0,lt=65536"`
	LogLevel       string   `mapstructure:"log_level"       validate:"required,oneof=debug info warn error"`
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"omitempty,dive,required"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the question store backend.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	// URL is a postgres connection URL or a sqlite file path / DSN.
	URL string `mapstructure:"url" validate:"required"`
	// AutoMigrate applies schema migrations on startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// PrefetchConfig controls how server-side prefetch queues execute their fetches
// and when they are force-refreshed. Queue depth itself is fixed in the
// prefetch package.
type PrefetchConfig struct {
	WorkerCount   int `mapstructure:"worker_count"    validate:"required,gt=0"`
	TaskQueueSize int `mapstructure:"task_queue_size" validate:"required,gt=0"`
	// RefreshCron is a cron expression (UTC) for force-refreshing every live
	// queue. Empty disables the scheduled refresh.
	RefreshCron string `mapstructure:"refresh_cron"`
	// IdleTimeoutMinutes drops a user's queue after this long without a
	// request. Checked on each scheduled refresh; zero keeps queues forever.
	IdleTimeoutMinutes int `mapstructure:"idle_timeout_minutes" validate:"gte=0"`
}

// ClientConfig configures the HTTP question source used by the review client.
type ClientConfig struct {
	BaseURL        string `mapstructure:"base_url"        validate:"omitempty,url"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}
