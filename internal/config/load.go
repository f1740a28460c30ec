package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. DOGETIONARY_SERVER_PORT.
const EnvPrefix = "DOGETIONARY"

// LoadOptions customizes where Load looks for configuration.
type LoadOptions struct {
	// ConfigFile is an explicit config file path. When empty, Load looks for
	// config.yaml in the working directory and silently skips it if absent.
	ConfigFile string

	// EnvFiles are dotenv files loaded before reading the environment.
	// Missing files are ignored. Defaults to ".env".
	EnvFiles []string
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions is Load with explicit file locations.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	cfg, err := read(opts)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient loads configuration for command-line clients of the API. Only
// the client section and the log level are validated, so no server secrets
// need to be present.
func LoadClient(opts LoadOptions) (*Config, error) {
	cfg, err := read(opts)
	if err != nil {
		return nil, err
	}
	if err := validatePartial(cfg, cfg.Client, "client"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase loads configuration for offline tools that only talk to the
// question store, validating the database section and the log level.
func LoadDatabase(opts LoadOptions) (*Config, error) {
	cfg, err := read(opts)
	if err != nil {
		return nil, err
	}
	if err := validatePartial(cfg, cfg.Database, "database"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validatePartial(cfg *Config, section any, name string) error {
	validate := validator.New()
	if err := validate.Struct(section); err != nil {
		return fmt.Errorf("%s config validation failed: %w", name, err)
	}
	if err := validate.Struct(cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	return nil
}

func read(opts LoadOptions) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks a Config against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "file:dogetionary.db?_foreign_keys=on")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("prefetch.worker_count", 4)
	v.SetDefault("prefetch.task_queue_size", 100)
	v.SetDefault("prefetch.refresh_cron", "0 0 * * *")
	v.SetDefault("prefetch.idle_timeout_minutes", 1440)
	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.timeout_seconds", 10)
}

// bindEnvs registers keys without defaults so AutomaticEnv can see them
// during Unmarshal.
func bindEnvs(v *viper.Viper) {
	for _, key := range []string{"auth.jwt_secret", "client.token"} {
		_ = v.BindEnv(key)
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
