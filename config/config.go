package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/dbkeep"
	"github.com/sagarc03/dbkeep/database"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for dbkeep.
type Config struct {
	Database dbkeep.BackendConfig `mapstructure:"database"`
	Connect  ConnectConfig        `mapstructure:"connect"`
	Schema   SchemaConfig         `mapstructure:"schema"`
	Metrics  MetricsConfig        `mapstructure:"metrics"`
	Log      LogConfig            `mapstructure:"log"`
	Env      string               `mapstructure:"env" validate:"required,oneof=dev prod"`
}

// ConnectConfig holds the connection supervisor settings.
type ConnectConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Backoff time.Duration `mapstructure:"backoff" validate:"gt=0"`
}

// SchemaConfig points at an optional YAML schema file. The built-in
// schema is used when File is empty.
type SchemaConfig struct {
	File string `mapstructure:"file"`
}

// MetricsConfig holds metrics output configuration.
type MetricsConfig struct {
	// Textfile is a node-exporter textfile path. Empty disables metrics output.
	Textfile string `mapstructure:"textfile"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-kind":          "database.kind",
	"db-name":          "database.name",
	"db-host":          "database.host",
	"db-port":          "database.port",
	"db-user":          "database.user",
	"db-password":      "database.password",
	"db-path":          "database.path",
	"verbose-errors":   "database.verbose_errors",
	"timeout":          "connect.timeout",
	"backoff":          "connect.backoff",
	"schema":           "schema.file",
	"metrics-textfile": "metrics.textfile",
	"log-level":        "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Every key
// gets a default so AutomaticEnv can see it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.kind", string(dbkeep.KindSQLite))
	v.SetDefault("database.name", "dbkeep")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.path", "")
	v.SetDefault("database.verbose_errors", false)

	v.SetDefault("connect.timeout", database.DefaultConnectTimeout)
	v.SetDefault("connect.backoff", database.DefaultConnectBackoff)

	v.SetDefault("schema.file", "")
	v.SetDefault("metrics.textfile", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("env", "dev")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("dbkeep")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	v.SetEnvPrefix("DBKEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// SupervisorOptions returns the database options derived from the
// connect section.
func (c *Config) SupervisorOptions() []database.Option {
	return []database.Option{
		database.WithTimeout(c.Connect.Timeout),
		database.WithBackoff(c.Connect.Backoff),
	}
}
