package backoffice

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fernanden/fernanden.go/pkg/connection"
	"github.com/fernanden/fernanden.go/pkg/constants"
)

// EnvPrefix prefixes every environment variable read by the back-office.
const EnvPrefix = "FERNANDEN"

// Config holds the back-office settings. Values are resolved in the order
// defaults, config file, FERNANDEN_* environment, command line flags.
type Config struct {
	// Backend is one of postgrest, postgres or sqlite.
	Backend     string        `mapstructure:"backend"`
	SupabaseURL string        `mapstructure:"supabase_url"`
	SupabaseKey string        `mapstructure:"supabase_key"`
	Schema      string        `mapstructure:"schema"`
	// DSN is the Postgres connection string or the SQLite file path.
	DSN     string        `mapstructure:"dsn"`
	Timeout time.Duration `mapstructure:"timeout"`

	Port     string `mapstructure:"port"`
	ReadOnly bool   `mapstructure:"read_only"`
	// Catalog is an optional YAML entity catalog replacing the built-in one.
	Catalog string `mapstructure:"catalog"`

	LogLevel  string `mapstructure:"log_level"`
	LogFile   string `mapstructure:"log_file"`
	LogFormat string `mapstructure:"log_format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", constants.BackendPostgREST)
	v.SetDefault("schema", "")
	v.SetDefault("timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("port", "8080")
	v.SetDefault("read_only", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "zerolog")
}

// addFlags registers the persistent flags shared by every command.
func addFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (yaml, json or toml)")
	fs.String("backend", constants.BackendPostgREST, "storage backend: postgrest, postgres or sqlite")
	fs.String("supabase-url", "", "Supabase project URL")
	fs.String("supabase-key", "", "Supabase API key")
	fs.String("schema", "", "Postgres schema")
	fs.String("dsn", "", "Postgres DSN or SQLite path")
	fs.Duration("timeout", constants.DefaultHTTPTimeout, "request timeout for the REST backend")
	fs.String("catalog", "", "entity catalog file")
	fs.String("log-level", "info", "log level")
	fs.String("log-file", "", "write logs to this file")
	fs.String("log-format", "zerolog", "log format: zerolog or slog")
}

// LoadConfig resolves the configuration from fs and the environment.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		var err error
		fs.VisitAll(func(f *pflag.Flag) {
			if err != nil || f.Name == "config" {
				return
			}
			err = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
		if err != nil {
			return nil, err
		}
		if path, _ := fs.GetString("config"); path != "" {
			v.SetConfigFile(path)
		}
	}
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, cfg.Validate()
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.Backend {
	case constants.BackendPostgREST:
		if c.SupabaseURL == "" {
			return constants.ErrNoBaseURL
		}
		if c.SupabaseKey == "" {
			return constants.ErrNoAPIKey
		}
	case constants.BackendPostgres, constants.BackendSQLite:
		if c.DSN == "" {
			return constants.ErrNoDSN
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}

// Connection returns the adapter settings for this configuration.
func (c *Config) Connection() *connection.Config {
	cc := connection.NewConfig()
	cc.BaseURL = c.SupabaseURL
	cc.APIKey = c.SupabaseKey
	cc.Schema = c.Schema
	cc.DSN = c.DSN
	if c.Timeout > 0 {
		cc.Timeout = c.Timeout
	}
	return cc
}
