// Package config loads the schemagraph command line configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/syssam/schemagraph/dialect"
)

// EnvPrefix prefixes the environment variables overriding config keys,
// for example SCHEMAGRAPH_DIALECT or SCHEMAGRAPH_OUTPUT_FORMAT.
const EnvPrefix = "SCHEMAGRAPH"

// Output formats of the describe command.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Config represents the schemagraph configuration.
type Config struct {
	Dialect      string       `mapstructure:"dialect"`
	Schema       string       `mapstructure:"schema"`
	Declarations []string     `mapstructure:"declarations"`
	Output       OutputConfig `mapstructure:"output"`
	Gen          GenConfig    `mapstructure:"gen"`
	Database     DBConfig     `mapstructure:"database"`
	Verbose      bool         `mapstructure:"verbose"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// GenConfig controls constant generation.
type GenConfig struct {
	Package string `mapstructure:"package"`
	Target  string `mapstructure:"target"`
}

// DBConfig holds the connection of the migrate command.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// New returns a viper instance with the defaults and environment bindings
// of schemagraph.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("dialect", dialect.Postgres)
	v.SetDefault("schema", "public")
	v.SetDefault("output.format", FormatText)
	v.SetDefault("output.path", "")
	v.SetDefault("gen.package", "")
	v.SetDefault("gen.target", "schema")
	v.SetDefault("database.dsn", "")
	v.SetDefault("verbose", false)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file into v and decodes it. An explicit file
// must exist; otherwise schemagraph.yaml is looked up in the current
// directory and skipped when missing.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("schemagraph")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if _, err := dialect.Lookup(c.Dialect); err != nil {
		return fmt.Errorf("invalid dialect: %w", err)
	}
	switch c.Output.Format {
	case FormatText, FormatYAML, FormatJSON:
	default:
		return fmt.Errorf("invalid output format %q: use %s, %s or %s", c.Output.Format, FormatText, FormatYAML, FormatJSON)
	}
	return nil
}
