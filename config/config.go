// Package config loads environment, category and tuning settings from a
// YAML file with ETLVERIFY_* environment overrides.
package config

import (
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hsharma0052/etlverify/etlbase"
	"github.com/spf13/viper"
)

// Source selects which pipeline output a connection points at.
const (
	SourceReference = "reference" // side A
	SourceCandidate = "candidate" // side B
)

// Environment holds the two pipeline connection strings for one named
// environment.
type Environment struct {
	Reference string `mapstructure:"reference"`
	Candidate string `mapstructure:"candidate"`
}

type PoolSettings struct {
	MinConns int `mapstructure:"min_conns"`
	MaxConns int `mapstructure:"max_conns"`
}

type Config struct {
	Environments map[string]Environment `mapstructure:"environments"`
	Categories   map[string][]string    `mapstructure:"categories"`
	Pool         PoolSettings           `mapstructure:"pool"`
	QueryTimeout time.Duration          `mapstructure:"query_timeout"`
}

const (
	DefaultMinConns     = 2
	DefaultMaxConns     = 5
	DefaultQueryTimeout = 5 * time.Minute
)

// Load reads the config file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("etlverify")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("pool.min_conns", DefaultMinConns)
	v.SetDefault("pool.max_conns", DefaultMaxConns)
	v.SetDefault("query_timeout", DefaultQueryTimeout)
	if err := v.ReadInConfig(); err != nil {
		return nil, etlbase.MarkConfiguration(errors.Wrapf(err, "error reading config %s", path))
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, etlbase.MarkConfiguration(errors.Wrap(err, "error decoding config"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Environments) == 0 {
		return etlbase.MarkConfiguration(errors.New("no environments configured"))
	}
	for env, e := range c.Environments {
		if e.Reference == "" || e.Candidate == "" {
			return etlbase.MarkConfiguration(
				errors.Newf("environment %q must configure both reference and candidate connection strings", env))
		}
	}
	if c.Pool.MaxConns < 1 {
		return etlbase.MarkConfiguration(errors.Newf("pool max_conns must be >= 1, got %d", c.Pool.MaxConns))
	}
	if c.Pool.MinConns < 0 || c.Pool.MinConns > c.Pool.MaxConns {
		return etlbase.MarkConfiguration(
			errors.Newf("pool min_conns must be between 0 and max_conns, got %d", c.Pool.MinConns))
	}
	if c.QueryTimeout < 0 {
		return etlbase.MarkConfiguration(errors.Newf("query_timeout must be >= 0, got %s", c.QueryTimeout))
	}
	return nil
}

// ConnString resolves the connection string for an (environment, source)
// pair.
func (c *Config) ConnString(env, source string) (string, error) {
	e, ok := c.Environments[env]
	if !ok {
		return "", etlbase.MarkConfiguration(errors.Newf("unknown environment %q", env))
	}
	switch source {
	case SourceReference:
		return e.Reference, nil
	case SourceCandidate:
		return e.Candidate, nil
	}
	return "", etlbase.MarkConfiguration(errors.Newf("unknown source %q", source))
}

// TablesFor returns the ordered table list for a category. Unknown
// categories yield an empty list, not an error.
func (c *Config) TablesFor(category string) []string {
	return append([]string(nil), c.Categories[category]...)
}

func (c *Config) CategoryNames() []string {
	ret := make([]string, 0, len(c.Categories))
	for name := range c.Categories {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

func (c *Config) EnvironmentNames() []string {
	ret := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}
