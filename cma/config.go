package cma

import (
	"fmt"
	"os"

	"github.com/aldor007/shark-old"
	"gopkg.in/yaml.v3"
)

// Config holds the tunable settings of a search in a form that can be
// loaded from YAML.
type Config struct {
	// Lambda is the population size; 0 selects DefaultLambda.
	Lambda int `yaml:"lambda"`
	// Mu is the number of parents; 0 selects lambda/2.
	Mu        int       `yaml:"mu"`
	Weighting Weighting `yaml:"weighting"`
	// MaxCondition bounds the covariance condition number; 0 selects
	// DefaultMaxCondition.
	MaxCondition float64 `yaml:"max_condition"`
	// Parallel is the number of concurrent objective evaluations.  0 and 1
	// evaluate serially, a negative value puts no limit on concurrency.
	Parallel int `yaml:"parallel"`
	// Seed seeds the random source.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Weighting:    Superlinear,
		MaxCondition: DefaultMaxCondition,
		Seed:         42,
	}
}

// LoadConfig reads a YAML configuration file.  Settings missing from the
// file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings that can be checked without knowing the
// problem dimension.
func (c Config) Validate() error {
	if c.Lambda != 0 && c.Lambda < 2 {
		return fmt.Errorf("%w: lambda %v < 2", ErrInvalidArgument, c.Lambda)
	}
	if c.Mu < 0 || (c.Lambda > 0 && c.Mu > c.Lambda) {
		return fmt.Errorf("%w: mu %v outside [1, lambda]", ErrInvalidArgument, c.Mu)
	}
	if c.MaxCondition < 0 {
		return fmt.Errorf("%w: negative max_condition", ErrInvalidArgument)
	}
	if _, ok := weightingNames[c.Weighting]; !ok {
		return fmt.Errorf("%w: unknown weighting %v", ErrInvalidArgument, c.Weighting)
	}
	return nil
}

// Options converts the configuration into search options.
func (c Config) Options() []Option {
	opts := []Option{
		Lambda(c.Lambda),
		Mu(c.Mu),
		Weights(c.Weighting),
		Rand(shark.NewRand(c.Seed)),
	}
	if c.MaxCondition > 0 {
		opts = append(opts, MaxCondition(c.MaxCondition))
	}
	switch {
	case c.Parallel < 0:
		opts = append(opts, Evaler(shark.ParallelEvaler{}))
	case c.Parallel > 1:
		opts = append(opts, Evaler(shark.ParallelEvaler{Limit: c.Parallel}))
	}
	return opts
}
