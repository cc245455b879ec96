package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the benchmark configuration. It is read from an optional TOML
// file and then overridden by command line flags.
type Config struct {
	// Capacity is the requested table capacity. Zero sizes the table for
	// Range keys.
	Capacity int `toml:"capacity"`
	// Range is the number of distinct keys inserted per round.
	Range int `toml:"range"`
	// Loops is the total number of rounds, split across Workers.
	Loops int `toml:"loops"`
	// Workers is the number of inserting goroutines.
	Workers int `toml:"workers"`

	LogLevel    string `toml:"log-level"`
	Development bool   `toml:"development"`
	// MetricsAddr enables a Prometheus /metrics endpoint when not empty.
	MetricsAddr string `toml:"metrics-addr"`
}

// DefaultConfig matches a single goroutine updating one key ten million times.
func DefaultConfig() Config {
	return Config{
		Range:    1,
		Loops:    10_000_000,
		Workers:  1,
		LogLevel: "info",
	}
}

// LoadConfig returns the default configuration overlaid with the TOML file at
// path. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// TableCapacity is the capacity passed to the table constructor.
func (c *Config) TableCapacity() int {
	if c.Capacity > 0 {
		return c.Capacity
	}
	return c.Range
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Capacity < 0 {
		errs = append(errs, fmt.Errorf("capacity must not be negative, got %d", c.Capacity))
	}
	if c.Range <= 0 {
		errs = append(errs, fmt.Errorf("range must be positive, got %d", c.Range))
	}
	if c.Loops <= 0 {
		errs = append(errs, fmt.Errorf("loops must be positive, got %d", c.Loops))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	return errors.Join(errs...)
}
