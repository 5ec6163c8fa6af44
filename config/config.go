package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendLevelDB = "leveldb"
	BackendSQLite  = "sqlite"
)

type Config struct {
	WorldDir string `yaml:"world_dir"`
	// Backend is either leveldb or sqlite.
	Backend   string `yaml:"backend"`
	Dimension int32  `yaml:"dimension"`
	// TickIntervalStr is a Go duration, such as 50ms.
	TickIntervalStr string `yaml:"tick_interval"`
	SeedFile        string `yaml:"seed_file"`
	tickInterval    time.Duration
}

func Default() *Config {
	return &Config{
		WorldDir:        "TmpWorld",
		Backend:         BackendLevelDB,
		Dimension:       0,
		TickIntervalStr: "50ms",
		SeedFile:        "tiles.jsonc",
		tickInterval:    50 * time.Millisecond,
	}
}

// Load reads the yaml config at path over the defaults. An empty path, or a path where no
// file exists, gives the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		fmt.Println("Config: No config provided, using defaults")
		return c, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Config: %v not found, using defaults\n", path)
		return c, nil
	} else if err != nil {
		return nil, fmt.Errorf("config: read %v: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: unmarshal %v: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config: %v: %w", path, err)
	}
	return c, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendLevelDB, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	d, err := time.ParseDuration(c.TickIntervalStr)
	if err != nil {
		return fmt.Errorf("tick_interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %v", d)
	}
	c.tickInterval = d
	return nil
}

// Interval returns the parsed tick interval.
func (c *Config) Interval() time.Duration {
	return c.tickInterval
}
