package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"voxel-render/internal/world"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the config file when no -config flag is given.
const EnvConfigPath = "VOXEL_CONFIG"

// Config is the root of the YAML configuration shared by the binaries.
type Config struct {
	ChunkSize   int                   `yaml:"chunk_size"`
	Workers     int                   `yaml:"workers"` // 0 meshes on the driver goroutine
	SlowPassMS  int                   `yaml:"slow_pass_ms"`
	LogLevel    string                `yaml:"log_level"`
	MetricsAddr string                `yaml:"metrics_addr"`
	WorldFile   string                `yaml:"world_file"`
	Output      string                `yaml:"output"`
	Window      WindowConfig          `yaml:"window"`
	Palette     map[string][3]float32 `yaml:"palette"`
}

// WindowConfig sizes the viewer window and the headless image.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	// FPSLimit caps the viewer's frame rate; 0 leaves pacing to vsync.
	FPSLimit int `yaml:"fps_limit"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ChunkSize:  world.DefaultChunkSize,
		Workers:    runtime.NumCPU(),
		SlowPassMS: 16,
		LogLevel:   "info",
		Window: WindowConfig{
			Width:  900,
			Height: 600,
			Title:  "voxel-render",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path falls
// back to $VOXEL_CONFIG; if that is unset too, the defaults are returned.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("VOXEL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VOXEL_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v, ok := os.LookupEnv("VOXEL_METRICS_ADDR"); ok {
		c.MetricsAddr = v
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.ChunkSize <= 0 || c.ChunkSize > world.MaxChunkSize {
		errs = append(errs, fmt.Errorf("chunk_size %d outside [1, %d]", c.ChunkSize, world.MaxChunkSize))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d is negative", c.Workers))
	}
	if c.SlowPassMS <= 0 {
		errs = append(errs, fmt.Errorf("slow_pass_ms %d must be positive", c.SlowPassMS))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.FPSLimit < 0 {
		errs = append(errs, fmt.Errorf("window fps_limit %d is negative", c.Window.FPSLimit))
	}
	for name, rgb := range c.Palette {
		if _, err := world.ParseBlockType(name); err != nil {
			errs = append(errs, fmt.Errorf("palette: %w", err))
		}
		for _, ch := range rgb {
			if ch < 0 || ch > 1 {
				errs = append(errs, fmt.Errorf("palette %s: channel %v outside [0, 1]", name, ch))
				break
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlowPass returns SlowPassMS as a duration.
func (c *Config) SlowPass() time.Duration {
	return time.Duration(c.SlowPassMS) * time.Millisecond
}
