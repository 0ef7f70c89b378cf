// Package config loads device selection and solver settings from a file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/sodecl/internal/compute"
)

// Config mirrors the selection flags of the CLI.
// Zero values mean "unspecified" and are replaced by Default.
type Config struct {
	Platform       int      `json:"platform" yaml:"platform" toml:"platform"`
	DeviceType     string   `json:"device_type" yaml:"device_type" toml:"device_type"`
	Device         int      `json:"device" yaml:"device" toml:"device"`
	LocalGroupSize int      `json:"local_group_size" yaml:"local_group_size" toml:"local_group_size"`
	Output         string   `json:"output" yaml:"output" toml:"output"`
	Solver         string   `json:"solver" yaml:"solver" toml:"solver"`
	BuildOptions   []string `json:"build_options" yaml:"build_options" toml:"build_options"`
	KernelPath     string   `json:"kernel_path" yaml:"kernel_path" toml:"kernel_path"`
	Kernels        []string `json:"kernels" yaml:"kernels" toml:"kernels"`
	DataDir        string   `json:"data_dir" yaml:"data_dir" toml:"data_dir"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DeviceType:     "all",
		LocalGroupSize: 64,
		Output:         "file",
		Solver:         "rk4",
		Kernels:        []string{compute.DefaultKernelName},
		DataDir:        "./data",
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	d := Default()
	if c.DeviceType == "" {
		c.DeviceType = d.DeviceType
	}
	if c.LocalGroupSize == 0 {
		c.LocalGroupSize = d.LocalGroupSize
	}
	if c.Output == "" {
		c.Output = d.Output
	}
	if c.Solver == "" {
		c.Solver = d.Solver
	}
	if len(c.Kernels) == 0 {
		c.Kernels = d.Kernels
	}
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	return c
}

// Filter parses DeviceType.
func (c Config) Filter() (compute.DeviceType, error) {
	return compute.ParseDeviceType(c.DeviceType)
}

// Settings converts the solver fields into validated compute settings.
func (c Config) Settings() (compute.Settings, error) {
	output, err := compute.ParseOutputType(c.Output)
	if err != nil {
		return compute.Settings{}, err
	}
	solver, err := compute.ParseSolverType(c.Solver)
	if err != nil {
		return compute.Settings{}, err
	}
	opts := make([]compute.BuildOption, 0, len(c.BuildOptions))
	for _, name := range c.BuildOptions {
		o, err := compute.ParseBuildOption(name)
		if err != nil {
			return compute.Settings{}, err
		}
		opts = append(opts, o)
	}

	s := compute.Settings{
		LocalGroupSize: c.LocalGroupSize,
		Output:         output,
		Solver:         solver,
		BuildOptions:   opts,
	}
	if err := s.Validate(); err != nil {
		return compute.Settings{}, err
	}
	return s, nil
}

// Validate checks every field that can be checked without a runtime.
func (c Config) Validate() error {
	if c.Platform < 0 {
		return fmt.Errorf("platform must be non-negative, got %d", c.Platform)
	}
	if c.Device < 0 {
		return fmt.Errorf("device must be non-negative, got %d", c.Device)
	}
	if _, err := c.Filter(); err != nil {
		return err
	}
	if _, err := c.Settings(); err != nil {
		return err
	}
	return nil
}
