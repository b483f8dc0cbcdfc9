// Package config loads pipexec.yml.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/simonhull/pipexec/exec"
	"github.com/simonhull/pipexec/logger"
)

// FileName is the config file looked up in the working directory.
const FileName = "pipexec.yml"

// EnvPrefix prefixes environment overrides, e.g. PIPEXEC_MAX_CAPTURE.
const EnvPrefix = "PIPEXEC"

// Config holds executor defaults and named presets
type Config struct {
	MaxCapture int64
	Wait       bool
	Env        []string
	Dir        string
	LogLevel   logger.Level
	Presets    []PresetConfig
}

// PresetConfig is one entry of the presets list
type PresetConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Command     string `mapstructure:"command"`
	Input       string `mapstructure:"input"`
	Stdout      *bool  `mapstructure:"stdout"`
	Stderr      bool   `mapstructure:"stderr"`
}

// Load reads configuration. An empty path looks for pipexec.yml in the
// working directory and falls back to defaults when it does not exist; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("max_capture", exec.DefaultMaxCapture)
	v.SetDefault("wait", false)
	v.SetDefault("log_level", "warn")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yml"))
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
			}
		}
	}

	level, err := logger.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log_level: %w", err)
	}

	maxCapture, err := cast.ToInt64E(v.Get("max_capture"))
	if err != nil {
		return nil, fmt.Errorf("invalid max_capture: %w", err)
	}

	cfg := &Config{
		MaxCapture: maxCapture,
		Wait:       v.GetBool("wait"),
		Env:        v.GetStringSlice("env"),
		Dir:        v.GetString("dir"),
		LogLevel:   level,
	}

	if err := v.UnmarshalKey("presets", &cfg.Presets); err != nil {
		return nil, fmt.Errorf("invalid presets: %w", err)
	}

	return cfg, nil
}

// ExecutorOptions converts the config into executor options
func (c *Config) ExecutorOptions(log logger.Logger) *exec.Options {
	return &exec.Options{
		Env:        c.Env,
		Dir:        c.Dir,
		Wait:       c.Wait,
		MaxCapture: c.MaxCapture,
		Logger:     log,
	}
}

// Registry builds a preset registry from the configured presets. Stdout is
// captured unless a preset turns it off.
func (c *Config) Registry() (*exec.Registry, error) {
	r := exec.NewRegistry()
	for _, p := range c.Presets {
		preset := exec.Preset{
			Name:        p.Name,
			Description: p.Description,
			CommandLine: p.Command,
			Capture: exec.Capture{
				Stdout: p.Stdout == nil || *p.Stdout,
				Stderr: p.Stderr,
			},
		}
		if p.Input != "" {
			preset.Input = []byte(p.Input)
		}
		if err := r.Register(preset); err != nil {
			return nil, err
		}
	}
	return r, nil
}
