// Package config loads the settings of the fixedform command from a TOML or
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	fixedform "github.com/soypat/go-fixedform"
	"gopkg.in/yaml.v3"
)

// Format of a configuration file.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// Config holds the settings shared by the subcommands.
type Config struct {
	// MaxDepth limits the nesting of DO and IF blocks.
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`
	// IndentWidth is the number of spaces per nesting level of the indent view.
	IndentWidth int `toml:"indent_width" yaml:"indent_width"`
	// Color enables styled statement tags in the details view.
	Color bool `toml:"color" yaml:"color"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// Format of the analyze report, yaml or text.
	Format string `toml:"format" yaml:"format"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		MaxDepth:    fixedform.DefaultMaxDepth,
		IndentWidth: 2,
		LogLevel:    "warn",
		Format:      "text",
	}
}

// Load reads the file at path over [Default] and applies the
// FIXEDFORM_MAX_DEPTH and FIXEDFORM_INDENT environment overrides. An empty
// path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := parseContent(content, detectFormat(path), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	cfg.MaxDepth = envInt("FIXEDFORM_MAX_DEPTH", cfg.MaxDepth)
	cfg.IndentWidth = envInt("FIXEDFORM_INDENT", cfg.IndentWidth)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings no subcommand can honor.
func (c Config) Validate() error {
	var errs []error
	if c.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("config: max_depth must be positive, got %d", c.MaxDepth))
	}
	if c.IndentWidth < 0 {
		errs = append(errs, fmt.Errorf("config: negative indent_width %d", c.IndentWidth))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch c.Format {
	case "yaml", "text":
	default:
		errs = append(errs, fmt.Errorf("config: unknown report format %q", c.Format))
	}
	return errors.Join(errs...)
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return lvl, nil
}

func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

func parseContent(content []byte, format Format, cfg *Config) error {
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(content), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %s", format)
	}
	return nil
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
