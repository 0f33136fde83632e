// Package config loads fhirview CLI and server settings from an optional
// config file, FHIRVIEW_* environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goliatone/go-fhirview/pkg/renderers/html"
	"github.com/goliatone/go-fhirview/pkg/renderers/jsonview"
	"github.com/goliatone/go-fhirview/pkg/renderers/text"
	"github.com/goliatone/go-fhirview/pkg/theme"
	"github.com/goliatone/go-fhirview/pkg/view"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "FHIRVIEW"

// Setting keys.
const (
	KeyTheme          = "theme"
	KeyRenderer       = "renderer"
	KeyShowErrors     = "show_errors"
	KeyTemplateDir    = "template_dir"
	KeyLogLevel       = "log_level"
	KeyAddr           = "addr"
	KeyMaxWidgetDepth = "max_widget_depth"
)

// Config holds resolved settings.
type Config struct {
	Theme          string `mapstructure:"theme"`
	Renderer       string `mapstructure:"renderer"`
	ShowErrors     bool   `mapstructure:"show_errors"`
	TemplateDir    string `mapstructure:"template_dir"`
	LogLevel       string `mapstructure:"log_level"`
	Addr           string `mapstructure:"addr"`
	MaxWidgetDepth int    `mapstructure:"max_widget_depth"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Theme:          theme.Default,
		Renderer:       html.Name,
		ShowErrors:     true,
		LogLevel:       "info",
		Addr:           ":8080",
		MaxWidgetDepth: view.DefaultMaxWidgetDepth,
	}
}

// Load resolves settings in viper's precedence order: flags, environment,
// config file, defaults. file may be empty, in which case fhirview.yaml is
// looked up in the working directory and ignored when absent. flags may be
// nil; only flags named after a setting key (dashes for underscores) bind.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault(KeyTheme, defaults.Theme)
	v.SetDefault(KeyRenderer, defaults.Renderer)
	v.SetDefault(KeyShowErrors, defaults.ShowErrors)
	v.SetDefault(KeyTemplateDir, defaults.TemplateDir)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyAddr, defaults.Addr)
	v.SetDefault(KeyMaxWidgetDepth, defaults.MaxWidgetDepth)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range keys() {
			if flag := flags.Lookup(strings.ReplaceAll(key, "_", "-")); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", flag.Name, err)
				}
			}
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	} else {
		v.SetConfigName("fhirview")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read fhirview.yaml: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	cfg.Renderer = strings.ToLower(strings.TrimSpace(cfg.Renderer))
	return cfg, nil
}

func keys() []string {
	return []string{KeyTheme, KeyRenderer, KeyShowErrors, KeyTemplateDir, KeyLogLevel, KeyAddr, KeyMaxWidgetDepth}
}

// Renderers lists the painter names the CLI and server accept.
func Renderers() []string {
	return []string{html.Name, text.Name, jsonview.Name}
}

// Validate rejects settings outside the supported sets.
func (c *Config) Validate() error {
	if !theme.Known(c.Theme) {
		return fmt.Errorf("config: unknown theme %q (want one of %s)", c.Theme, strings.Join(theme.Names(), ", "))
	}
	known := false
	for _, name := range Renderers() {
		if name == c.Renderer {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("config: unknown renderer %q (want one of %s)", c.Renderer, strings.Join(Renderers(), ", "))
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.MaxWidgetDepth < 1 {
		return fmt.Errorf("config: max_widget_depth must be at least 1, got %d", c.MaxWidgetDepth)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("config: invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
