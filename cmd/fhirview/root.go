package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-fhirview/internal/config"
	"github.com/goliatone/go-fhirview/pkg/diagnostics"
	"github.com/goliatone/go-fhirview/pkg/preview"
	"github.com/goliatone/go-fhirview/pkg/store"
)

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	configFile string
	cfg        *config.Config
	logger     zerolog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "fhirview",
		Short:         "Render FHIR resources through workspace templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	defaults := config.Default()
	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./fhirview.yaml when present)")
	flags.String("theme", defaults.Theme, "colour scheme: light, dark or high-contrast")
	flags.String("renderer", defaults.Renderer, "output painter: html, text or json")
	flags.Bool("show-errors", defaults.ShowErrors, "paint decode and lookup failures instead of empty output")
	flags.String("template-dir", defaults.TemplateDir, "directory of JSON/YAML templates backing widget lookups")
	flags.String("log-level", defaults.LogLevel, "log level")
	flags.Int("max-widget-depth", defaults.MaxWidgetDepth, "maximum widget nesting")

	root.AddCommand(
		newRenderCommand(a),
		newTemplatesCommand(a),
		newEncodeCommand(a),
		newValidateCommand(a),
		newServeCommand(a),
	)

	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := cfg.Level()
	a.logger = newLogger(cmd.ErrOrStderr(), level)
	return nil
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// previewer builds a Previewer from the loaded settings.
func (a *app) previewer() (*preview.Previewer, error) {
	options := []preview.Option{
		preview.WithDefaultRenderer(a.cfg.Renderer),
		preview.WithDefaultTheme(a.cfg.Theme),
		preview.WithShowErrors(a.cfg.ShowErrors),
		preview.WithMaxWidgetDepth(a.cfg.MaxWidgetDepth),
		preview.WithReporter(diagnostics.NewZerolog(a.logger)),
	}
	if dir := a.cfg.TemplateDir; dir != "" {
		templates, err := store.LoadFS(os.DirFS(dir))
		if err != nil {
			return nil, fmt.Errorf("load templates from %s: %w", dir, err)
		}
		a.logger.Debug().Str("dir", dir).Int("templates", templates.Len()).Msg("template store loaded")
		options = append(options, preview.WithStore(templates))
	}
	return preview.New(options...), nil
}
