package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-fhirview/pkg/preview"
)

const watchDebounce = 150 * time.Millisecond

// interactive reports whether prompts can be shown.
var interactive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

type renderFlags struct {
	workspace string
	template  string
	data      string
	output    string
	title     string
	watch     bool
}

func newRenderCommand(a *app) *cobra.Command {
	flags := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a resource through a workspace template",
		Long: `Render decodes a workspace (a base64 payload or a JSON/YAML document),
selects a template by exact name and paints the resource with it.

When --template is omitted on an interactive terminal a picker lists the
workspace templates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runRender(cmd, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.workspace, "workspace", "w", "", "workspace file, or - for stdin")
	cmd.Flags().StringVarP(&flags.template, "template", "t", "", "template name")
	cmd.Flags().StringVarP(&flags.data, "data", "d", "", "resource file (JSON or YAML)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&flags.title, "title", "", "heading override")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "re-render when the workspace or data file changes")
	_ = cmd.MarkFlagRequired("workspace")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, flags *renderFlags) error {
	if flags.watch && (flags.workspace == "-" || flags.data == "-") {
		return errors.New("--watch needs files, not stdin")
	}
	if flags.workspace == "-" && flags.data == "-" {
		return errors.New("only one of --workspace and --data may read stdin")
	}
	stdin := bufferedStdin(cmd.InOrStdin())

	previewer, err := a.previewer()
	if err != nil {
		return err
	}

	if flags.template == "" {
		name, err := pickTemplate(flags.workspace, stdin)
		if err != nil {
			return err
		}
		flags.template = name
	}

	render := func(ctx context.Context) error {
		return a.renderOnce(ctx, cmd, previewer, flags, stdin)
	}
	if !flags.watch {
		return render(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.watch(ctx, []string{flags.workspace, flags.data}, render)
}

func (a *app) renderOnce(ctx context.Context, cmd *cobra.Command, previewer *preview.Previewer, flags *renderFlags, stdin stdinSource) error {
	payload, err := loadPayload(flags.workspace, stdin)
	if err != nil {
		return err
	}
	data, err := loadData(flags.data, stdin)
	if err != nil {
		return err
	}

	out, err := previewer.Render(contextOr(ctx), preview.Request{
		Workspace: payload,
		Template:  flags.template,
		Data:      data,
		Title:     flags.title,
	})
	if err != nil {
		return err
	}
	if res := out.Result; res.Err != nil {
		a.logger.Error().Err(res.Err).Str("template", flags.template).Msg("preview failed")
	} else {
		a.logger.Debug().
			Str("template", flags.template).
			Int("warnings", len(res.Warnings)).
			Bool("compatible", res.Compatible).
			Msg("preview rendered")
	}

	return writeOutput(cmd.OutOrStdout(), flags.output, out.Body)
}

func writeOutput(stdout io.Writer, path string, body []byte) error {
	if path == "" {
		_, err := stdout.Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// pickTemplate asks the user to choose a template when stdin is a terminal.
func pickTemplate(workspacePath string, stdin stdinSource) (string, error) {
	ws, err := loadWorkspace(workspacePath, stdin)
	if err != nil {
		return "", err
	}
	names := ws.TemplateNames()
	if len(names) == 0 {
		return "", errors.New("workspace has no templates")
	}
	if len(names) == 1 {
		return names[0], nil
	}
	if workspacePath == "-" || !interactive() {
		return "", fmt.Errorf("--template is required (available: %q)", names)
	}

	var name string
	prompt := &survey.Select{
		Message: "Template:",
		Options: names,
	}
	if err := survey.AskOne(prompt, &name); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", errors.New("template selection aborted")
		}
		return "", err
	}
	return name, nil
}

// watch calls render once, then again whenever one of paths is written.
// Events are debounced since editors often write a file in several steps.
func (a *app) watch(ctx context.Context, paths []string, render func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, path := range paths {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	if err := render(ctx); err != nil {
		a.logger.Error().Err(err).Msg("render failed")
	}
	a.logger.Info().Int("files", len(targets)).Msg("watching for changes")

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(event.Name)
			if !targets[abs] || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			a.logger.Info().Msg("change detected, re-rendering")
			if err := render(ctx); err != nil {
				a.logger.Error().Err(err).Msg("render failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn().Err(err).Msg("watch error")
		}
	}
}

func contextOf(cmd *cobra.Command) context.Context {
	return contextOr(cmd.Context())
}

func contextOr(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
