package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/boat-builder/penpal"
	"github.com/spf13/cobra"
)

var (
	configPath string
	essayPath  string
	rubricPath string
	tone       string
	style      string
	notes      string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "penpal",
	Short: "Writing feedback for student essays",
	Long: `PenPal reads an essay and helps improve it.

Ask questions about the draft in a streamed chat, get inline comments
or score the essay against a rubric. The conversation and view state
are kept between runs in the configured storage.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().StringVarP(&essayPath, "essay", "e", "", "essay file (defaults to the saved essay)")
	rootCmd.PersistentFlags().StringVarP(&rubricPath, "rubric", "r", "", "rubric file")
	rootCmd.PersistentFlags().StringVar(&tone, "tone", "", "tone the essay should have")
	rootCmd.PersistentFlags().StringVar(&style, "style", "", "writing style")
	rootCmd.PersistentFlags().StringVar(&notes, "notes", "", "extra instructions")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(chatCmd, feedbackCmd, commentsCmd, historyCmd, resetCmd, themeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is what every subcommand works with.
type app struct {
	cfg     *penpal.Config
	storage penpal.Storage
	close   func() error
	prefs   penpal.Preferences
	input   penpal.SessionConfig
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := penpal.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	storage, closeStorage, err := cfg.OpenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	prefs, err := penpal.LoadPreferences(ctx, storage)
	if err != nil {
		closeStorage()
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	a := &app{cfg: cfg, storage: storage, close: closeStorage, prefs: prefs}
	if err := a.loadInput(); err != nil {
		closeStorage()
		return nil, err
	}
	return a, nil
}

func (a *app) loadInput() error {
	input := a.cfg.Session
	if essayPath != "" {
		data, err := os.ReadFile(essayPath)
		if err != nil {
			return fmt.Errorf("failed to read essay: %w", err)
		}
		a.prefs.Essay = string(data)
	}
	input.Essay = a.prefs.Essay

	if rubricPath != "" {
		rubric, err := penpal.ReadRubricFile(rubricPath)
		if err != nil {
			return err
		}
		input.RubricText = rubric
	}
	if tone != "" {
		input.Tone = tone
	}
	if style != "" {
		input.Style = style
	}
	if notes != "" {
		input.CustomInstructions = notes
	}
	a.input = input
	return nil
}

func (a *app) newSession(ctx context.Context, observer penpal.Observer) (*penpal.Session, error) {
	client := a.cfg.LLM.NewLLMClient()
	opts := []penpal.SessionOption{
		penpal.WithStorage(a.storage),
		penpal.WithPacing(a.cfg.Pacing()),
	}
	if observer != nil {
		opts = append(opts, penpal.WithObserver(observer))
	}
	return penpal.NewSession(ctx, client, opts...)
}

// requireEssay fails early when there is nothing to give feedback on.
func (a *app) requireEssay() error {
	if strings.TrimSpace(a.input.Essay) == "" {
		return fmt.Errorf("no essay: pass one with --essay")
	}
	return nil
}

func (a *app) savePrefs(ctx context.Context) {
	if err := a.prefs.Save(ctx, a.storage); err != nil {
		slog.Warn("Failed to save preferences", "error", err)
	}
}

func withApp(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return run(cmd, a, args)
	}
}
