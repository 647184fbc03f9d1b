// Package cli implements the planctl command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/claude/liftsync/internal/config"
	"github.com/claude/liftsync/internal/models"
	"github.com/claude/liftsync/internal/planner"
	"github.com/claude/liftsync/internal/plans"
	"github.com/claude/liftsync/internal/sheets"
	"github.com/claude/liftsync/internal/state"
	"github.com/claude/liftsync/internal/token"
	"github.com/claude/liftsync/internal/transport"
)

// httpTimeout bounds every spreadsheet and token request.
const httpTimeout = 30 * time.Second

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	NoColor    bool
}

// PlanService is the plan layer the commands drive.
type PlanService interface {
	Load(ctx context.Context, forceRemote bool) (models.PlanSnapshot, error)
	LoadSupplemental(ctx context.Context) (models.SupplementalBucket, error)
	SaveLogs(ctx context.Context, dateLabel string, logs []models.LogEntry) (planner.LogResult, error)
	Publish(ctx context.Context, title string, gen planner.Generator) (planner.PublishResult, error)
	History(ctx context.Context, limit int) ([]models.SyncRun, error)
	LoggedExercises(ctx context.Context, limit int) ([]models.JournalEntry, error)
}

// Compile-time check: *planner.Planner satisfies PlanService.
var _ PlanService = (*planner.Planner)(nil)

// NewRootCommand creates the root command for planctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "planctl",
		Short: "planctl - weekly training plan sync",
		Long:  "Show the current weekly training plan, log results back to the plan sheet, and publish new plans.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.NoColor {
				color.NoColor = true
			}
		},
	}
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config.yaml", "path to config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging to stderr")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewPublishCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewMCPCommand(opts))

	return cmd
}

// env is the wiring shared by commands that talk to the sheet.
type env struct {
	cfg     *config.Config
	log     *slog.Logger
	tokens  *token.Manager
	planner *planner.Planner
	journal *state.DB
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openEnv loads config and builds the planner with the local SQLite journal.
func openEnv(opts *RootOptions, stderr io.Writer) (*env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	log := newLogger(stderr, opts.Verbose)

	journal, err := state.Open(cfg.State.Dir)
	if err != nil {
		return nil, err
	}

	httpClient := transport.NewHTTPClient(httpTimeout)
	tokens := token.NewManager(httpClient, log)
	src := token.NewSource(tokens, cfg.Token.Path, time.Duration(cfg.Token.RefreshSkew))
	remote := sheets.NewClient(cfg.Sheets.BaseURL, cfg.Sheets.SpreadsheetID, httpClient, src)
	store := plans.NewStore(cfg.Plans.Dir, log)

	p := planner.New(remote, store, journal, planner.Options{ArchiveOnPublish: cfg.Sheets.ArchiveOnPublish}, log)
	return &env{cfg: cfg, log: log, tokens: tokens, planner: p, journal: journal}, nil
}

func (e *env) Close() {
	if err := e.journal.Close(); err != nil {
		e.log.Warn("closing journal", "error", err)
	}
}

// withPlanner runs fn against a freshly wired planner.
func withPlanner(cmd *cobra.Command, opts *RootOptions, fn func(PlanService) error) error {
	e, err := openEnv(opts, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	defer e.Close()
	return fn(e.planner)
}
