package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reviewbridge/reviewbridge/internal/codexsdk"
	"github.com/reviewbridge/reviewbridge/internal/config"
	revgit "github.com/reviewbridge/reviewbridge/internal/git"
	"github.com/reviewbridge/reviewbridge/internal/handlers"
	revmcp "github.com/reviewbridge/reviewbridge/internal/mcp"
	"github.com/reviewbridge/reviewbridge/internal/models"
	"github.com/reviewbridge/reviewbridge/internal/output"
	"github.com/reviewbridge/reviewbridge/internal/reviewer"
	"github.com/reviewbridge/reviewbridge/internal/store"
)

// Package-level shared dependencies: ui is set in init(), the build
// metadata in Execute, and the flags by cobra's flag parsing.
var (
	ui *output.UI

	buildVersion string
	buildCommit  string
	buildDate    string

	configDirFlag string
	jsonOutput    bool
)

var rootCmd = &cobra.Command{
	Use:   "reviewbridge",
	Short: "Review-orchestration bridge between a developer tool and an external review model",
	Long: `reviewbridge mediates plan, code, and precommit reviews between a
developer tool (an editor-embedded agent over the tool-call protocol, or a
terminal user over the CLI) and an external review model.

With no positional argument it starts a tool-call server on stdio. Any
positional argument switches to CLI mode.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
		}
		return serveToolCall(cmd.Context())
	},
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	ui = output.New()

	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config", "", "Config directory containing .reviewbridge.json (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON output")
}

// newHandlers wires config, storage, git, and the reviewer client into the
// shared Handlers value both front-ends dispatch through.
func newHandlers(ctx context.Context) (*handlers.Handlers, error) {
	cfg, err := config.Load(configDirFlag)
	if err != nil {
		return nil, err
	}

	st := openStore(ctx, cfg)

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	sdk, err := codexsdk.NewClient(apiKey, cfg.ModelName)
	if err != nil {
		return nil, err
	}

	rev := reviewer.New(sdk, *cfg)
	repoPath, _ := os.Getwd()

	return handlers.New(rev, st, revgit.NewClient(), repoPath), nil
}

// openStore opens the configured SQLite database, falling back to an
// in-memory store with a logged warning if it cannot be opened. The
// server still starts.
func openStore(ctx context.Context, cfg *models.Config) store.Store {
	dbPath := os.Getenv("REVIEW_BRIDGE_DB")
	if dbPath == "" {
		dbPath = "reviews.db"
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err == nil {
		if err = s.Migrate(ctx); err == nil {
			return s
		}
		_ = s.Close()
	}

	ui.Warning("could not open database at %s (%v); falling back to an in-memory store", dbPath, err)
	return store.NewMemoryStore()
}

// serveToolCall runs the zero-argv MCP stdio server.
func serveToolCall(ctx context.Context) error {
	h, err := newHandlers(ctx)
	if err != nil {
		return err
	}
	srv := revmcp.NewServer(h)
	return srv.ServeStdio(ctx)
}
