package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/character-explorer/internal/adapter/browser"
	"github.com/user/character-explorer/internal/app"
	"github.com/user/character-explorer/internal/tui"
	"github.com/user/character-explorer/pkg/config"
	"github.com/user/character-explorer/pkg/logger"
	"github.com/user/character-explorer/pkg/metrics"
)

var (
	// Global flags
	verbose bool

	// smoke flags
	smokeURL     string
	smokeName    string
	smokeTimeout time.Duration

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "explorer",
	Short: "Browse and prerender the Rick and Morty character catalog",
	Long: `explorer works against the same catalog client, caches and page
snapshots as the HTTP server.

Run without arguments to start the interactive search client.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		log = logger.Init(os.Stderr, level)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runBrowse,
}

// browseCmd starts the terminal search client.
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Search characters interactively",
	Long: `Opens a terminal form with name, status, species, type and gender
filters. Edits are debounced before a search is issued, and responses to
superseded searches are discarded.`,
	RunE: runBrowse,
}

// prerenderCmd renders every static page into the snapshot store.
var prerenderCmd = &cobra.Command{
	Use:   "prerender",
	Short: "Render the home page and every character page for the current build",
	RunE:  runPrerender,
}

// smokeCmd checks a running site's search page in headless Chrome.
var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Type a search into a running site and report what it rendered",
	Long: `Opens the search page of a running server in headless Chrome, types a
name and waits for the debounced request to settle. Exits non-zero when the
page shows an error.

Example:
  explorer smoke --url http://localhost:8080 --name rick`,
	RunE: runSmoke,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	smokeCmd.Flags().StringVar(&smokeURL, "url", "http://localhost:8080", "Base URL of the running site")
	smokeCmd.Flags().StringVar(&smokeName, "name", "rick", "Name to type into the search form")
	smokeCmd.Flags().DurationVar(&smokeTimeout, "timeout", 30*time.Second, "Page load timeout")

	rootCmd.AddCommand(browseCmd, prerenderCmd, smokeCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runBrowse(cmd *cobra.Command, args []string) error {
	// The terminal owns stdout and stderr while the program runs.
	log = zap.NewNop()

	application, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	model := tui.NewModel(application.Catalog, cfg.SearchDebounce())
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run search client: %w", err)
	}
	return nil
}

func runPrerender(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	report, err := application.Prerender.Run(ctx)
	if err != nil {
		return fmt.Errorf("prerender: %w", err)
	}
	printReport(cmd.OutOrStdout(), report.BuildID, report.Rendered, report.Failed, report.Duration.String())
	if report.Failed > 0 {
		return fmt.Errorf("%d pages failed to render", report.Failed)
	}
	return nil
}

func printReport(w io.Writer, buildID string, rendered, failed int, took string) {
	fmt.Fprintf(w, "build:    %s\n", buildID)
	fmt.Fprintf(w, "rendered: %d\n", rendered)
	fmt.Fprintf(w, "failed:   %d\n", failed)
	fmt.Fprintf(w, "took:     %s\n", took)
}

func runSmoke(cmd *cobra.Command, args []string) error {
	probe := browser.NewSearchProbe(smokeTimeout, log)
	defer probe.Close()

	out, err := probe.Search(cmd.Context(), smokeURL, smokeName)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "page:    %s (%d)\n", out.URL, out.Status)
	fmt.Fprintf(w, "name:    %s\n", out.Name)
	fmt.Fprintf(w, "cards:   %d\n", out.Cards)
	if out.Total != "" {
		fmt.Fprintf(w, "total:   %s\n", out.Total)
	}
	fmt.Fprintf(w, "settled: %s\n", out.Elapsed)
	if out.Status != 0 && out.Status != http.StatusOK {
		return fmt.Errorf("search page answered %d", out.Status)
	}
	if out.Error != "" {
		return fmt.Errorf("search page showed an error: %s", out.Error)
	}
	return nil
}
