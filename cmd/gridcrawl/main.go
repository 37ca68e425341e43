package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridcrawl/gridcrawl/internal/browser"
	"github.com/gridcrawl/gridcrawl/internal/config"
	"github.com/gridcrawl/gridcrawl/internal/policy"
	"github.com/gridcrawl/gridcrawl/internal/progress"
	"github.com/gridcrawl/gridcrawl/internal/reveal"
	"github.com/gridcrawl/gridcrawl/internal/scrape"
	"github.com/gridcrawl/gridcrawl/internal/storage"
	"github.com/gridcrawl/gridcrawl/internal/types"
)

var (
	cfgFile      string
	verbose      bool
	outputDir    string
	baseName     string
	totalTimeout time.Duration
	maxClicks    int
	headless     bool
	userAgent    string
	mongoURI     string
	robotsFresh  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridcrawl",
		Short: "gridcrawl is an incremental-reveal category page scraper",
		Long: `gridcrawl drives a headless browser against a single category page,
clicks its "load more" affordance until the listing is fully revealed,
and extracts one structured record per product card.

Output is written as CSV and JSON; a MongoDB sink is available when a
connection URI is configured.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape one category page",
		Long:  "Reveal the full listing at the given category page URL and extract every product card.",
		Args:  cobra.ExactArgs(1),
		RunE:  runScrape,
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory")
	cmd.Flags().StringVar(&baseName, "name", "", "output file base name")
	cmd.Flags().DurationVar(&totalTimeout, "timeout", 15*time.Minute, "total run timeout")
	cmd.Flags().IntVar(&maxClicks, "max-clicks", -1, "cap on load-more clicks (-1 = use config, 0 = unlimited)")
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "custom User-Agent string")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection URI (enables the mongo sink)")
	cmd.Flags().BoolVar(&robotsFresh, "robots-refresh", false, "refresh the path policy from the site's live robots.txt")

	return cmd
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string) error {
	logger := setupLogger()
	entryURL := args[0]

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg, cmd)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := config.ValidateURL(entryURL); err != nil {
		return fmt.Errorf("invalid URL %q: %w", entryURL, err)
	}

	logger.Info("starting scrape",
		"url", entryURL,
		"output", cfg.Storage.OutputDir,
		"timeout", totalTimeout,
	)

	// The caller-level timeout bounds the whole run, reveal included.
	ctx, cancel := context.WithTimeout(context.Background(), totalTimeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down...", "signal", sig)
		cancel()
	}()

	pol := policy.New(cfg.Policy.DisallowedPrefixes)
	if cfg.Policy.RefreshFromRobots {
		refreshed, err := policy.FromRobots(ctx, entryURL, cfg.Policy.RobotsTimeout, logger)
		if err != nil {
			logger.Warn("robots.txt refresh failed, keeping static policy", "error", err)
		} else {
			pol = refreshed
		}
	}

	factory, err := browser.NewFactory(cfg, logger)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer factory.Close()

	counters := progress.NewCounters()
	reporter := progress.MultiReporter{progress.NewLogReporter(logger), counters}

	ctrl := reveal.New(cfg.Reveal, logger, reporter)
	orch := scrape.New(sessionFactory{factory}, pol, ctrl, cfg, logger, reporter)

	start := time.Now()
	records, err := orch.Run(ctx, entryURL)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	elapsed := time.Since(start)

	sink, err := buildSink(cfg, logger)
	if err != nil {
		return fmt.Errorf("create sinks: %w", err)
	}
	if err := sink.Write(records); err != nil {
		sink.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("close sinks: %w", err)
	}

	snap := counters.Snapshot()
	logger.Info("scrape complete",
		"elapsed", elapsed,
		"records", len(records),
		"clicks", snap["clicks_performed"],
		"skipped", snap["items_skipped"],
		"policy_skips", snap["policy_skips"],
	)

	fmt.Printf("\nScrape complete in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("   Records:   %d extracted, %d skipped, %d policy skips\n",
		len(records), snap["items_skipped"], snap["policy_skips"])
	fmt.Printf("   Reveals:   %d load-more clicks\n", snap["clicks_performed"])
	fmt.Printf("   Output:    %s\n", cfg.Storage.OutputDir)

	return sanityCheck(records, logger)
}

// sanityCheck runs the post-run assertions: a non-empty result whose
// records all carry identifier, title, and image.
func sanityCheck(records []*types.ProductRecord, logger *slog.Logger) error {
	if len(records) == 0 {
		return fmt.Errorf("sanity check failed: no products were scraped")
	}
	for i, rec := range records {
		if rec.ProductID == "" || rec.Title == "" || rec.ImageURL == "" {
			logger.Error("incomplete record", "index", i, "record", rec)
			return fmt.Errorf("sanity check failed: record %d is missing a required field", i)
		}
	}
	logger.Info("all sanity checks passed")
	return nil
}

// buildSink assembles the CSV + JSON fan-out, plus Mongo when configured.
func buildSink(cfg *config.Config, logger *slog.Logger) (storage.Sink, error) {
	csvSink, err := storage.NewCSVSink(filepath.Join(cfg.Storage.OutputDir, cfg.Storage.BaseName+".csv"), logger)
	if err != nil {
		return nil, err
	}
	jsonSink, err := storage.NewJSONSink(filepath.Join(cfg.Storage.OutputDir, cfg.Storage.BaseName+".json"), logger)
	if err != nil {
		return nil, err
	}

	sinks := []storage.Sink{csvSink, jsonSink}
	if cfg.Storage.MongoURI != "" {
		mongoSink, err := storage.NewMongoSink(cfg.Storage.MongoURI, cfg.Storage.MongoDatabase, cfg.Storage.MongoCollection, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, mongoSink)
	}

	return storage.NewMultiSink(logger, sinks...), nil
}

// sessionFactory adapts the browser factory to the orchestrator's
// interface.
type sessionFactory struct {
	f *browser.Factory
}

func (s sessionFactory) NewSession(ctx context.Context) (scrape.Session, error) {
	return s.f.NewSession(ctx)
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Browser:\n")
			fmt.Printf("  Headless:           %v\n", cfg.Browser.Headless)
			fmt.Printf("  Navigation Timeout: %s\n", cfg.Browser.NavigationTimeout)
			fmt.Printf("  Render Wait:        %s\n", cfg.Browser.RenderWait)
			fmt.Printf("\nReveal:\n")
			fmt.Printf("  Control Timeout:    %s\n", cfg.Reveal.ControlTimeout)
			fmt.Printf("  Scroll Pause:       %s - %s\n", cfg.Reveal.ScrollPauseMin, cfg.Reveal.ScrollPauseMax)
			fmt.Printf("  Click Pause:        %s - %s\n", cfg.Reveal.ClickPauseMin, cfg.Reveal.ClickPauseMax)
			fmt.Printf("  Render Pause:       %s - %s\n", cfg.Reveal.RenderPauseMin, cfg.Reveal.RenderPauseMax)
			fmt.Printf("  Max Clicks:         %d\n", cfg.Reveal.MaxClicks)
			fmt.Printf("\nSite:\n")
			fmt.Printf("  Item Selector:      %s\n", cfg.Site.ItemSelector)
			fmt.Printf("  Control XPath:      %s\n", cfg.Site.ControlXPath)
			fmt.Printf("\nPolicy:\n")
			fmt.Printf("  Prefixes:           %d configured\n", len(policy.New(cfg.Policy.DisallowedPrefixes).Prefixes()))
			fmt.Printf("  Robots Refresh:     %v\n", cfg.Policy.RefreshFromRobots)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Output Dir:         %s\n", cfg.Storage.OutputDir)
			fmt.Printf("  Base Name:          %s\n", cfg.Storage.BaseName)
			fmt.Printf("  Mongo:              %v\n", cfg.Storage.MongoURI != "")
			return nil
		},
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gridcrawl %s\n", config.Version)
		},
	}
}

// setupLogger creates a structured logger.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config, cmd *cobra.Command) {
	if outputDir != "" {
		cfg.Storage.OutputDir = outputDir
	}
	if baseName != "" {
		cfg.Storage.BaseName = baseName
	}
	if maxClicks >= 0 {
		cfg.Reveal.MaxClicks = maxClicks
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = headless
	}
	if userAgent != "" {
		cfg.Browser.UserAgent = userAgent
	}
	if mongoURI != "" {
		cfg.Storage.MongoURI = mongoURI
	}
	if robotsFresh {
		cfg.Policy.RefreshFromRobots = true
	}
}
