// Package main provides the feedwise CLI: it drives a logged-in browser
// session over a video feed, scores each recommendation with an LLM, and
// applies like / strong-like / not-interested actions so the feed learns to
// surface course-grade content.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/feedwise/feedwise/pkg/browser"
	"github.com/feedwise/feedwise/pkg/config"
	"github.com/feedwise/feedwise/pkg/feed"
	"github.com/feedwise/feedwise/pkg/llm"
	"github.com/feedwise/feedwise/pkg/llm/ollama"
	"github.com/feedwise/feedwise/pkg/llm/openai"
	"github.com/feedwise/feedwise/pkg/logging"
	"github.com/feedwise/feedwise/pkg/ratelimit"
	"github.com/feedwise/feedwise/pkg/scoring"
)

const version = "0.1.0"

// CLIFlags holds command-line overrides; anything left empty defers to the
// config file.
type CLIFlags struct {
	ConfigFile  string
	APIKey      string
	Model       string
	BaseURL     string
	Provider    string
	MaxItems    int
	Headless    bool
	ProfileDir  string
	ShowVersion bool
}

func main() {
	flags := parseFlags()

	if flags.ShowVersion {
		fmt.Printf("feedwise v%s\n", version)
		return
	}

	// Cancel on SIGINT/SIGTERM; the loop finishes its current item before
	// terminating.
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nStopping after the current item...")
		cancel()
	}()

	if err := run(ctx, flags); err != nil {
		cancel()
		log.Printf("Run failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags.
func parseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.ConfigFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&flags.APIKey, "api-key", os.Getenv("OPENAI_API_KEY"), "Cloud provider API key")
	flag.StringVar(&flags.Model, "model", "", "Cloud provider model override")
	flag.StringVar(&flags.BaseURL, "base-url", os.Getenv("OPENAI_BASE_URL"), "Cloud provider base URL override")
	flag.StringVar(&flags.Provider, "provider", "", "Provider mode: cloud, local, or both")
	flag.IntVar(&flags.MaxItems, "max-items", 0, "Maximum items to process this run")
	flag.BoolVar(&flags.Headless, "headless", false, "Run the browser without a window (requires a logged-in profile)")
	flag.StringVar(&flags.ProfileDir, "profile", "", "Browser profile directory")
	flag.BoolVar(&flags.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "feedwise - LLM-driven feed curation\n\n")
		fmt.Fprintf(os.Stderr, "Usage: feedwise [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # First run: log in manually, then press Enter\n")
		fmt.Fprintf(os.Stderr, "  feedwise -max-items 20\n\n")
		fmt.Fprintf(os.Stderr, "  # Subsequent runs reuse the saved profile\n")
		fmt.Fprintf(os.Stderr, "  feedwise -config feedwise.yaml -headless\n\n")
		fmt.Fprintf(os.Stderr, "  # Local scoring only\n")
		fmt.Fprintf(os.Stderr, "  feedwise -provider local\n\n")
	}

	flag.Parse()
	return flags
}

// run wires the session, providers, scorer, and loop together and executes
// one curation run.
func run(ctx context.Context, flags *CLIFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logger, logErr := logging.NewLogger("main")
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable, using stderr\n")
	}
	defer logger.Close()

	if path := logger.LogPath(); path != "" {
		fmt.Printf("Logging to %s\n", path)
	}

	providers, err := buildProviders(cfg)
	if err != nil {
		return err
	}

	limiter := ratelimit.New(cfg.RateLimit.MaxCalls, cfg.RateLimit.Window, cfg.RateLimit.MaxWait)

	scorerLogger, _ := logging.NewLogger("scoring")
	defer scorerLogger.Close()
	scorer, err := scoring.New(limiter, scorerLogger, providers...)
	if err != nil {
		return err
	}

	profileDir, err := cfg.ProfileDir()
	if err != nil {
		return err
	}

	browserLogger, _ := logging.NewLogger("browser")
	defer browserLogger.Close()
	session, err := browser.NewSession(browser.Options{
		ProfileDir: profileDir,
		Headless:   cfg.Browser.Headless,
	}, browserLogger)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Navigate(cfg.Feed.URL); err != nil {
		return err
	}

	// Only prompt for a manual login when the profile does not already
	// carry one.
	var confirm <-chan struct{}
	if !session.IsLoggedIn() {
		confirm = confirmFromStdin()
	}
	if err := session.WaitForReady(ctx, confirm); err != nil {
		return err
	}

	feedLogger, _ := logging.NewLogger("feed")
	defer feedLogger.Close()

	executor := feed.NewExecutor(session, cfg.Feed.DelayMin, cfg.Feed.DelayMax, feedLogger)

	// Seed the recommendation signal before working the feed.
	if len(cfg.Feed.SearchTerms) > 0 {
		searcher := feed.NewSearcher(session, executor, cfg.Feed.URL, feedLogger)
		if err := searcher.SeedAll(ctx, cfg.Feed.SearchTerms); err != nil {
			return err
		}
	}

	extractor := feed.NewExtractor(session.Page(), feedLogger)
	controller := feed.NewController(extractor, scorer, executor, session, feed.ControllerConfig{
		MaxItems:             cfg.Feed.MaxItems,
		MaxScrolls:           cfg.Feed.MaxScrolls,
		ScrollRetries:        cfg.Feed.ScrollRetries,
		ScrollSettle:         cfg.Feed.ScrollSettle,
		MaxConsecutiveErrors: cfg.Feed.MaxConsecutiveErrors,
		CountFailures:        cfg.Feed.CountFailures,
		Thresholds:           cfg.Thresholds,
	}, feedLogger)

	stats, runErr := controller.Run(ctx)
	printSummary(stats, scorer.Calls())
	return runErr
}

// loadConfig loads the config file (or defaults) and applies CLI overrides.
func loadConfig(flags *CLIFlags) (*config.Config, error) {
	var cfg *config.Config
	if flags.ConfigFile != "" {
		loaded, err := config.Load(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}

	if flags.APIKey != "" {
		cfg.Cloud.APIKey = flags.APIKey
	}
	if flags.Model != "" {
		cfg.Cloud.Model = flags.Model
	}
	if flags.BaseURL != "" {
		cfg.Cloud.BaseURL = flags.BaseURL
	}
	if flags.Provider != "" {
		cfg.Provider = config.ProviderMode(flags.Provider)
	}
	if flags.MaxItems > 0 {
		cfg.Feed.MaxItems = flags.MaxItems
	}
	if flags.Headless {
		cfg.Browser.Headless = true
	}
	if flags.ProfileDir != "" {
		cfg.Browser.ProfileDir = flags.ProfileDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildProviders constructs the scoring chain in fallback order.
func buildProviders(cfg *config.Config) ([]llm.Provider, error) {
	var providers []llm.Provider

	if cfg.Provider == config.ModeCloud || cfg.Provider == config.ModeBoth {
		cloud, err := openai.NewProvider(cfg.Cloud.APIKey,
			openai.WithModel(cfg.Cloud.Model),
			openai.WithBaseURL(cfg.Cloud.BaseURL),
		)
		if err != nil {
			return nil, err
		}
		providers = append(providers, cloud)
	}

	if cfg.Provider == config.ModeLocal || cfg.Provider == config.ModeBoth {
		local := ollama.NewProvider(
			ollama.WithModel(cfg.Local.Model),
			ollama.WithBaseURL(cfg.Local.BaseURL),
		)
		providers = append(providers, local)
	}

	return providers, nil
}

// confirmFromStdin returns a channel that fires once the user presses Enter,
// used to confirm a completed manual login.
func confirmFromStdin() <-chan struct{} {
	confirm := make(chan struct{})
	go func() {
		fmt.Println("If a login page is showing, log in now. Press Enter to continue...")
		bufio.NewReader(os.Stdin).ReadString('\n')
		close(confirm)
	}()
	return confirm
}

// printSummary prints the run's outcome to the terminal.
func printSummary(stats *feed.Stats, llmCalls int) {
	fmt.Println("\n=== Run Summary ===")
	fmt.Printf("Processed:       %d\n", stats.Processed)
	fmt.Printf("Strong likes:    %d\n", stats.StrongLiked)
	fmt.Printf("Likes:           %d\n", stats.Liked)
	fmt.Printf("Not interested:  %d\n", stats.Dismissed)
	fmt.Printf("No action:       %d\n", stats.Neutral)
	fmt.Printf("Failures:        %d\n", stats.Failures)
	fmt.Printf("LLM calls:       %d\n", llmCalls)
}
