package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brogergvhs/noveld/internal/adapters"
	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/coordinator"
	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/providers/registry"
	"github.com/brogergvhs/noveld/internal/providers/ximalaya"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	// selection
	flagScraper     string
	flagAdapter     string
	flagMaxChapters int
	flagRange       string
	flagList        string

	// runtime
	flagOutput     string
	flagThreads    int
	flagDelay      float64
	flagQuiet      bool
	flagNoMetadata bool
	flagTagAudio   bool

	// network
	flagTimeout    time.Duration
	flagRetryDelay time.Duration
	flagMaxRetries int
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
	flagCloudflare bool
)

func init() {
	runCmd := &cobra.Command{
		Use:   "run <url>",
		Short: "Scrape a novel and save it. Uses the defaults from the selected config, overwritten by CLI flags",
		Args:  cobra.ExactArgs(1),
		RunE:  runScrape,
	}

	f := runCmd.Flags()

	// selection
	f.StringVar(&flagScraper, "scraper", "", "site scraper to use (detected from the URL when empty)")
	f.StringVar(&flagAdapter, "adapter", "", "output adapter: text_file or audio_file (picked from the source type when empty)")
	f.IntVar(&flagMaxChapters, "max-chapters", 0, "keep only the first N chapters")
	f.StringVar(&flagRange, "range", "", "scrape a range of chapters by index (e.g. 5-12)")
	f.StringVar(&flagList, "list", "", "scrape specific chapter indices (e.g. 1,3,5)")

	// runtime
	f.StringVar(&flagOutput, "output", "", "output file (text) or folder (audio)")
	f.IntVar(&flagThreads, "threads", config.DefaultThreads, "parallel fetches per batch")
	f.Float64Var(&flagDelay, "delay", config.DefaultDelay, "seconds to wait after every fetch")
	f.BoolVarP(&flagQuiet, "quiet", "q", false, "no progress output")
	f.BoolVar(&flagNoMetadata, "no-metadata", false, "omit the title and author header from text output")
	f.BoolVar(&flagTagAudio, "tag-audio", false, "write ID3 tags into downloaded mp3 files")

	// network
	f.DurationVar(&flagTimeout, "timeout", 0, "per-request timeout (e.g. 10s)")
	f.DurationVar(&flagRetryDelay, "retry-delay", 0, "wait between retries of a failed fetch (e.g. 3s)")
	f.IntVar(&flagMaxRetries, "max-retries", config.DefaultMaxRetries, "retries per fetch, negative for unlimited")
	f.StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	f.StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	f.StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	f.BoolVar(&flagCloudflare, "cloudflare", false, "route requests through the Cloudflare bypass transport")

	rootCmd.AddCommand(runCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	novelURL := args[0]

	opts := config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		Output:       flagOutput,
		Scraper:      flagScraper,
		Adapter:      flagAdapter,
		MaxChapters:  flagMaxChapters,
		Range:        flagRange,
		List:         flagList,
		Timeout:      flagTimeout,
		RetryDelay:   flagRetryDelay,
		UserAgent:    flagUserAgent,
		Cookie:       flagCookie,
		CookieFile:   flagCookieFile,
		Cloudflare:   flagCloudflare,
		NoMetadata:   flagNoMetadata,
		TagAudio:     flagTagAudio,
	}
	if cmd.Flags().Changed("threads") {
		opts.Threads = flagThreads
	}
	if cmd.Flags().Changed("delay") {
		opts.Delay = &flagDelay
	}
	if cmd.Flags().Changed("max-retries") {
		opts.MaxRetries = &flagMaxRetries
	}

	cfg, usedPath, err := config.LoadMerged(opts)
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	logSvc.Debugf("Config file: %s", usedPath)

	client, err := fetch.NewClient(fetch.Options{
		Timeout:    cfg.Timeout,
		RetryDelay: cfg.RetryDelay,
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
		Cookie:     cfg.Cookie,
		CookieFile: cfg.CookieFile,
		Cloudflare: cfg.Cloudflare,
		Logger:     logSvc,
	})
	if err != nil {
		return err
	}

	scraperName := cfg.Scraper
	if scraperName == "" {
		scraperName = registry.Detect(novelURL)
		logSvc.Infof("No scraper given, using %q", scraperName)
	}

	strategy, err := registry.New(scraperName, client)
	if err != nil {
		return err
	}
	source := strategy.GetSourceInfo()

	adapterName := cfg.Adapter
	if adapterName == "" {
		adapterName = adapters.TextFileName
		if source.Type == providers.TypeAudio {
			adapterName = adapters.AudioFileName
		}
	}

	audioExt := cfg.AudioExtension
	if audioExt == "" && strings.EqualFold(strings.TrimSpace(scraperName), ximalaya.Name) {
		audioExt = "m4a"
	}

	stats := &ui.Stats{}
	reporter := newReporter(logSvc)

	adapter, err := adapters.New(adapterName, adapters.Options{
		Output:          cfg.Output,
		IncludeMetadata: cfg.IncludeMetadata,
		AudioExtension:  audioExt,
		TagAudio:        cfg.TagAudio,
		Client:          client,
		Logger:          logSvc,
		Stats:           stats,
		Reporter:        reporter,
	})
	if err != nil {
		return err
	}

	if cfg.Debug {
		fmt.Println("Full config:")
		cfg.Print(os.Stdout)
		fmt.Println()
	}

	stop := util.SetupInterruptHandler(func() {
		if err := adapter.Cleanup(); err != nil {
			logSvc.Errorf("Cleanup failed: %v", err)
		}
	})
	defer stop()

	co := coordinator.New(strategy, adapter, coordinator.Options{
		Reporter:   reporter,
		Logger:     logSvc,
		Stats:      stats,
		MaxThreads: cfg.Threads,
		Delay:      cfg.DelayDuration(),
		Selection:  chapters.Selection{Range: cfg.Range, List: cfg.List},
	})

	start := time.Now()
	res := co.ScrapeNovel(context.Background(), novelURL, cfg.MaxChapters)
	stop()

	printSummary(source, res, stats, time.Since(start))

	if !res.OK() {
		return errors.New(res.Error)
	}
	return nil
}

func printSummary(source providers.SourceInfo, res adapters.Result, stats *ui.Stats, took time.Duration) {
	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("Source:   %s (%s)\n", source.Name, source.Type)
	fmt.Printf("Chapters: %d\n", stats.TotalChapters.Load())
	if res.FolderPath != "" {
		fmt.Printf("Audio:    %d ok, %d failed\n", res.SuccessfulDownloads, res.FailedDownloads)
	}
	if n := stats.TotalFailed.Load(); n > 0 {
		fmt.Printf("Skipped:  %d\n", n)
	}
	if n := stats.TotalWarnings.Load(); n > 0 {
		fmt.Printf("Warnings: %d\n", n)
	}
	if n := stats.TotalBytes.Load(); n > 0 {
		fmt.Printf("Data:     %s\n", util.Human(n))
	}
	fmt.Printf("Time:     %s\n", took.Round(time.Second))
}

// newReporter picks the progress surface: nothing with --quiet, a live bar on
// a terminal and plain lines otherwise. Logs go above the bar while it runs.
func newReporter(logSvc *ui.Logger) ui.Reporter {
	switch {
	case flagQuiet:
		return ui.NopReporter{}
	case isatty.IsTerminal(os.Stdout.Fd()):
		bar := ui.NewBarReporter(os.Stdout)
		logSvc.SetOutput(bar)
		return bar
	default:
		return &ui.LineReporter{Out: os.Stdout}
	}
}
