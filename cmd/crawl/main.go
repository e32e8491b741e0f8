package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/narwhalmedia/phimdash/internal/config"
	"github.com/narwhalmedia/phimdash/internal/container"
	"github.com/narwhalmedia/phimdash/internal/crawler"
	"github.com/narwhalmedia/phimdash/internal/logger"
	"github.com/narwhalmedia/phimdash/pkg/database"
)

const serviceName = "phimdash-crawl"

func main() {
	var (
		pages         = flag.String("pages", "", "Page range of the newest listing to crawl, e.g. 1-5")
		movieURL      = flag.String("url", "", "Crawl a single movie by its detail URL")
		file          = flag.String("file", "", "Crawl every movie URL listed in a file, one per line")
		skipGenres    = flag.Bool("skip-genres", false, "Do not link genres")
		skipCountries = flag.Bool("skip-countries", false, "Do not link countries")
		reencode      = flag.Bool("reencode-images", false, "Store empty image URLs for local re-encoding")
		migrate       = flag.Bool("migrate", true, "Apply pending migrations before crawling")
	)
	flag.Parse()

	if countSet(*pages, *movieURL, *file) != 1 {
		fmt.Fprintln(os.Stderr, "exactly one of -pages, -url or -file is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.FromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	deps, cleanup, err := container.InitializeCrawler(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize crawler", zap.Error(err))
	}
	defer cleanup()

	if *migrate {
		if err := database.RunMigrations(deps.DB, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	opts := deps.Synchronizer.Options()
	opts.SkipGenres = opts.SkipGenres || *skipGenres
	opts.SkipCountries = opts.SkipCountries || *skipCountries
	opts.ReencodeImages = opts.ReencodeImages || *reencode
	sync := deps.Synchronizer.WithOptions(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := func(p crawler.Progress) {
		fmt.Printf("[%3.0f%%] %s\n", p.Fraction*100, p.Message)
	}

	switch {
	case *pages != "":
		from, to, err := parseRange(*pages)
		if err != nil {
			log.Fatal("invalid -pages", zap.Error(err))
		}
		summary, err := sync.SynchronizeByPageRange(ctx, from, to, progress)
		report(log, summary, err)
	case *movieURL != "":
		result, err := sync.SynchronizeSingle(ctx, *movieURL)
		if err != nil {
			log.Fatal("crawl failed", zap.Error(err))
		}
		if !result.Success {
			fmt.Printf("failed: %s\n", result.Message)
			os.Exit(1)
		}
		verb := "added"
		if result.Updated {
			verb = "updated"
		}
		fmt.Printf("%s %s (%s)\n", verb, result.Slug, result.MovieID)
	case *file != "":
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatal("failed to read url list", zap.Error(err))
		}
		summary, err := sync.SynchronizeByURLList(ctx, string(data), progress)
		report(log, summary, err)
	}
}

func report(log *zap.Logger, summary *crawler.LogSummary, err error) {
	if summary != nil {
		fmt.Printf("%s: %s, added %d, updated %d, failed %d in %s\n",
			summary.Label, summary.Status, summary.Added, summary.Updated, summary.Failed, summary.Duration)
	}
	if err != nil {
		log.Error("crawl failed", zap.Error(err))
		os.Exit(1)
	}
}

// parseRange reads "N" or "N-M".
func parseRange(s string) (int, int, error) {
	fromStr, toStr, found := strings.Cut(s, "-")
	from, err := strconv.Atoi(strings.TrimSpace(fromStr))
	if err != nil {
		return 0, 0, fmt.Errorf("bad start page %q", fromStr)
	}
	if !found {
		return from, from, nil
	}
	to, err := strconv.Atoi(strings.TrimSpace(toStr))
	if err != nil {
		return 0, 0, fmt.Errorf("bad end page %q", toStr)
	}
	return from, to, nil
}

func countSet(values ...string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
