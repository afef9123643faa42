package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/toursplice/internal/app"
)

// Exit codes
const (
	exitOK           = 0
	exitError        = 1
	exitEmptyContent = 2
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	cfg, configPath, envFiles, showVersion, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitError
	}
	if showVersion {
		fmt.Printf("toursplice %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return exitOK
	}

	if err := app.LoadEnvFiles(envFiles...); err != nil {
		log.Error().Err(err).Msg("load env files")
		return exitError
	}
	// Precedence: flags > env > config file
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("config", configPath).Msg("load config")
			return exitError
		}
		app.ApplyFileConfig(&cfg, fc)
		app.ApplyEnvOverrides(&cfg)
	} else {
		app.ApplyEnvToConfig(&cfg)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		if errors.Is(err, app.ErrEmptyContent) {
			return exitEmptyContent
		}
		return exitError
	}
	return exitOK
}

func parseFlags(args []string) (cfg app.Config, configPath string, envFiles []string, showVersion bool, err error) {
	fs := flag.NewFlagSet("toursplice", flag.ContinueOnError)
	var (
		stages  string
		envList string
	)
	fs.StringVar(&configPath, "config", os.Getenv("TOURSPLICE_CONFIG"), "Path to YAML, JSON or TOML config file")
	fs.StringVar(&envList, "env", ".env", "Comma-separated dotenv files to load")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")

	fs.StringVar(&cfg.InputPath, "input", "", "Article body: file path, http(s) URL or - for stdin")
	fs.StringVar(&cfg.OutputPath, "output", "-", "Where to write the composed fragment; - for stdout")
	fs.StringVar(&cfg.ListingsPath, "listings", "", "Listings document (JSON or YAML): file path or URL; {destination} is replaced by the destination id")
	fs.StringVar(&cfg.Variant, "variant", "tours", "Content variant: tours or seo")
	fs.StringVar(&stages, "stages", "", "Comma-separated stage list overriding the variant's stages")
	fs.IntVar(&cfg.HeadingOrdinal, "heading.ordinal", 0, "Place the marker at the 1st or 2nd h2 (0 keeps the variant default)")
	fs.IntVar(&cfg.MinMeaningful, "min.meaningful", 0, "Minimum characters of a block that counts as content before the heading (0 keeps the variant default)")
	fs.IntVar(&cfg.MinSubstantial, "min.substantial", 0, "Minimum characters of a fallback paragraph (0 keeps the variant default)")

	fs.StringVar(&cfg.City, "city", "", "City the article is about")
	fs.StringVar(&cfg.DestinationsPath, "destinations", "", "YAML or JSON map of city to destination id")
	fs.StringVar(&cfg.MainImageURL, "main-image", "", "Featured image URL removed from the body")
	fs.StringVar(&cfg.Permalink, "permalink", "", "Canonical article URL whose self links are removed")

	fs.StringVar(&cfg.UserAgent, "http.ua", "", "User-Agent for URL inputs")
	fs.DurationVar(&cfg.HTTPTimeout, "http.timeout", 30*time.Second, "Timeout for each URL input request")
	fs.StringVar(&cfg.CacheDir, "cache.dir", ".toursplice-cache", "HTTP cache directory; empty disables caching")
	fs.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Serve cached URL inputs younger than this and purge older entries; 0 disables")
	fs.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear cache directory before run")
	fs.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")

	if err = fs.Parse(args); err != nil {
		return
	}
	cfg.Stages = splitList(stages)
	envFiles = splitList(envList)
	return
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
