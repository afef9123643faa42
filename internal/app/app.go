package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/toursplice/internal/cache"
	"github.com/hyperifyio/toursplice/internal/compose"
	"github.com/hyperifyio/toursplice/internal/destination"
	"github.com/hyperifyio/toursplice/internal/fetch"
	"github.com/hyperifyio/toursplice/internal/listing"
	"github.com/hyperifyio/toursplice/internal/pipeline"
)

type App struct {
	cfg       Config
	pipe      *pipeline.Pipeline
	fetcher   *fetch.Client
	httpCache *cache.HTTPCache
	index     *destination.Index
	renderer  compose.Renderer

	stdin  io.Reader
	stdout io.Writer
}

// ErrEmptyContent is returned when the article body is empty or whitespace.
// Per the exit code policy this results in a distinct non-zero exit.
var ErrEmptyContent = errors.New("empty article content")

func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	v, err := ResolveVariant(cfg)
	if err != nil {
		return nil, err
	}
	a := &App{
		cfg:      cfg,
		pipe:     pipeline.New(v),
		renderer: compose.NewHTMLRenderer(),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
	}

	if cfg.CacheDir != "" {
		// Apply cache invalidation controls; failures only degrade caching
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("cache entries purged")
			}
		}
		a.httpCache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent()
	}
	a.fetcher = &fetch.Client{
		HTTPClient:        newHTTPClient(cfg.HTTPTimeout),
		UserAgent:         ua,
		MaxAttempts:       3,
		PerRequestTimeout: cfg.HTTPTimeout,
		Cache:             a.httpCache,
		CacheMaxAge:       cfg.CacheMaxAge,
	}

	if cfg.DestinationsPath != "" {
		idx, err := destination.LoadIndex(cfg.DestinationsPath)
		if err != nil {
			return nil, fmt.Errorf("load destinations: %w", err)
		}
		log.Debug().Int("cities", idx.RawKeys()).Int("keys", idx.Len()).Msg("destination index loaded")
		a.index = idx
	}

	log.Debug().Str("variant", string(v.Name)).Interface("stages", v.Stages).Msg("app ready")
	return a, nil
}

func (a *App) Close() {
	// nothing yet
}

// Run reads the article and the listings, runs the pipeline and writes the
// composed fragment.
func (a *App) Run(ctx context.Context) error {
	raw, err := a.readSource(ctx, a.cfg.InputPath)
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	content := string(raw)
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}

	block := a.loadBlock(ctx)
	res := a.pipe.Run(pipeline.Input{
		HTML:         content,
		MainImageURL: a.cfg.MainImageURL,
		Permalink:    a.cfg.Permalink,
		Listings:     len(block.Items),
	})

	out, err := compose.String(res.HTML, block, a.renderer)
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}
	if err := writeOutput(a.cfg.OutputPath, []byte(out), a.stdout); err != nil {
		return err
	}
	if !isStdout(a.cfg.OutputPath) {
		log.Info().
			Str("output", a.cfg.OutputPath).
			Str("status", string(block.Status)).
			Int("listings", len(block.Items)).
			Str("placement", string(res.Placement.Method)).
			Msg("wrote fragment")
	}
	return nil
}

// readSource reads a file path, an http(s) URL, or stdin for "-", and
// returns the content as UTF-8.
func (a *App) readSource(ctx context.Context, src string) ([]byte, error) {
	var (
		body []byte
		ct   string
		err  error
	)
	src = strings.TrimSpace(src)
	switch {
	case isStdout(src):
		body, err = io.ReadAll(a.stdin)
	case fetch.IsURL(src):
		body, ct, err = a.fetcher.Get(ctx, src)
	default:
		body, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, err
	}
	return fetch.ToUTF8(body, ct)
}

// loadBlock resolves the destination and reads the listings document. It
// never fails: problems degrade to a no-destination or error block that the
// renderer turns into a notice.
func (a *App) loadBlock(ctx context.Context) listing.Block {
	city := strings.TrimSpace(a.cfg.City)
	var id string
	if a.index != nil && city != "" {
		var ok bool
		id, ok = a.index.Lookup(city)
		if !ok {
			log.Warn().Str("city", city).Msg("destination not mapped")
			return listing.Block{City: city, Status: listing.StatusNoDestination}
		}
	}
	if a.cfg.ListingsPath == "" {
		return listing.Block{City: city, DestinationID: id, Status: listing.StatusSuccess}
	}
	if strings.Contains(a.cfg.ListingsPath, "{destination}") && id == "" {
		log.Warn().Str("city", city).Msg("listings path needs a destination id")
		return listing.Block{City: city, Status: listing.StatusNoDestination}
	}

	src := listingsSource(a.cfg.ListingsPath, id)
	data, err := a.readSource(ctx, src)
	if err != nil {
		log.Warn().Err(err).Str("listings", src).Msg("listings unavailable")
		return listing.Block{City: city, DestinationID: id, Status: listing.StatusError}
	}
	block, err := listing.Decode(data, listing.FormatFromPath(src))
	if err != nil {
		log.Warn().Err(err).Str("listings", src).Msg("listings unreadable")
		return listing.Block{City: city, DestinationID: id, Status: listing.StatusError}
	}
	if block.City == "" {
		block.City = city
	}
	if block.DestinationID == "" {
		block.DestinationID = id
	}
	if block.Status == "" {
		block.Status = listing.StatusSuccess
	}
	log.Debug().Str("listings", src).Int("items", len(block.Items)).Str("status", string(block.Status)).Msg("listings loaded")
	return block
}
