package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/waxrank/waxrank/pkg/cache"
	"github.com/waxrank/waxrank/pkg/discogs"
	"github.com/waxrank/waxrank/pkg/enrich"
	"github.com/waxrank/waxrank/pkg/errors"
	"github.com/waxrank/waxrank/pkg/export"
	"github.com/waxrank/waxrank/pkg/source"
)

// rankOpts holds the command-line flags for the rank command.
type rankOpts struct {
	user          string // Discogs username (api source)
	sourceKind    string // "api" or "csv"
	input         string // CSV path (csv source)
	category      string // folder name, or "all"
	output        string // output CSV path
	cachePath     string // cache document path
	noCache       bool   // bypass the cache entirely
	marketTTLSec  int64  // marketplace stats freshness (seconds)
	releaseTTLSec int64  // release details freshness (seconds)
	currency      string // marketplace price currency
}

const (
	sourceAPI = "api"
	sourceCSV = "csv"
)

// rankCommand creates the rank command, the main pipeline entry point.
func (c *CLI) rankCommand() *cobra.Command {
	opts := rankOpts{
		sourceKind:    sourceAPI,
		category:      "selling",
		cachePath:     defaultCacheFile,
		marketTTLSec:  int64(enrich.DefaultMarketTTL / time.Second),
		releaseTTLSec: int64(enrich.DefaultReleaseTTL / time.Second),
	}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Enrich a collection and write the ranked liquidity CSV",
		Long: `Rank fetches a Discogs collection folder (or reads a prior CSV export),
enriches every distinct release with marketplace supply and community demand
signals, scores each one with a deterministic liquidity heuristic, and writes
a CSV ranked by how quickly each release would likely sell.

Examples:
  waxrank rank --user someone --category selling
  waxrank rank --user someone --category all --output ranked.csv
  waxrank rank --source csv --input export.csv --category selling`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRank(cmd.Context(), cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.user, "user", "", "Discogs username (api source)")
	cmd.Flags().StringVar(&opts.sourceKind, "source", opts.sourceKind, "row source: api or csv")
	cmd.Flags().StringVar(&opts.input, "input", "", "input CSV path (csv source)")
	cmd.Flags().StringVar(&opts.category, "category", opts.category, `collection folder name, or "all"`)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output CSV path (default collection-output-MMDDYYYY.csv)")
	cmd.Flags().StringVar(&opts.cachePath, "cache", opts.cachePath, "cache document path")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the cache; every call is a live fetch")
	cmd.Flags().Int64Var(&opts.marketTTLSec, "marketplace-ttl", opts.marketTTLSec, "marketplace stats freshness in seconds")
	cmd.Flags().Int64Var(&opts.releaseTTLSec, "release-ttl", opts.releaseTTLSec, "release details freshness in seconds")
	cmd.Flags().StringVar(&opts.currency, "currency", "", "marketplace price currency (default USD)")

	return cmd
}

func (c *CLI) runRank(ctx context.Context, cmd *cobra.Command, opts *rankOpts) error {
	if err := validateRankOpts(opts); err != nil {
		return err
	}

	// Both sources need credentials: enrichment always talks to the API.
	cfg, err := resolveConfig(true)
	if err != nil {
		return err
	}
	if opts.currency != "" {
		cfg.Currency = opts.currency
	}

	logger := c.Logger.With("run_id", uuid.NewString())
	logger.Info("starting rank run",
		"source", opts.sourceKind,
		"category", opts.category,
		"marketplace_ttl", time.Duration(opts.marketTTLSec)*time.Second,
		"release_ttl", time.Duration(opts.releaseTTLSec)*time.Second,
		"min_interval", discogs.DefaultMinInterval,
		"max_rate_per_min", int(time.Minute/discogs.DefaultMinInterval),
	)

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	interactive := !cmd.Flags().Changed("category") && isTerminal()
	rows, err := c.loadRows(ctx, client, cfg, opts, interactive)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		printWarning("No rows matched category %q; nothing to rank", opts.category)
		return nil
	}

	var store *cache.Store
	if !opts.noCache {
		store = cache.Load(opts.cachePath)
		logger.Debug("cache loaded", "path", opts.cachePath, "releases", store.Len())
	}

	prog := newProgress(logger)
	runner := enrich.NewRunner(client, store, logger)
	records, stats, err := runner.Run(ctx, source.IDs(rows), enrich.Options{
		NoCache:    opts.noCache,
		CachePath:  opts.cachePath,
		MarketTTL:  time.Duration(opts.marketTTLSec) * time.Second,
		ReleaseTTL: time.Duration(opts.releaseTTLSec) * time.Second,
	})
	if err != nil {
		return err
	}
	prog.done("Enriched " + pluralReleases(stats.Distinct))

	outPath := opts.output
	if outPath == "" {
		outPath = export.DefaultPath(time.Now())
	}
	n, err := export.WriteFile(outPath, rows, records)
	if err != nil {
		return err
	}

	printSuccess("Wrote ranked CSV (%d rows)", n)
	printFile(outPath)
	printRunStats(len(rows), stats.Distinct, stats.MarketHits+stats.ReleaseHits)
	return nil
}

// loadRows resolves the base row set from the configured source. With
// the api source, an omitted category on a terminal opens the folder
// picker instead of defaulting.
func (c *CLI) loadRows(ctx context.Context, client *discogs.Client, cfg *Config, opts *rankOpts, interactive bool) ([]source.Row, error) {
	if opts.sourceKind == sourceCSV {
		return source.FromCSV(opts.input, opts.category)
	}

	user := opts.user
	if user == "" {
		user = cfg.User
	}

	if interactive {
		folders, err := client.Folders(ctx, user)
		if err != nil {
			return nil, err
		}
		picked, err := pickFolder(folders)
		if err != nil {
			return nil, err
		}
		if picked == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "no folder selected")
		}
		opts.category = picked
	}

	spinner := newSpinnerWithContext(ctx, "Fetching collection from Discogs...")
	spinner.Start()
	rows, err := source.FromAPI(ctx, client, user, opts.category)
	if err != nil {
		spinner.StopWithError("Collection fetch failed")
		return nil, err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Fetched %d collection rows", len(rows)))
	return rows, nil
}

func validateRankOpts(opts *rankOpts) error {
	switch opts.sourceKind {
	case sourceAPI:
		if opts.user == "" {
			if cfg, err := loadConfig(); err != nil || cfg.User == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--user is required with the api source")
			}
		}
	case sourceCSV:
		if opts.input == "" {
			return errors.New(errors.ErrCodeInvalidInput, "--input is required with the csv source")
		}
		if opts.category == "" {
			opts.category = "selling"
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown source %q (expected api or csv)", opts.sourceKind)
	}
	if opts.marketTTLSec <= 0 || opts.releaseTTLSec <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "ttl values must be positive")
	}
	return nil
}

func pluralReleases(n int) string {
	if n == 1 {
		return "1 release"
	}
	return fmt.Sprintf("%d releases", n)
}
