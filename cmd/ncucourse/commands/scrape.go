package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"ncucourse/lib/restyutil"
	"ncucourse/lib/scrapers/ncu"
	"ncucourse/lib/telemetry"
	"ncucourse/services/catalog"

	devenv "ncucourse/dev/env"

	"github.com/spf13/cobra"
)

var (
	scrapeOut         *string
	scrapeRawOut      *string
	scrapeDb          *string
	scrapeConcurrency *int
	scrapeDumpHttp    *string
	scrapeNoCache     *bool
)

func init() {
	scrapeOut = scrapeCmd.Flags().String("out", "", "Write the records as json to this file, overrides output.json.")
	scrapeRawOut = scrapeCmd.Flags().String("raw-out", "", "Dump the raw extracted rows to this file so they can be normalized again offline.")
	scrapeDb = scrapeCmd.Flags().String("db", "", "Write the records to this sqlite database, overrides output.database.file.")
	scrapeConcurrency = scrapeCmd.Flags().Int("concurrency", 0, "Class listings fetched at once, overrides concurrency.")
	scrapeDumpHttp = scrapeCmd.Flags().String("dump-http", "", "Dump every http message to this directory, requires --verbose.")
	scrapeNoCache = scrapeCmd.Flags().Bool("no-cache", false, "Do not read or write the page cache.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--out <courses.json>] [--raw-out <raw.json>] [--db <courses.db>]",
	Short: "Scrapes the whole course catalog and writes the canonical records.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := readConfig(*configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if *scrapeOut != "" {
			cfg.Output.Json = *scrapeOut
		}
		if *scrapeRawOut != "" {
			cfg.Output.RawJson = *scrapeRawOut
		}
		if *scrapeDb != "" {
			cfg.Output.Database.File = *scrapeDb
		}
		if *scrapeConcurrency > 0 {
			cfg.Concurrency = *scrapeConcurrency
		}
		if *scrapeNoCache {
			cfg.Cache.Disabled = true
		}

		opts := cfg.clientOptions()
		cache, err := cfg.Cache.open()
		if err != nil {
			return fmt.Errorf("open page cache: %w", err)
		}
		if cache != nil {
			defer cache.Close()
			opts.Cache = cache
		}
		if *scrapeDumpHttp != "" {
			dir, err := devenv.ResolvePath(*scrapeDumpHttp)
			if err != nil {
				return fmt.Errorf("resolve http dump dir: %w", err)
			}
			output, err := restyutil.NewFilesystemOutput(filepath.Clean(dir))
			if err != nil {
				return fmt.Errorf("prepare http dump dir: %w", err)
			}
			opts.Instrument = output
		}

		client, err := ncu.NewClient(opts)
		if err != nil {
			return fmt.Errorf("create catalog client: %w", err)
		}

		sinks, release, err := cfg.Output.sinks(ctx)
		defer release()
		if err != nil {
			return fmt.Errorf("open outputs: %w", err)
		}

		rawOut := ""
		if cfg.Output.RawJson != "" {
			rawOut, err = devenv.ResolvePath(cfg.Output.RawJson)
			if err != nil {
				return fmt.Errorf("resolve raw output path: %w", err)
			}
		}

		service, err := catalog.NewService(catalog.Options{
			Feed:        client,
			Sinks:       sinks,
			Concurrency: cfg.Concurrency,
			RawOut:      rawOut,
		})
		if err != nil {
			return fmt.Errorf("create catalog service: %w", err)
		}

		telemetry.InstrumentPerfStats(ctx, time.Second*10)

		t1 := time.Now()
		res, err := service.Scrape(ctx)
		if err != nil {
			return fmt.Errorf("scrape: %w", err)
		}
		t2 := time.Now()

		if res.FetchErr != nil {
			slog.Warn(
				"some class listings could not be fetched",
				"failures", res.Run.Failures,
				"err", res.FetchErr,
			)
		}
		slog.Info(
			"scrape finished",
			"run", res.Run.ID,
			"term", res.Run.Term,
			"targets", res.Run.Targets,
			"courses", len(res.Records),
			"seconds", t2.Sub(t1).Seconds(),
		)
		return nil
	},
}
