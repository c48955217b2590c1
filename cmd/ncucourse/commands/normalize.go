package commands

import (
	"fmt"
	"log/slog"

	"ncucourse/lib/course"
	"ncucourse/services/catalog"

	devenv "ncucourse/dev/env"

	"github.com/spf13/cobra"
)

var (
	normalizeOut *string
	normalizeDb  *string
)

func init() {
	normalizeOut = normalizeCmd.Flags().String("out", "", "Write the records as json to this file, overrides output.json.")
	normalizeDb = normalizeCmd.Flags().String("db", "", "Write the records to this sqlite database, overrides output.database.file.")
	rootCmd.AddCommand(normalizeCmd)
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <raw.json>",
	Short: "Normalizes and deduplicates a raw dump written by scrape --raw-out.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := readConfig(*configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if *normalizeOut != "" {
			cfg.Output.Json = *normalizeOut
		}
		if *normalizeDb != "" {
			cfg.Output.Database.File = *normalizeDb
		}

		path, err := devenv.ResolvePath(args[0])
		if err != nil {
			return fmt.Errorf("resolve raw dump path: %w", err)
		}
		raws, err := course.ReadRawFile(path)
		if err != nil {
			return fmt.Errorf("read raw dump: %w", err)
		}

		sinks, release, err := cfg.Output.sinks(ctx)
		defer release()
		if err != nil {
			return fmt.Errorf("open outputs: %w", err)
		}

		service, err := catalog.NewService(catalog.Options{Sinks: sinks})
		if err != nil {
			return fmt.Errorf("create catalog service: %w", err)
		}
		res, err := service.Rebuild(ctx, raws)
		if err != nil {
			return fmt.Errorf("write records: %w", err)
		}
		slog.Info(
			"normalized raw dump",
			"run", res.Run.ID,
			"inputs", res.Run.Stats.Inputs,
			"courses", len(res.Records),
		)
		return nil
	},
}
