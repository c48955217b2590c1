package commands

import (
	"context"
	"errors"
	"log/slog"

	"ncucourse/lib/configutil"
	"ncucourse/lib/telemetry"
	"ncucourse/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

const serviceName = "ncucourse"

var (
	verbose    *bool
	configPath *string
	tel        telemetry.Telemetry
)

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
	configPath = rootCmd.PersistentFlags().String("config", "ncucourse.json5", "The config file, <name>.local.json5 next to it overrides it.")
}

var rootCmd = &cobra.Command{
	Use:   "ncucourse",
	Short: "ncucourse scrapes the NCU course catalog into normalized, deduplicated records.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)

		err := configutil.LoadDotenv(".env", ".env.local")
		if err != nil {
			slog.Warn("failed to load .env", "err", err)
		}

		tel, err = telemetry.SetupFromEnv(cmd.Context(), serviceName)
		if errors.Is(err, telemetry.ErrNoConfig) {
			slog.Debug("telemetry.json5 not found, telemetry disabled")
		} else if err != nil {
			slog.Warn("failed to setup telemetry", "err", err)
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the command line, commands return their errors
// instead of exiting so that their deferred cleanup runs first.
func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)

	// PersistentPostRun is skipped when a command fails
	serr := tel.Shutdown(context.Background())
	if serr != nil {
		slog.Warn("failed to shutdown telemetry", "err", serr)
	}

	if err != nil {
		serviceutil.Fatal("command failed", err)
	}
}
