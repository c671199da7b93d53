package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"results_sync/internal/platform/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "syncer",
	Short: "Race results sync and ranking engine",
	Long: `syncer keeps a local cache of race results in step with the timing API.

It resolves gender and division places from leaderboard brackets, stores the
merged results in PostgreSQL and polls live events on a schedule.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger := logging.New("error")
		logger.Error("command failed", "error", err)
		_ = logger.Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
