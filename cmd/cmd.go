package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"kijiji-rentals/config"
	"kijiji-rentals/utils"
	"kijiji-rentals/version"
)

var configPath string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer(cmd.OutOrStdout())
	},
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "kijiji-rentals",
		Short:        "normalize scraped Kijiji rental listings.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "", "optional YAML config file")
	rootCmd.AddCommand(processCmd, cleanCmd, versionCmd)
	return rootCmd
}

// Execute runs the CLI and exits with status 1 on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger shared by commands.
func setup() (*config.Config, *utils.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := utils.NewLoggerWithOptions(utils.LogOptions{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, nil, err
	}
	if !cfg.EnvFileLoaded {
		logger.Debug("[config] No .env file found, falling back to system env vars")
	}
	return cfg, logger, nil
}

// requireFile fails when path does not name a readable regular file.
func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return eris.Wrapf(err, "%s could not be found", path)
	}
	if info.IsDir() {
		return eris.Errorf("%s is a directory", path)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// derivedPath replaces the ".csv" extension of input (and any of the given
// stage suffixes before it) with suffix, e.g. ads.csv → ads_processed.csv.
func derivedPath(input, suffix string, stripSuffixes ...string) string {
	stem := strings.TrimSuffix(input, filepath.Ext(input))
	for _, s := range stripSuffixes {
		stem = strings.TrimSuffix(stem, s)
	}
	return stem + suffix
}
