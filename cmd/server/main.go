package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thebartekbanach/webimage/pkg/config"
	"github.com/thebartekbanach/webimage/pkg/logging"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "webimage",
	Short: "Image fetching proxy with tiered memory and disk cache",
	Long: `webimage downloads, decodes, transforms and caches remote images.

Example usage:
  webimage serve --config webimage.yaml
  webimage fetch https://example.com/image.png -o image.png`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file, WEBIMAGE_ prefixed environment variables override it")
}

// loadEnvironment reads the configuration and builds the logger every command uses.
func loadEnvironment() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.InitLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}

	return cfg, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
