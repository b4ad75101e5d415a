package main

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/thebartekbanach/webimage/pkg/operation"
	"github.com/thebartekbanach/webimage/pkg/slot"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch one image through the cache",
	Long: `Fetch downloads one image through the configured cache tiers and reports
where it was served from. Local paths are read with the file scheme.

Examples:
  webimage fetch https://example.com/image.jpg
  webimage fetch https://example.com/image.jpg --refresh -o image.jpg
  webimage fetch ./image.png --ignore-cache`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringP("output", "o", "", "write the image to this file")
	fetchCmd.Flags().Bool("refresh", false, "skip cache lookup and overwrite cached image")
	fetchCmd.Flags().Bool("ignore-cache", false, "neither read nor write the cache")
	fetchCmd.Flags().Bool("memory-only", false, "do not use the disk tier")
	fetchCmd.Flags().Bool("progressive", false, "report partial images while downloading")
}

func runFetch(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	refresh, _ := cmd.Flags().GetBool("refresh")
	ignoreCache, _ := cmd.Flags().GetBool("ignore-cache")
	memoryOnly, _ := cmd.Flags().GetBool("memory-only")
	progressive, _ := cmd.Flags().GetBool("progressive")

	source, err := parseSource(args[0])
	if err != nil {
		return err
	}

	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := InitializeApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	options := defaultOptions(cfg)
	options.RefreshCache = refresh
	options.IgnoreCache = ignoreCache
	options.IgnoreDiskCache = memoryOnly
	options.Progressive = progressive

	stderr := cmd.ErrOrStderr()
	results := make(chan operation.Result, 1)
	started := time.Now()

	controller := slot.NewController(app.manager, nil, logger)
	controller.BeginRequest(ctx, slot.Request{
		URL:     source,
		Options: options,
		Progress: func(received, expected int64) {
			if expected > 0 {
				fmt.Fprintf(stderr, "\r%s / %s", humanize.Bytes(uint64(received)), humanize.Bytes(uint64(expected)))
			} else {
				fmt.Fprintf(stderr, "\r%s", humanize.Bytes(uint64(received)))
			}
		},
		Completion: func(result operation.Result) {
			if result.Stage == operation.StageProgress {
				fmt.Fprintf(stderr, "\rpartial image %v\n", result.Image.Bounds().Size())
				return
			}
			results <- result
		},
	})

	var result operation.Result
	select {
	case result = <-results:
	case <-ctx.Done():
		controller.Cancel()
		return ctx.Err()
	}

	if result.Stage != operation.StageFinished {
		if result.Err != nil {
			return result.Err
		}
		return fmt.Errorf("fetching %s: %s", source.Redacted(), result.Stage)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %v %s from %s in %s\n",
		source.Redacted(),
		result.Image.Bounds().Size(),
		humanize.Bytes(uint64(len(result.Data))),
		result.From,
		time.Since(started).Round(time.Millisecond),
	)

	if outputPath == "" {
		return nil
	}

	if len(result.Data) > 0 {
		return os.WriteFile(outputPath, result.Data, 0o644)
	}

	return imaging.Save(result.Image.First(), outputPath)
}

// parseSource accepts absolute urls and local paths.
func parseSource(raw string) (*url.URL, error) {
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return u, nil
	}

	path, err := filepath.Abs(raw)
	if err != nil {
		return nil, err
	}

	return &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}, nil
}
