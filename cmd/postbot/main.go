package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/postsmith/config"
	"github.com/spacesedan/postsmith/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "postbot",
		Short:         "Writes blog posts with a language model and publishes them to WordPress",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env := os.Getenv("APP_ENV")
			if env == "" {
				env = "dev"
			}
			config.LoadEnv(env)

			loaded, err := config.Load()
			if err != nil {
				logging.InitLogger("info")
				slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
				return err
			}
			cfg = loaded
			logging.InitLogger(cfg.LogLevel)
			return nil
		},
	}

	loop := &cobra.Command{
		Use:   "loop",
		Short: "Publish a post, sleep a random interval, repeat until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(cmd.Context(), cfg)
		},
	}

	once := &cobra.Command{
		Use:   "once",
		Short: "Run a single cycle and exit non-zero if it fails",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), cfg)
		},
	}

	upload := &cobra.Command{
		Use:   "upload-image <path>",
		Short: "Upload an image file to the WordPress media library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd.Context(), cfg, args[0])
		},
	}

	root.AddCommand(loop, once, upload)
	root.RunE = loop.RunE
	return root
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runLoop(parent context.Context, cfg *config.Config) error {
	ctx, stop := signalContext(parent)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.startBackground(ctx)

	err = a.runner().Run(ctx)
	slog.Info("[Main] Shutting down postbot gracefully...")
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func runOnce(parent context.Context, cfg *config.Config) error {
	ctx, stop := signalContext(parent)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.MetricsAddr != "" {
		go a.serveMetrics(ctx)
	}

	out, err := a.pipeline.RunOnce(ctx)
	if err != nil {
		slog.Error("[Main] Run failed", slog.String("runID", out.RunID), slog.String("error", err.Error()))
		return err
	}
	if out.Skipped {
		fmt.Printf("skipped: %s\n", out.Reason)
		return nil
	}
	fmt.Printf("published post %d: %s\n", out.Post.ID, out.Post.Link)
	return nil
}

func runUpload(parent context.Context, cfg *config.Config, path string) error {
	ctx, stop := signalContext(parent)
	defer stop()

	wp := newWordPressClient(cfg)
	asset := newUploadOnlyPipeline(cfg, wp).Upload(ctx, path)
	if asset == nil {
		return fmt.Errorf("upload of %s failed", path)
	}
	fmt.Printf("uploaded media %d: %s\n", asset.RemoteID, asset.RemoteURL)
	return nil
}
