package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/mapboxutil/internal/archive"
	"github.com/MeKo-Tech/mapboxutil/internal/mapbox"
	"github.com/MeKo-Tech/mapboxutil/internal/metrics"
	"github.com/MeKo-Tech/mapboxutil/internal/server"
	"github.com/MeKo-Tech/mapboxutil/internal/staticmap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the viewport, url and layer builders over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().String("style", staticmap.DefaultStyle, "Default style id for /static-url")
	serveCmd.Flags().String("archive", "", "Serve images of this archive under /images/{name}")
	serveCmd.Flags().String("cache-control", "no-store", "Cache-Control header for archived images")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics under /metrics")

	bindFlags(serveCmd, []flagBinding{
		{"serve.addr", "addr"},
		{"serve.style", "style"},
		{"serve.archive", "archive"},
		{"serve.cache_control", "cache-control"},
		{"serve.metrics", "metrics"},
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	archivePath := viper.GetString("serve.archive")

	clientCfg := clientConfig()
	var m *metrics.Provider
	if viper.GetBool("serve.metrics") {
		m = metrics.New(version)
		clientCfg.Observer = m.ObserveUpstream
	}

	cfg := server.Config{
		Client:       mapbox.NewClient(clientCfg),
		Username:     viper.GetString("username"),
		Style:        viper.GetString("serve.style"),
		CacheControl: viper.GetString("serve.cache_control"),
		Metrics:      m,
	}
	if archivePath != "" {
		r, err := archive.OpenReader(archivePath)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer r.Close()
		cfg.Archive = r
	}

	logger.Info("server starting",
		"addr", addr,
		"username", cfg.Username,
		"style", cfg.Style,
		"archive", archivePath,
		"metrics", m != nil,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, addr, server.New(cfg, logger).Handler(), logger)
}
