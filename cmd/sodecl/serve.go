package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/cwbudde/sodecl/internal/compute"
	"github.com/cwbudde/sodecl/internal/server"
	"github.com/cwbudde/sodecl/internal/store"
)

var (
	serveAddr    string
	serveDataDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the device topology and stored profiles over HTTP",
	Long: `Discovers the OpenCL topology once at startup and serves it together with
the stored profiles and Prometheus metrics. Without a usable runtime the
topology is served empty.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "./data", "Base directory for profile storage")
	rootCmd.AddCommand(serveCmd)
}

// snapshotTopology discovers platforms and releases every handle again; the
// returned snapshot holds no runtime state.
func snapshotTopology(reg prometheus.Registerer) (topology []compute.PlatformInfo, err error) {
	mgr, err := newManager(reg)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, mgr.Close()) }()

	if err := discover(mgr); err != nil {
		return nil, err
	}
	return mgr.Topology(), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	dataDir := serveDataDir
	if configPath != "" && !cmd.Flags().Changed("data-dir") {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dataDir = cfg.DataDir
	}
	profiles, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create profile store: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	topology, err := snapshotTopology(reg)
	if err != nil {
		slog.Warn("Serving without topology", "error", err)
		topology = nil
	}

	srv := server.NewServer(serveAddr, topology, profiles, reg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
