package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/sodecl/internal/cl"
	"github.com/cwbudde/sodecl/internal/compute"
	"github.com/cwbudde/sodecl/internal/diag"
	"github.com/cwbudde/sodecl/internal/metrics"
)

// openRuntime is replaced in tests.
var openRuntime = cl.Open

// diagSink receives manager diagnostics. Replaced in tests.
var diagSink = diag.Default

func newManager(reg prometheus.Registerer, opts ...compute.Option) (*compute.Manager, error) {
	rt, err := openRuntime()
	if err != nil {
		return nil, fmt.Errorf("open OpenCL runtime: %w", err)
	}
	if reg != nil {
		opts = append(opts, compute.WithMetrics(metrics.New(reg)))
	}
	return compute.NewManager(rt, diagSink(), opts...), nil
}

// discover counts and discovers platforms.
func discover(mgr *compute.Manager) error {
	if _, err := mgr.PlatformCount(); err != nil {
		return fmt.Errorf("count platforms: %w", err)
	}
	if _, err := mgr.DiscoverPlatforms(); err != nil {
		return fmt.Errorf("discover platforms: %w", err)
	}
	return nil
}
