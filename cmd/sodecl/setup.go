package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/cwbudde/sodecl/internal/compute"
	"github.com/cwbudde/sodecl/internal/config"
	"github.com/cwbudde/sodecl/internal/store"
)

type setupOptions struct {
	platform       int
	device         int
	deviceType     string
	localGroupSize int
	output         string
	solver         string
	buildOptions   []string
	kernelPath     string
	kernels        []string
	dataDir        string

	save    bool
	profile string
	metrics bool
}

var setupOpts setupOptions

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Select a device and build the solver kernels on it",
	Long: `Runs the full setup sequence: count and discover platforms, validate the
selected platform/device/type, create a context and command queue and, when a
kernel file is given, build the program and create its kernels.

Values come from --config when given; flags set on the command line win.
--profile reuses the selection and settings of a stored profile.`,
	RunE: runSetup,
}

func init() {
	d := config.Default()
	f := setupCmd.Flags()
	f.IntVar(&setupOpts.platform, "platform", d.Platform, "Platform index")
	f.IntVar(&setupOpts.device, "device", d.Device, "Device index within the platform")
	f.StringVar(&setupOpts.deviceType, "device-type", d.DeviceType, "Device type filter (all, cpu, gpu, accelerator)")
	f.IntVar(&setupOpts.localGroupSize, "local-group-size", d.LocalGroupSize, "Local work-group size")
	f.StringVar(&setupOpts.output, "output", d.Output, "Output type (file, array, none)")
	f.StringVar(&setupOpts.solver, "solver", d.Solver, "Solver (euler, rk4, implicit-euler, implicit-midpoint, stochastic-euler)")
	f.StringSliceVar(&setupOpts.buildOptions, "build-option", nil, "Program build option (fast-relaxed-math, cl2.0, cl2.1); repeatable")
	f.StringVar(&setupOpts.kernelPath, "kernel", "", "OpenCL kernel source file")
	f.StringSliceVar(&setupOpts.kernels, "kernel-name", d.Kernels, "Kernel entry points to create")
	f.StringVar(&setupOpts.dataDir, "data-dir", d.DataDir, "Base directory for profile storage")
	f.BoolVar(&setupOpts.save, "save", false, "Store the setup as a profile")
	f.StringVar(&setupOpts.profile, "profile", "", "Reuse the selection and settings of a stored profile")
	f.BoolVar(&setupOpts.metrics, "metrics", false, "Print the runtime metrics collected during setup")
	rootCmd.AddCommand(setupCmd)
}

// apply overlays the options on cfg. With no config file every option
// applies; otherwise only the flags the user set.
func (o setupOptions) apply(cfg *config.Config, changed func(string) bool) {
	all := configPath == ""
	set := func(name string) bool { return all || changed(name) }

	if set("platform") {
		cfg.Platform = o.platform
	}
	if set("device") {
		cfg.Device = o.device
	}
	if set("device-type") {
		cfg.DeviceType = o.deviceType
	}
	if set("local-group-size") {
		cfg.LocalGroupSize = o.localGroupSize
	}
	if set("output") {
		cfg.Output = o.output
	}
	if set("solver") {
		cfg.Solver = o.solver
	}
	if set("build-option") {
		cfg.BuildOptions = o.buildOptions
	}
	if set("kernel") {
		cfg.KernelPath = o.kernelPath
	}
	if set("kernel-name") {
		cfg.Kernels = o.kernels
	}
	if set("data-dir") {
		cfg.DataDir = o.dataDir
	}
}

// applyProfile replaces the selection and settings in cfg with those of p.
func applyProfile(cfg *config.Config, p *store.Profile) {
	cfg.Platform = p.PlatformIndex
	cfg.Device = p.DeviceIndex
	cfg.DeviceType = p.DeviceType
	cfg.LocalGroupSize = p.LocalGroupSize
	cfg.Output = p.Output
	cfg.Solver = p.Solver
	cfg.BuildOptions = p.BuildOptions
	cfg.KernelPath = p.KernelPath
	if len(p.Kernels) > 0 {
		cfg.Kernels = p.Kernels
	}
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupOpts.apply(&cfg, cmd.Flags().Changed)

	var reused *store.Profile
	if setupOpts.profile != "" {
		fs, err := store.NewFSStore(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to create profile store: %w", err)
		}
		reused, err = fs.Load(setupOpts.profile)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		applyProfile(&cfg, reused)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var (
		reg        *prometheus.Registry
		registerer prometheus.Registerer
	)
	if setupOpts.metrics {
		reg = prometheus.NewRegistry()
		registerer = reg
	}
	res, err := setup(cfg, reused, registerer)
	if err != nil {
		return err
	}
	printSetup(cmd.OutOrStdout(), res)
	if reg != nil {
		if err := writeMetrics(cmd.OutOrStdout(), reg); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	if setupOpts.save {
		id, err := saveSetup(cfg.DataDir, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s\n", id)
	}
	return nil
}

// setupResult is what a completed setup leaves behind once the manager is
// closed.
type setupResult struct {
	cfg      config.Config
	platform compute.PlatformInfo
	device   compute.DeviceInfo
	state    compute.State
	options  string
	trace    []store.TraceEntry
}

type setupStep struct {
	name string
	fn   func() error
}

type tracer struct {
	mgr     *compute.Manager
	entries []store.TraceEntry
}

func (t *tracer) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	entry := store.TraceEntry{
		Step:      name,
		State:     t.mgr.State().String(),
		Duration:  time.Since(start),
		Timestamp: start,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	t.entries = append(t.entries, entry)
	slog.Debug("Setup step", "step", name, "state", entry.State, "duration", entry.Duration, "error", entry.Error)
	return err
}

// setup drives a manager through the whole lifecycle described by cfg and
// releases every handle before returning.
func setup(cfg config.Config, reused *store.Profile, reg prometheus.Registerer) (res setupResult, err error) {
	filter, err := cfg.Filter()
	if err != nil {
		return res, err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return res, err
	}

	mgr, err := newManager(reg, compute.WithSettings(settings))
	if err != nil {
		return res, err
	}
	defer func() { err = errors.Join(err, mgr.Close()) }()

	t := &tracer{mgr: mgr}
	steps := []setupStep{
		{"count", func() error { _, err := mgr.PlatformCount(); return err }},
		{"discover", func() error { _, err := mgr.DiscoverPlatforms(); return err }},
		{"select", func() error { return mgr.SelectDevice(cfg.Platform, filter, cfg.Device) }},
		{"context", mgr.CreateContext},
		{"queue", mgr.CreateCommandQueue},
	}
	if cfg.KernelPath != "" {
		steps = append(steps,
			setupStep{"source", func() error { return mgr.LoadKernelSource(cfg.KernelPath) }},
			setupStep{"build", mgr.BuildProgram},
		)
		for _, name := range cfg.Kernels {
			steps = append(steps, setupStep{"kernel " + name, func() error { return mgr.CreateKernel(name) }})
		}
	}

	for _, s := range steps {
		if err := t.step(s.name, s.fn); err != nil {
			return res, fmt.Errorf("%s: %w", s.name, err)
		}
		if s.name == "select" && reused != nil {
			p, _ := mgr.SelectedPlatform()
			d, _ := mgr.SelectedDevice()
			if err := reused.CheckTopology(p.Name(), d.Name()); err != nil {
				return res, fmt.Errorf("profile %s: %w", reused.ID, err)
			}
		}
	}

	sel, _ := mgr.Selection()
	res = setupResult{
		cfg:      cfg,
		platform: mgr.Topology()[sel.Platform],
		state:    mgr.State(),
		options:  mgr.BuildOptions(),
		trace:    t.entries,
	}
	res.platform.Index = sel.Platform
	res.device = res.platform.Devices[sel.Device]
	return res, nil
}

func printSetup(out io.Writer, res setupResult) {
	fmt.Fprintf(out, "Platform: %d %s\n", res.platform.Index, res.platform.Name)
	fmt.Fprintf(out, "Device:   %d %s (%s, %s)\n", res.device.Index, res.device.Name, res.device.Type, res.device.Version)
	solver := res.cfg.Solver
	if st, err := compute.ParseSolverType(solver); err == nil && st.Stochastic() {
		solver += " (SDE)"
	}
	fmt.Fprintf(out, "Solver:   %s, local group size %d, output %s\n", solver, res.cfg.LocalGroupSize, res.cfg.Output)
	if res.options != "" {
		fmt.Fprintf(out, "Options:  %s\n", res.options)
	}
	fmt.Fprintf(out, "State:    %s\n", res.state)
}

// writeMetrics dumps every family in reg in the Prometheus text format.
func writeMetrics(out io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}

// saveSetup stores res as a new profile together with its setup trace.
func saveSetup(dataDir string, res setupResult) (string, error) {
	fs, err := store.NewFSStore(dataDir)
	if err != nil {
		return "", fmt.Errorf("failed to create profile store: %w", err)
	}

	p := store.NewProfile()
	p.PlatformIndex = res.platform.Index
	p.PlatformName = res.platform.Name
	p.DeviceIndex = res.device.Index
	p.DeviceName = res.device.Name
	p.DeviceVersion = res.device.Version
	p.DeviceType = res.cfg.DeviceType
	p.LocalGroupSize = res.cfg.LocalGroupSize
	p.Output = res.cfg.Output
	p.Solver = res.cfg.Solver
	p.BuildOptions = res.cfg.BuildOptions
	if res.cfg.KernelPath != "" {
		p.KernelPath = res.cfg.KernelPath
		p.Kernels = res.cfg.Kernels
	}

	if err := fs.Save(p); err != nil {
		return "", fmt.Errorf("failed to save profile: %w", err)
	}

	tw, err := store.NewTraceWriter(fs.BaseDir(), p.ID, false)
	if err != nil {
		return "", err
	}
	for _, e := range res.trace {
		if err := tw.Write(e); err != nil {
			tw.Close()
			return "", err
		}
	}
	if err := tw.Close(); err != nil {
		return "", err
	}

	slog.Info("Saved profile", "id", p.ID, "device", p.DeviceName)
	return p.ID, nil
}
