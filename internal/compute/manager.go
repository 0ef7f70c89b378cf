// Package compute discovers OpenCL platforms and devices, validates the
// device selection of a solver run and owns the execution resources built
// from that selection.
//
// A Manager walks a fixed order: count platforms, discover them, select a
// device, create a context, then a command queue, program and kernels.
// Operations attempted out of order fail with ErrPrecondition instead of
// acting on zero-valued state.
package compute

import (
	"errors"
	"fmt"

	"github.com/cwbudde/sodecl/internal/cl"
	"github.com/cwbudde/sodecl/internal/diag"
	"github.com/cwbudde/sodecl/internal/metrics"
)

// State is the lifecycle position of a Manager.
type State int

const (
	Uninitialized State = iota
	PlatformsDiscovered
	DeviceSelected
	ContextCreated
	ProgramBuilt
	KernelsReady
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case PlatformsDiscovered:
		return "platforms-discovered"
	case DeviceSelected:
		return "device-selected"
	case ContextCreated:
		return "context-created"
	case ProgramBuilt:
		return "program-built"
	case KernelsReady:
		return "kernels-ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics records runtime calls, selections and live handles in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithSettings replaces DefaultSettings.
func WithSettings(s Settings) Option {
	return func(mgr *Manager) { mgr.settings = s }
}

// Manager owns the discovered platforms, the selection and every runtime
// handle created from it. It is not safe for concurrent use.
type Manager struct {
	rt      cl.Runtime
	sink    diag.Sink
	metrics *metrics.Metrics

	platformCount int
	counted       bool
	discovered    bool
	platforms     []*Platform

	selection *Selection
	settings  Settings
	source    KernelSource

	bundles []*Bundle
	closed  bool
}

// NewManager returns a manager driving rt and reporting to sink. A nil sink
// discards diagnostics.
func NewManager(rt cl.Runtime, sink diag.Sink, opts ...Option) *Manager {
	if sink == nil {
		sink = diag.Discard
	}
	m := &Manager{
		sink:     sink,
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.rt = metrics.Instrument(rt, m.metrics)
	return m
}

func (m *Manager) usable() error {
	if m.closed {
		return ErrClosed
	}
	return nil
}

// PlatformCount asks the runtime how many platforms are available.
func (m *Manager) PlatformCount() (int, error) {
	if err := m.usable(); err != nil {
		return 0, err
	}
	n, st := m.rt.PlatformCount()
	if st == cl.PlatformNotFoundKHR {
		// An ICD loader without installed platforms; the host simply has none.
		n, st = 0, cl.Success
	}
	if st != cl.Success {
		err := newRuntimeError(cl.OpPlatformCount, st)
		m.sink.Write(fmt.Sprintf("Failed to get the OpenCL platform count: %s\n", err))
		return 0, err
	}
	if n < 0 {
		n = 0
	}
	m.platformCount = n
	m.counted = true
	return n, nil
}

// DiscoverPlatforms builds one Platform per runtime platform, in runtime
// order, and returns how many were built. It either records every platform
// or none.
func (m *Manager) DiscoverPlatforms() (int, error) {
	if err := m.usable(); err != nil {
		return 0, err
	}
	if !m.counted {
		return 0, preconditionError("platform count must be queried before discovering platforms")
	}
	if m.discovered {
		return 0, preconditionError("platforms already discovered")
	}

	ids, st := m.rt.PlatformIDs(m.platformCount)
	if st != cl.Success {
		err := newRuntimeError(cl.OpPlatformIDs, st)
		m.sink.Write(fmt.Sprintf("Failed to get the OpenCL platform IDs: %s\n", err))
		return 0, err
	}

	platforms := make([]*Platform, 0, len(ids))
	for i, id := range ids {
		p, err := newPlatform(m.rt, id)
		if err != nil {
			for j := len(platforms) - 1; j >= 0; j-- {
				platforms[j].Close(m.rt)
			}
			m.sink.Write(fmt.Sprintf("Failed to create platform %d: %s\n", i, err))
			return 0, fmt.Errorf("platform %d: %w", i, err)
		}
		platforms = append(platforms, p)
	}

	for _, p := range platforms {
		for range p.devices {
			m.metrics.Acquired(handleDevice)
		}
	}
	m.platforms = platforms
	m.discovered = true
	return len(platforms), nil
}

// Platforms returns the discovered platforms in runtime order.
func (m *Manager) Platforms() []*Platform {
	return append([]*Platform(nil), m.platforms...)
}

// Topology returns a snapshot of every platform and device.
func (m *Manager) Topology() []PlatformInfo {
	out := make([]PlatformInfo, len(m.platforms))
	for i, p := range m.platforms {
		out[i] = p.Info()
		out[i].Index = i
	}
	return out
}

// SelectDevice validates and records the device the solver will run on.
//
// The checks run in order (platform bounds, device bounds, device type) and
// stop at the first failure. A failed check writes a diagnostic naming it,
// leaves the previous selection untouched and returns a *SelectionError.
func (m *Manager) SelectDevice(platform int, filter DeviceType, device int) error {
	if err := m.usable(); err != nil {
		return err
	}
	if !m.discovered {
		return preconditionError("platforms must be discovered before selecting a device")
	}

	reject := func(check Check, reason string) error {
		m.sink.Write(reason + "\n")
		m.metrics.SelectionRejected(string(check))
		return &SelectionError{Check: check, Platform: platform, Device: device, Filter: filter, Reason: reason}
	}

	if platform < 0 || platform >= len(m.platforms) {
		return reject(CheckPlatformBounds, "Selected platform number is out of bounds.")
	}
	p := m.platforms[platform]

	dev, ok := p.Device(device)
	if !ok {
		return reject(CheckDeviceBounds, "Selected device number is out of bounds.")
	}

	if filter != DeviceAll && !dev.Matches(filter) {
		return reject(CheckDeviceType, "Selected device is not of the type selected.")
	}

	m.sink.Write("Selected platform name: " + p.Name() + "\n")
	m.sink.Write("Selected device name: " + dev.Name() + "\n")
	m.sink.Write("Selected device OpenCL version: " + dev.Version() + "\n")

	m.selection = &Selection{Platform: platform, Device: device, Type: filter}
	m.metrics.SelectionAccepted()
	return nil
}

// Selection returns the current selection, if any.
func (m *Manager) Selection() (Selection, bool) {
	if m.selection == nil {
		return Selection{}, false
	}
	return *m.selection, true
}

// SelectedDevice returns the device of the current selection.
func (m *Manager) SelectedDevice() (*Device, bool) {
	if m.selection == nil {
		return nil, false
	}
	return m.platforms[m.selection.Platform].devices[m.selection.Device], true
}

// SelectedPlatform returns the platform of the current selection.
func (m *Manager) SelectedPlatform() (*Platform, bool) {
	if m.selection == nil {
		return nil, false
	}
	return m.platforms[m.selection.Platform], true
}

// Configure validates and stores solver settings used by later program builds.
func (m *Manager) Configure(s Settings) error {
	if err := m.usable(); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		m.sink.Write("Invalid solver settings: " + err.Error() + "\n")
		return err
	}
	s.BuildOptions = append([]BuildOption(nil), s.BuildOptions...)
	m.settings = s
	return nil
}

// Settings returns the current solver settings.
func (m *Manager) Settings() Settings { return m.settings }

// CreateContext creates a context bound to exactly the selected device and
// starts a new resource bundle for it. Every call adds an independent bundle.
func (m *Manager) CreateContext() error {
	if err := m.usable(); err != nil {
		return err
	}
	dev, ok := m.SelectedDevice()
	if !ok {
		return preconditionError("a device must be selected before creating a context")
	}

	ctx, st := m.rt.CreateContext([]cl.DeviceID{dev.ID()})
	if st != cl.Success {
		m.sink.Write(fmt.Sprintf("Error: Failed to create context! %s\n", st.Describe()))
		return newRuntimeError(cl.OpCreateContext, st)
	}

	m.bundles = append(m.bundles, &Bundle{
		Selection: *m.selection,
		Device:    dev,
		Context:   ctx,
	})
	m.metrics.Acquired(handleContext)
	return nil
}

// current returns the newest bundle.
func (m *Manager) current() (*Bundle, bool) {
	if len(m.bundles) == 0 {
		return nil, false
	}
	return m.bundles[len(m.bundles)-1], true
}

// CreateCommandQueue creates the command queue of the newest context.
func (m *Manager) CreateCommandQueue() error {
	if err := m.usable(); err != nil {
		return err
	}
	b, ok := m.current()
	if !ok {
		return preconditionError("a context must exist before creating a command queue")
	}
	if b.HasQueue() {
		return preconditionError("the current context already has a command queue")
	}

	q, st := m.rt.CreateCommandQueue(b.Context, b.Device.ID())
	if st != cl.Success {
		m.sink.Write(fmt.Sprintf("Error: Failed to create command queue! %s\n", st.Describe()))
		return newRuntimeError(cl.OpCreateCommandQueue, st)
	}
	b.Queue = q
	m.metrics.Acquired(handleQueue)
	return nil
}

// LoadKernelSource reads the kernel file at path into the source buffer used
// by BuildProgram.
func (m *Manager) LoadKernelSource(path string) error {
	if err := m.usable(); err != nil {
		return err
	}
	src, err := ReadKernelSource(path)
	if err != nil {
		m.sink.Write("Failed to load kernel source: " + err.Error() + "\n")
		return err
	}
	m.source = src
	return nil
}

// BuildOptions returns the compiler options string BuildProgram passes to the runtime.
func (m *Manager) BuildOptions() string {
	return BuildOptionsString(m.settings.BuildOptions, m.source.Dir())
}

// BuildProgram creates a program from the loaded source in the newest context
// and builds it for the selected device. On build failure the build log is
// written to the diagnostic sink and the program is released.
func (m *Manager) BuildProgram() error {
	if err := m.usable(); err != nil {
		return err
	}
	b, ok := m.current()
	if !ok {
		return preconditionError("a context must exist before building a program")
	}
	if len(m.source.Data) == 0 {
		return preconditionError("kernel source must be loaded before building a program")
	}
	if b.HasProgram() {
		return preconditionError("the current context already has a program")
	}

	prog, st := m.rt.CreateProgramWithSource(b.Context, m.source.Data)
	if st != cl.Success {
		m.sink.Write(fmt.Sprintf("Error: Failed to create program from source! %s\n", st.Describe()))
		return newRuntimeError(cl.OpCreateProgram, st)
	}

	options := m.BuildOptions()
	devices := []cl.DeviceID{b.Device.ID()}
	if st := m.rt.BuildProgram(prog, devices, options); st != cl.Success {
		m.sink.Write(fmt.Sprintf("Error: Failed to build program! %s\n", st.Describe()))
		if log, lst := m.rt.ProgramBuildLog(prog, b.Device.ID()); lst == cl.Success && log != "" {
			m.sink.Write("Build log:\n" + log + "\n")
		}
		m.rt.ReleaseProgram(prog)
		return newRuntimeError(cl.OpBuildProgram, st)
	}

	b.Program = prog
	m.metrics.Acquired(handleProgram)
	return nil
}

// CreateKernel extracts the entry point name from the built program.
func (m *Manager) CreateKernel(name string) error {
	if err := m.usable(); err != nil {
		return err
	}
	b, ok := m.current()
	if !ok || !b.HasProgram() {
		return preconditionError("a program must be built before creating kernels")
	}
	if _, exists := b.Kernel(name); exists {
		return preconditionError("kernel %q already created", name)
	}

	k, st := m.rt.CreateKernel(b.Program, name)
	if st != cl.Success {
		m.sink.Write(fmt.Sprintf("Error: Failed to create kernel %q! %s\n", name, st.Describe()))
		return newRuntimeError(cl.OpCreateKernel, st)
	}
	b.Kernels = append(b.Kernels, NamedKernel{Name: name, Handle: k})
	m.metrics.Acquired(handleKernel)
	return nil
}

// Bundles returns copies of the resource bundles, oldest first.
func (m *Manager) Bundles() []Bundle {
	out := make([]Bundle, len(m.bundles))
	for i, b := range m.bundles {
		out[i] = b.clone()
	}
	return out
}

// State reports how far the manager has progressed.
func (m *Manager) State() State {
	switch {
	case m.closed || !m.discovered:
		return Uninitialized
	case m.selection == nil:
		return PlatformsDiscovered
	}
	b, ok := m.current()
	switch {
	case !ok:
		return DeviceSelected
	case len(b.Kernels) > 0:
		return KernelsReady
	case b.HasProgram():
		return ProgramBuilt
	default:
		return ContextCreated
	}
}

// Close releases every handle in reverse acquisition order: bundles newest
// first (kernels, program, queue, context), then platforms and their devices.
// It is safe to call more than once.
func (m *Manager) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	for i := len(m.bundles) - 1; i >= 0; i-- {
		if err := m.bundles[i].release(m.rt, m.metrics); err != nil {
			errs = append(errs, err)
		}
	}
	m.bundles = nil

	for i := len(m.platforms) - 1; i >= 0; i-- {
		p := m.platforms[i]
		if err := p.Close(m.rt); err != nil {
			errs = append(errs, err)
		}
		for range p.devices {
			m.metrics.Released(handleDevice)
		}
	}
	m.platforms = nil
	m.selection = nil
	return errors.Join(errs...)
}
