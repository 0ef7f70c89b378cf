package compute

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cwbudde/sodecl/internal/cl"
	"github.com/cwbudde/sodecl/internal/cl/cltest"
	"github.com/cwbudde/sodecl/internal/diag"
	"github.com/cwbudde/sodecl/internal/metrics"
)

func TestDiscoverPlatforms_CountMatchesRuntime(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5} {
		t.Run(fmt.Sprintf("%d platforms", n), func(t *testing.T) {
			var platforms []cltest.Platform
			for i := 0; i < n; i++ {
				platforms = append(platforms, cltest.Platform{
					Name: fmt.Sprintf("platform-%d", i),
					Devices: []cltest.Device{
						{Name: fmt.Sprintf("dev-%d", i), Version: "OpenCL 1.2", Type: cl.DeviceTypeCPU},
					},
				})
			}
			rt := cltest.New(platforms...)
			m := NewManager(rt, nil)

			count, err := m.PlatformCount()
			if err != nil {
				t.Fatalf("PlatformCount failed: %v", err)
			}
			if count != n {
				t.Fatalf("expected count %d, got %d", n, count)
			}

			built, err := m.DiscoverPlatforms()
			if err != nil {
				t.Fatalf("DiscoverPlatforms failed: %v", err)
			}
			if built != n {
				t.Fatalf("expected %d platforms built, got %d", n, built)
			}

			for i, p := range m.Platforms() {
				if p.Name() != fmt.Sprintf("platform-%d", i) {
					t.Errorf("platform %d out of order: %s", i, p.Name())
				}
			}
			if n > 0 && m.State() != PlatformsDiscovered {
				t.Errorf("unexpected state %s", m.State())
			}
		})
	}
}

func TestDiscoverPlatforms_RequiresCount(t *testing.T) {
	m := NewManager(scenarioRuntime(), nil)

	_, err := m.DiscoverPlatforms()
	if !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}

func TestDiscoverPlatforms_Twice(t *testing.T) {
	m, _ := discoveredManager(t, scenarioRuntime())

	if _, err := m.DiscoverPlatforms(); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition on second discovery, got %v", err)
	}
	if len(m.Platforms()) != 2 {
		t.Fatalf("platforms should be unchanged, got %d", len(m.Platforms()))
	}
}

func TestPlatformCount_ErrorKinds(t *testing.T) {
	tests := []struct {
		status cl.Status
		want   error
		kind   Kind
	}{
		{cl.InvalidValue, ErrInvalidArgument, KindInvalidArgument},
		{cl.OutOfHostMemory, ErrOutOfHostMemory, KindOutOfHostMemory},
		{cl.OutOfResources, ErrRuntime, KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			rt := scenarioRuntime()
			rt.Fail[cl.OpPlatformCount] = tt.status
			rec := &diag.Recorder{}
			m := NewManager(rt, rec)

			_, err := m.PlatformCount()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var rerr *RuntimeError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected *RuntimeError, got %T", err)
			}
			if rerr.Kind != tt.kind || rerr.Status != tt.status {
				t.Errorf("unexpected error fields: %+v", rerr)
			}
			if !rec.Contains(tt.status.String()) {
				t.Errorf("diagnostic should name the status, got %q", rec.Lines())
			}
		})
	}
}

func TestPlatformCount_NoInstalledPlatforms(t *testing.T) {
	rt := scenarioRuntime()
	rt.Fail[cl.OpPlatformCount] = cl.PlatformNotFoundKHR
	rec := &diag.Recorder{}
	m := NewManager(rt, rec)

	n, err := m.PlatformCount()
	if err != nil || n != 0 {
		t.Fatalf("expected (0, nil), got (%d, %v)", n, err)
	}
	if len(rec.Lines()) != 0 {
		t.Errorf("no diagnostic expected, got %q", rec.Lines())
	}

	delete(rt.Fail, cl.OpPlatformCount)
	got, err := m.DiscoverPlatforms()
	if err != nil || got != 0 || len(m.Platforms()) != 0 {
		t.Fatalf("expected empty discovery, got %d %v", got, err)
	}
	if m.State() != PlatformsDiscovered {
		t.Errorf("unexpected state %s", m.State())
	}
}

func TestPlatformCount_InvalidArgumentDistinctFromOutOfMemory(t *testing.T) {
	invalid := scenarioRuntime()
	invalid.Fail[cl.OpPlatformCount] = cl.InvalidValue
	_, errInvalid := NewManager(invalid, nil).PlatformCount()

	oom := scenarioRuntime()
	oom.Fail[cl.OpPlatformCount] = cl.OutOfHostMemory
	_, errOOM := NewManager(oom, nil).PlatformCount()

	if errors.Is(errInvalid, ErrOutOfHostMemory) {
		t.Error("invalid-argument error must not match ErrOutOfHostMemory")
	}
	if errors.Is(errOOM, ErrInvalidArgument) {
		t.Error("out-of-memory error must not match ErrInvalidArgument")
	}
}

func TestDiscoverPlatforms_RuntimeFailure(t *testing.T) {
	rt := scenarioRuntime()
	rt.Fail[cl.OpPlatformIDs] = cl.OutOfHostMemory
	m := NewManager(rt, nil)

	if _, err := m.PlatformCount(); err != nil {
		t.Fatalf("PlatformCount failed: %v", err)
	}
	_, err := m.DiscoverPlatforms()
	if !errors.Is(err, ErrOutOfHostMemory) {
		t.Fatalf("expected ErrOutOfHostMemory, got %v", err)
	}
	if m.State() != Uninitialized {
		t.Errorf("expected uninitialized state, got %s", m.State())
	}
}

func TestDiscoverPlatforms_AtomicOnDeviceFailure(t *testing.T) {
	rt := scenarioRuntime()
	rt.FailDevice[rt.DeviceID(1, 1)] = cl.InvalidDevice
	m := NewManager(rt, nil)

	if _, err := m.PlatformCount(); err != nil {
		t.Fatalf("PlatformCount failed: %v", err)
	}
	_, err := m.DiscoverPlatforms()
	if !errors.Is(err, ErrDeviceEnumeration) {
		t.Fatalf("expected ErrDeviceEnumeration, got %v", err)
	}
	if !errors.Is(err, ErrDeviceQuery) {
		t.Fatalf("expected cause ErrDeviceQuery, got %v", err)
	}
	if len(m.Platforms()) != 0 {
		t.Fatalf("no platform should be recorded, got %d", len(m.Platforms()))
	}
	if err := rt.Balanced(); err != nil {
		t.Fatalf("handles leaked after failed discovery: %v", err)
	}
}

func TestSelectDevice_Scenario(t *testing.T) {
	m, rec := discoveredManager(t, scenarioRuntime())

	// Device index 2 is one past the end of platform 1.
	err := m.SelectDevice(1, DeviceGPU, 2)
	var serr *SelectionError
	if !errors.As(err, &serr) || serr.Check != CheckDeviceBounds {
		t.Fatalf("expected device-bounds failure, got %v", err)
	}
	if _, ok := m.Selection(); ok {
		t.Fatal("selection must stay unset after failure")
	}
	if !rec.Contains("Selected device number is out of bounds.") {
		t.Errorf("missing bounds diagnostic: %q", rec.Lines())
	}

	if err := m.SelectDevice(1, DeviceGPU, 1); err != nil {
		t.Fatalf("SelectDevice(1, GPU, 1) failed: %v", err)
	}
	sel, ok := m.Selection()
	if !ok || sel != (Selection{Platform: 1, Device: 1, Type: DeviceGPU}) {
		t.Fatalf("unexpected selection %+v", sel)
	}
	for _, want := range []string{
		"Selected platform name: NVIDIA CUDA",
		"Selected device name: GeForce B",
		"Selected device OpenCL version: OpenCL 3.0 CUDA",
	} {
		if !rec.Contains(want) {
			t.Errorf("missing diagnostic %q in %q", want, rec.Lines())
		}
	}

	rec.Reset()
	err = m.SelectDevice(0, DeviceGPU, 0)
	if !errors.As(err, &serr) || serr.Check != CheckDeviceType {
		t.Fatalf("expected device-type failure, got %v", err)
	}
	if !rec.Contains("Selected device is not of the type selected.") {
		t.Errorf("missing type diagnostic: %q", rec.Lines())
	}
	if sel2, _ := m.Selection(); sel2 != sel {
		t.Fatalf("failed selection overwrote state: %+v", sel2)
	}
}

func TestSelectDevice_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		platform int
		filter   DeviceType
		device   int
		check    Check
	}{
		{"negative platform", -1, DeviceAll, 0, CheckPlatformBounds},
		{"platform equal to count", 2, DeviceAll, 0, CheckPlatformBounds},
		{"negative device", 1, DeviceAll, -1, CheckDeviceBounds},
		{"device equal to count", 0, DeviceAll, 1, CheckDeviceBounds},
		{"cpu filter on gpu", 1, DeviceCPU, 0, CheckDeviceType},
		{"accelerator filter on cpu", 0, DeviceAccelerator, 0, CheckDeviceType},
		{"unknown filter", 0, DeviceUnknown, 0, CheckDeviceType},
		{"ok wildcard", 0, DeviceAll, 0, ""},
		{"ok cpu", 0, DeviceCPU, 0, ""},
		{"ok gpu with default bit", 1, DeviceGPU, 0, ""},
		{"ok last index", 1, DeviceAll, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := discoveredManager(t, scenarioRuntime())
			err := m.SelectDevice(tt.platform, tt.filter, tt.device)

			if tt.check == "" {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}

			var serr *SelectionError
			if !errors.As(err, &serr) {
				t.Fatalf("expected *SelectionError, got %v", err)
			}
			if serr.Check != tt.check {
				t.Errorf("expected check %s, got %s", tt.check, serr.Check)
			}
			if !errors.Is(err, ErrInvalidSelection) {
				t.Error("selection errors should match ErrInvalidSelection")
			}
			if _, ok := m.Selection(); ok {
				t.Error("selection must remain unset")
			}
		})
	}
}

func TestSelectDevice_BeforeDiscovery(t *testing.T) {
	m := NewManager(scenarioRuntime(), nil)
	if err := m.SelectDevice(0, DeviceAll, 0); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}

func TestCreateContext_RequiresSelection(t *testing.T) {
	rt := scenarioRuntime()
	m, _ := discoveredManager(t, rt)

	if err := m.CreateContext(); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
	if rt.Calls(cl.OpCreateContext) != 0 {
		t.Fatal("runtime must not be asked for a context without a selection")
	}
}

func TestCreateContext_AppendsIndependentContexts(t *testing.T) {
	rt := scenarioRuntime()
	m, _ := discoveredManager(t, rt)

	if err := m.SelectDevice(1, DeviceGPU, 1); err != nil {
		t.Fatalf("SelectDevice failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := m.CreateContext(); err != nil {
			t.Fatalf("CreateContext #%d failed: %v", i, err)
		}
		if got := len(m.Bundles()); got != i+1 {
			t.Fatalf("expected %d bundles, got %d", i+1, got)
		}
	}

	seen := make(map[cl.Context]bool)
	for _, b := range m.Bundles() {
		if seen[b.Context] {
			t.Fatalf("context %v appended twice", b.Context)
		}
		seen[b.Context] = true
		if b.Device.Name() != "GeForce B" {
			t.Errorf("bundle bound to wrong device %s", b.Device.Name())
		}
	}
	if m.State() != ContextCreated {
		t.Errorf("unexpected state %s", m.State())
	}
}

func TestCreateContext_RuntimeFailure(t *testing.T) {
	rt := scenarioRuntime()
	rt.Fail[cl.OpCreateContext] = cl.OutOfResources
	m, rec := discoveredManager(t, rt)

	if err := m.SelectDevice(0, DeviceCPU, 0); err != nil {
		t.Fatalf("SelectDevice failed: %v", err)
	}
	err := m.CreateContext()
	if !errors.Is(err, ErrRuntime) {
		t.Fatalf("expected runtime error, got %v", err)
	}
	if len(m.Bundles()) != 0 {
		t.Fatal("failed context creation must not append a bundle")
	}
	if !rec.Contains("Failed to create context! CL_OUT_OF_RESOURCES (-5)") {
		t.Errorf("diagnostic should carry the runtime code: %q", rec.Lines())
	}
}

func writeKernel(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "solver.cl")
	src := "__kernel void solver_caller(__global double *y) { y[get_global_id(0)] += 1.0; }\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write kernel: %v", err)
	}
	return path
}

func TestFullLifecycle(t *testing.T) {
	rt := scenarioRuntime()
	m, _ := discoveredManager(t, rt)

	settings := DefaultSettings()
	settings.BuildOptions = []BuildOption{FastRelaxedMath, StdCL20}
	if err := m.Configure(settings); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if err := m.SelectDevice(1, DeviceGPU, 0); err != nil {
		t.Fatalf("SelectDevice failed: %v", err)
	}
	if err := m.CreateContext(); err != nil {
		t.Fatalf("CreateContext failed: %v", err)
	}
	if err := m.CreateCommandQueue(); err != nil {
		t.Fatalf("CreateCommandQueue failed: %v", err)
	}
	path := writeKernel(t)
	if err := m.LoadKernelSource(path); err != nil {
		t.Fatalf("LoadKernelSource failed: %v", err)
	}
	if err := m.BuildProgram(); err != nil {
		t.Fatalf("BuildProgram failed: %v", err)
	}
	if m.State() != ProgramBuilt {
		t.Fatalf("unexpected state %s", m.State())
	}
	if err := m.CreateKernel(DefaultKernelName); err != nil {
		t.Fatalf("CreateKernel failed: %v", err)
	}
	if m.State() != KernelsReady {
		t.Fatalf("unexpected state %s", m.State())
	}

	wantOpts := "-cl-fast-relaxed-math -cl-std=CL2.0 -I " + filepath.Dir(path)
	if rt.LastBuildOptions != wantOpts {
		t.Errorf("build options %q, want %q", rt.LastBuildOptions, wantOpts)
	}
	if !strings.Contains(string(rt.LastSource), "solver_caller") {
		t.Error("source not passed verbatim to the runtime")
	}

	b := m.Bundles()[0]
	if !b.HasQueue() || !b.HasProgram() {
		t.Fatalf("bundle incomplete: %+v", b)
	}
	if _, ok := b.Kernel(DefaultKernelName); !ok {
		t.Fatal("kernel missing from bundle")
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := rt.Balanced(); err != nil {
		t.Fatalf("leaked handles: %v", err)
	}
}

func TestOutOfOrderOperations(t *testing.T) {
	rt := scenarioRuntime()
	m, _ := discoveredManager(t, rt)

	if err := m.CreateCommandQueue(); !errors.Is(err, ErrPrecondition) {
		t.Errorf("queue before context: expected ErrPrecondition, got %v", err)
	}
	if err := m.BuildProgram(); !errors.Is(err, ErrPrecondition) {
		t.Errorf("program before context: expected ErrPrecondition, got %v", err)
	}
	if err := m.CreateKernel("k"); !errors.Is(err, ErrPrecondition) {
		t.Errorf("kernel before program: expected ErrPrecondition, got %v", err)
	}

	if err := m.SelectDevice(0, DeviceAll, 0); err != nil {
		t.Fatalf("SelectDevice failed: %v", err)
	}
	if err := m.CreateContext(); err != nil {
		t.Fatalf("CreateContext failed: %v", err)
	}
	if err := m.BuildProgram(); !errors.Is(err, ErrPrecondition) {
		t.Errorf("program without source: expected ErrPrecondition, got %v", err)
	}
	if err := m.CreateCommandQueue(); err != nil {
		t.Fatalf("CreateCommandQueue failed: %v", err)
	}
	if err := m.CreateCommandQueue(); !errors.Is(err, ErrPrecondition) {
		t.Errorf("second queue: expected ErrPrecondition, got %v", err)
	}
}

func TestBuildProgram_FailureWritesLogAndReleases(t *testing.T) {
	rt := scenarioRuntime()
	rt.Fail[cl.OpBuildProgram] = cl.BuildProgramFailure
	rt.BuildLog = "solver.cl:1:10: error: use of undeclared identifier 'y0'"
	m, rec := discoveredManager(t, rt)

	if err := m.SelectDevice(0, DeviceCPU, 0); err != nil {
		t.Fatalf("SelectDevice failed: %v", err)
	}
	if err := m.CreateContext(); err != nil {
		t.Fatalf("CreateContext failed: %v", err)
	}
	if err := m.LoadKernelSource(writeKernel(t)); err != nil {
		t.Fatalf("LoadKernelSource failed: %v", err)
	}

	err := m.BuildProgram()
	var rerr *RuntimeError
	if !errors.As(err, &rerr) || rerr.Op != cl.OpBuildProgram {
		t.Fatalf("expected build runtime error, got %v", err)
	}
	if !rec.Contains("undeclared identifier 'y0'") {
		t.Errorf("build log not reported: %q", rec.Lines())
	}
	if rt.Live(cltest.KindProgram) != 0 {
		t.Error("failed program must be released")
	}
	if m.State() != ContextCreated {
		t.Errorf("unexpected state %s", m.State())
	}
}

func TestCreateKernel_Failure(t *testing.T) {
	rt := scenarioRuntime()
	m, rec := discoveredManager(t, rt)

	if err := m.SelectDevice(0, DeviceCPU, 0); err != nil {
		t.Fatalf("SelectDevice failed: %v", err)
	}
	if err := m.CreateContext(); err != nil {
		t.Fatalf("CreateContext failed: %v", err)
	}
	if err := m.LoadKernelSource(writeKernel(t)); err != nil {
		t.Fatalf("LoadKernelSource failed: %v", err)
	}
	if err := m.BuildProgram(); err != nil {
		t.Fatalf("BuildProgram failed: %v", err)
	}

	err := m.CreateKernel("")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if !rec.Contains("CL_INVALID_KERNEL_NAME") {
		t.Errorf("missing diagnostic: %q", rec.Lines())
	}

	if err := m.CreateKernel(DefaultKernelName); err != nil {
		t.Fatalf("CreateKernel failed: %v", err)
	}
	if err := m.CreateKernel(DefaultKernelName); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("duplicate kernel: expected ErrPrecondition, got %v", err)
	}
}

func TestClose_ReleasesEverything(t *testing.T) {
	rt := scenarioRuntime()
	m, _ := discoveredManager(t, rt)

	if err := m.SelectDevice(1, DeviceGPU, 0); err != nil {
		t.Fatalf("SelectDevice failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := m.CreateContext(); err != nil {
			t.Fatalf("CreateContext failed: %v", err)
		}
		if err := m.CreateCommandQueue(); err != nil {
			t.Fatalf("CreateCommandQueue failed: %v", err)
		}
	}

	if rt.Created(cltest.KindDevice) != 3 {
		t.Fatalf("expected 3 device handles, got %d", rt.Created(cltest.KindDevice))
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := rt.Balanced(); err != nil {
		t.Fatalf("unbalanced handles: %v", err)
	}
	for _, kind := range []string{cltest.KindContext, cltest.KindQueue} {
		if rt.Created(kind) != 2 || rt.Released(kind) != 2 {
			t.Errorf("%s: created %d released %d", kind, rt.Created(kind), rt.Released(kind))
		}
	}

	if err := m.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
	if rt.Released(cltest.KindDevice) != 3 {
		t.Fatal("second Close released devices again")
	}
	if _, err := m.PlatformCount(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestClose_ReportsReleaseFailures(t *testing.T) {
	rt := scenarioRuntime()
	m, _ := discoveredManager(t, rt)
	if err := m.SelectDevice(0, DeviceAll, 0); err != nil {
		t.Fatalf("SelectDevice failed: %v", err)
	}
	if err := m.CreateContext(); err != nil {
		t.Fatalf("CreateContext failed: %v", err)
	}

	rt.Fail[cl.OpReleaseContext] = cl.InvalidContext
	err := m.Close()
	var rerr *RuntimeError
	if !errors.As(err, &rerr) || rerr.Op != cl.OpReleaseContext {
		t.Fatalf("expected release context error, got %v", err)
	}
	if rt.Released(cltest.KindDevice) != rt.Created(cltest.KindDevice) {
		t.Fatal("devices must still be released after a context release failure")
	}
}

func TestConfigure_Rejects(t *testing.T) {
	m := NewManager(scenarioRuntime(), nil)

	bad := DefaultSettings()
	bad.LocalGroupSize = 0
	if err := m.Configure(bad); err == nil {
		t.Fatal("expected error for zero local group size")
	}
	if m.Settings().LocalGroupSize != DefaultSettings().LocalGroupSize {
		t.Fatal("rejected settings must not be stored")
	}
}

func TestManagerMetrics(t *testing.T) {
	rt := scenarioRuntime()
	mx := metrics.New(nil)
	m := NewManager(rt, nil, WithMetrics(mx))

	if _, err := m.PlatformCount(); err != nil {
		t.Fatalf("PlatformCount failed: %v", err)
	}
	if _, err := m.DiscoverPlatforms(); err != nil {
		t.Fatalf("DiscoverPlatforms failed: %v", err)
	}
	m.SelectDevice(5, DeviceAll, 0)
	if err := m.SelectDevice(0, DeviceAll, 0); err != nil {
		t.Fatalf("SelectDevice failed: %v", err)
	}
	if err := m.CreateContext(); err != nil {
		t.Fatalf("CreateContext failed: %v", err)
	}

	if got := testutil.ToFloat64(mx.SelectionFailures().WithLabelValues(string(CheckPlatformBounds))); got != 1 {
		t.Errorf("expected 1 platform-bounds rejection, got %v", got)
	}
	if got := testutil.ToFloat64(mx.Selections()); got != 1 {
		t.Errorf("expected 1 accepted selection, got %v", got)
	}
	if got := testutil.ToFloat64(mx.RuntimeCalls().WithLabelValues(cl.OpCreateContext, "CL_SUCCESS")); got != 1 {
		t.Errorf("expected 1 context call, got %v", got)
	}
	if got := testutil.ToFloat64(mx.LiveHandles().WithLabelValues("device")); got != 3 {
		t.Errorf("expected 3 live devices, got %v", got)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := testutil.ToFloat64(mx.LiveHandles().WithLabelValues("context")); got != 0 {
		t.Errorf("expected no live contexts, got %v", got)
	}
}

func TestTopology(t *testing.T) {
	m, _ := discoveredManager(t, scenarioRuntime())

	topo := m.Topology()
	if len(topo) != 2 {
		t.Fatalf("expected 2 platforms, got %d", len(topo))
	}
	if topo[1].Index != 1 || len(topo[1].Devices) != 2 {
		t.Fatalf("unexpected platform info %+v", topo[1])
	}
	if topo[1].Devices[1].Index != 1 || topo[1].Devices[1].Type != "GPU" {
		t.Fatalf("unexpected device info %+v", topo[1].Devices[1])
	}
	if topo[0].Devices[0].Type != "CPU" {
		t.Fatalf("unexpected device info %+v", topo[0].Devices[0])
	}
}
