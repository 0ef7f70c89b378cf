package compute

import (
	"testing"

	"github.com/cwbudde/sodecl/internal/cl"
	"github.com/cwbudde/sodecl/internal/cl/cltest"
	"github.com/cwbudde/sodecl/internal/diag"
)

// scenarioRuntime returns the two-platform topology used throughout the tests:
// platform 0 has one CPU, platform 1 has two GPUs.
func scenarioRuntime() *cltest.Fake {
	return cltest.New(
		cltest.Platform{
			Name: "Portable Computing Language",
			Devices: []cltest.Device{
				{Name: "pthread-cpu", Version: "OpenCL 1.2 pocl", Type: cl.DeviceTypeCPU},
			},
		},
		cltest.Platform{
			Name: "NVIDIA CUDA",
			Devices: []cltest.Device{
				{Name: "GeForce A", Version: "OpenCL 3.0 CUDA", Type: cl.DeviceTypeGPU | cl.DeviceTypeDefault},
				{Name: "GeForce B", Version: "OpenCL 3.0 CUDA", Type: cl.DeviceTypeGPU},
			},
		},
	)
}

// discoveredManager returns a manager over rt with platforms already discovered.
func discoveredManager(t *testing.T, rt cl.Runtime) (*Manager, *diag.Recorder) {
	t.Helper()

	rec := &diag.Recorder{}
	m := NewManager(rt, rec)

	if _, err := m.PlatformCount(); err != nil {
		t.Fatalf("PlatformCount failed: %v", err)
	}
	if _, err := m.DiscoverPlatforms(); err != nil {
		t.Fatalf("DiscoverPlatforms failed: %v", err)
	}
	return m, rec
}
