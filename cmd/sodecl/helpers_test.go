package main

import (
	"testing"

	"github.com/cwbudde/sodecl/internal/cl"
	"github.com/cwbudde/sodecl/internal/cl/cltest"
	"github.com/cwbudde/sodecl/internal/diag"
)

func fakeTopology() *cltest.Fake {
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

// useFakeRuntime routes openRuntime and diagSink to rt and a recorder for
// the duration of the test.
func useFakeRuntime(t *testing.T, rt *cltest.Fake) *diag.Recorder {
	t.Helper()
	rec := &diag.Recorder{}

	prevOpen, prevSink := openRuntime, diagSink
	openRuntime = func() (cl.Runtime, error) { return rt, nil }
	diagSink = func() diag.Sink { return rec }
	t.Cleanup(func() {
		openRuntime, diagSink = prevOpen, prevSink
	})
	return rec
}
