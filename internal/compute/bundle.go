package compute

import (
	"errors"

	"github.com/cwbudde/sodecl/internal/cl"
	"github.com/cwbudde/sodecl/internal/metrics"
)

// Handle kinds used in metrics labels.
const (
	handleDevice  = "device"
	handleContext = "context"
	handleQueue   = "queue"
	handleProgram = "program"
	handleKernel  = "kernel"
)

// NamedKernel is a kernel handle together with its entry point name.
type NamedKernel struct {
	Name   string
	Handle cl.Kernel
}

// Bundle groups the resources created for one selected device: its context,
// the command queue, the built program and the kernels extracted from it.
// A zero handle means the resource has not been created yet.
type Bundle struct {
	Selection Selection
	Device    *Device
	Context   cl.Context
	Queue     cl.CommandQueue
	Program   cl.Program
	Kernels   []NamedKernel
}

// HasQueue reports whether a command queue was created.
func (b *Bundle) HasQueue() bool { return b.Queue != 0 }

// HasProgram reports whether a program was built.
func (b *Bundle) HasProgram() bool { return b.Program != 0 }

// Kernel returns the kernel named name.
func (b *Bundle) Kernel(name string) (cl.Kernel, bool) {
	for _, k := range b.Kernels {
		if k.Name == name {
			return k.Handle, true
		}
	}
	return 0, false
}

func (b *Bundle) clone() Bundle {
	c := *b
	c.Kernels = append([]NamedKernel(nil), b.Kernels...)
	return c
}

// release frees the bundle in reverse acquisition order.
func (b *Bundle) release(rt cl.Runtime, m *metrics.Metrics) error {
	var errs []error
	for i := len(b.Kernels) - 1; i >= 0; i-- {
		st := rt.ReleaseKernel(b.Kernels[i].Handle)
		if st != cl.Success {
			errs = append(errs, newRuntimeError(cl.OpReleaseKernel, st))
		}
		m.Released(handleKernel)
	}
	b.Kernels = nil

	if b.Program != 0 {
		st := rt.ReleaseProgram(b.Program)
		if st != cl.Success {
			errs = append(errs, newRuntimeError(cl.OpReleaseProgram, st))
		}
		m.Released(handleProgram)
		b.Program = 0
	}
	if b.Queue != 0 {
		st := rt.ReleaseCommandQueue(b.Queue)
		if st != cl.Success {
			errs = append(errs, newRuntimeError(cl.OpReleaseQueue, st))
		}
		m.Released(handleQueue)
		b.Queue = 0
	}
	if b.Context != 0 {
		st := rt.ReleaseContext(b.Context)
		if st != cl.Success {
			errs = append(errs, newRuntimeError(cl.OpReleaseContext, st))
		}
		m.Released(handleContext)
		b.Context = 0
	}
	return errors.Join(errs...)
}
