package metrics

import "github.com/cwbudde/sodecl/internal/cl"

// Instrument wraps rt so that every call is counted by m. With a nil m the
// runtime is returned unchanged.
func Instrument(rt cl.Runtime, m *Metrics) cl.Runtime {
	if m == nil || rt == nil {
		return rt
	}
	return &instrumented{rt: rt, m: m}
}

type instrumented struct {
	rt cl.Runtime
	m  *Metrics
}

func (i *instrumented) PlatformCount() (int, cl.Status) {
	n, st := i.rt.PlatformCount()
	i.m.ObserveCall(cl.OpPlatformCount, st)
	return n, st
}

func (i *instrumented) PlatformIDs(n int) ([]cl.PlatformID, cl.Status) {
	ids, st := i.rt.PlatformIDs(n)
	i.m.ObserveCall(cl.OpPlatformIDs, st)
	return ids, st
}

func (i *instrumented) PlatformInfo(id cl.PlatformID, param cl.PlatformParam) (string, cl.Status) {
	v, st := i.rt.PlatformInfo(id, param)
	i.m.ObserveCall(cl.OpPlatformInfo, st)
	return v, st
}

func (i *instrumented) DeviceCount(p cl.PlatformID, t cl.DeviceType) (int, cl.Status) {
	n, st := i.rt.DeviceCount(p, t)
	i.m.ObserveCall(cl.OpDeviceCount, st)
	return n, st
}

func (i *instrumented) DeviceIDs(p cl.PlatformID, t cl.DeviceType, n int) ([]cl.DeviceID, cl.Status) {
	ids, st := i.rt.DeviceIDs(p, t, n)
	i.m.ObserveCall(cl.OpDeviceIDs, st)
	return ids, st
}

func (i *instrumented) DeviceInfo(id cl.DeviceID, param cl.DeviceParam) (string, cl.Status) {
	v, st := i.rt.DeviceInfo(id, param)
	i.m.ObserveCall(cl.OpDeviceInfo, st)
	return v, st
}

func (i *instrumented) DeviceType(id cl.DeviceID) (cl.DeviceType, cl.Status) {
	t, st := i.rt.DeviceType(id)
	i.m.ObserveCall(cl.OpDeviceInfo, st)
	return t, st
}

func (i *instrumented) ReleaseDevice(id cl.DeviceID) cl.Status {
	st := i.rt.ReleaseDevice(id)
	i.m.ObserveCall(cl.OpReleaseDevice, st)
	return st
}

func (i *instrumented) CreateContext(devices []cl.DeviceID) (cl.Context, cl.Status) {
	ctx, st := i.rt.CreateContext(devices)
	i.m.ObserveCall(cl.OpCreateContext, st)
	return ctx, st
}

func (i *instrumented) ReleaseContext(ctx cl.Context) cl.Status {
	st := i.rt.ReleaseContext(ctx)
	i.m.ObserveCall(cl.OpReleaseContext, st)
	return st
}

func (i *instrumented) CreateCommandQueue(ctx cl.Context, device cl.DeviceID) (cl.CommandQueue, cl.Status) {
	q, st := i.rt.CreateCommandQueue(ctx, device)
	i.m.ObserveCall(cl.OpCreateCommandQueue, st)
	return q, st
}

func (i *instrumented) ReleaseCommandQueue(q cl.CommandQueue) cl.Status {
	st := i.rt.ReleaseCommandQueue(q)
	i.m.ObserveCall(cl.OpReleaseQueue, st)
	return st
}

func (i *instrumented) CreateProgramWithSource(ctx cl.Context, source []byte) (cl.Program, cl.Status) {
	p, st := i.rt.CreateProgramWithSource(ctx, source)
	i.m.ObserveCall(cl.OpCreateProgram, st)
	return p, st
}

func (i *instrumented) BuildProgram(p cl.Program, devices []cl.DeviceID, options string) cl.Status {
	st := i.rt.BuildProgram(p, devices, options)
	i.m.ObserveCall(cl.OpBuildProgram, st)
	return st
}

func (i *instrumented) ProgramBuildLog(p cl.Program, device cl.DeviceID) (string, cl.Status) {
	v, st := i.rt.ProgramBuildLog(p, device)
	i.m.ObserveCall(cl.OpBuildLog, st)
	return v, st
}

func (i *instrumented) ReleaseProgram(p cl.Program) cl.Status {
	st := i.rt.ReleaseProgram(p)
	i.m.ObserveCall(cl.OpReleaseProgram, st)
	return st
}

func (i *instrumented) CreateKernel(p cl.Program, name string) (cl.Kernel, cl.Status) {
	k, st := i.rt.CreateKernel(p, name)
	i.m.ObserveCall(cl.OpCreateKernel, st)
	return k, st
}

func (i *instrumented) ReleaseKernel(k cl.Kernel) cl.Status {
	st := i.rt.ReleaseKernel(k)
	i.m.ObserveCall(cl.OpReleaseKernel, st)
	return st
}
