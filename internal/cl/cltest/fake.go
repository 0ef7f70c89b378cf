// Package cltest provides an in-memory cl.Runtime for tests.
//
// Fake serves a declared platform/device topology, hands out unique handles
// for every created object and counts acquisitions and releases per handle
// kind, so tests can assert that teardown leaves nothing behind.
package cltest

import (
	"fmt"

	"github.com/cwbudde/sodecl/internal/cl"
)

// Handle kinds tracked by Fake.
const (
	KindDevice  = "device"
	KindContext = "context"
	KindQueue   = "queue"
	KindProgram = "program"
	KindKernel  = "kernel"
)

// Device describes one fake device.
type Device struct {
	Name    string
	Version string
	Type    cl.DeviceType
}

// Platform describes one fake platform and its devices.
type Platform struct {
	Name    string
	Devices []Device
}

// Fake implements cl.Runtime over a static topology.
type Fake struct {
	Platforms []Platform

	// Fail maps an operation name (cl.Op*) to the status it should return.
	Fail map[string]cl.Status
	// FailDevice maps a device handle to the status returned by any info query on it.
	FailDevice map[cl.DeviceID]cl.Status
	// BuildLog is returned by ProgramBuildLog.
	BuildLog string

	// LastBuildOptions records the options passed to the last BuildProgram call.
	LastBuildOptions string
	// LastSource records the source passed to the last CreateProgramWithSource call.
	LastSource []byte

	calls    map[string]int
	created  map[string]int
	released map[string]int
	live     map[uintptr]string
	next     uintptr
}

// New returns a Fake serving the given platforms.
func New(platforms ...Platform) *Fake {
	return &Fake{
		Platforms:  platforms,
		Fail:       make(map[string]cl.Status),
		FailDevice: make(map[cl.DeviceID]cl.Status),
		calls:      make(map[string]int),
		created:    make(map[string]int),
		released:   make(map[string]int),
		live:       make(map[uintptr]string),
		next:       1 << 24,
	}
}

// PlatformID returns the handle Fake uses for platform p.
func (f *Fake) PlatformID(p int) cl.PlatformID {
	return cl.PlatformID(0x1000 + p)
}

// DeviceID returns the handle Fake uses for device d of platform p.
func (f *Fake) DeviceID(p, d int) cl.DeviceID {
	return cl.DeviceID((p+1)<<16 | (d + 1))
}

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int { return f.calls[op] }

// Created returns how many handles of kind were handed out.
func (f *Fake) Created(kind string) int { return f.created[kind] }

// Released returns how many handles of kind were released.
func (f *Fake) Released(kind string) int { return f.released[kind] }

// Live returns the number of handles of kind not yet released.
func (f *Fake) Live(kind string) int {
	n := 0
	for _, k := range f.live {
		if k == kind {
			n++
		}
	}
	return n
}

// Balanced returns an error naming the first handle kind with unreleased handles.
func (f *Fake) Balanced() error {
	for _, kind := range []string{KindKernel, KindProgram, KindQueue, KindContext, KindDevice} {
		if c, r := f.created[kind], f.released[kind]; c != r {
			return fmt.Errorf("%s handles: created %d, released %d", kind, c, r)
		}
	}
	return nil
}

func (f *Fake) call(op string) (cl.Status, bool) {
	f.calls[op]++
	if st, ok := f.Fail[op]; ok && st != cl.Success {
		return st, true
	}
	return cl.Success, false
}

func (f *Fake) acquire(kind string) uintptr {
	f.next++
	f.live[f.next] = kind
	f.created[kind]++
	return f.next
}

func (f *Fake) release(kind string, h uintptr, invalid cl.Status) cl.Status {
	if f.live[h] != kind {
		return invalid
	}
	delete(f.live, h)
	f.released[kind]++
	return cl.Success
}

func (f *Fake) platform(id cl.PlatformID) (*Platform, bool) {
	i := int(id) - 0x1000
	if i < 0 || i >= len(f.Platforms) {
		return nil, false
	}
	return &f.Platforms[i], true
}

func (f *Fake) device(id cl.DeviceID) (*Device, bool) {
	p := int(id>>16) - 1
	d := int(id&0xFFFF) - 1
	if p < 0 || p >= len(f.Platforms) || d < 0 || d >= len(f.Platforms[p].Devices) {
		return nil, false
	}
	return &f.Platforms[p].Devices[d], true
}

func (f *Fake) PlatformCount() (int, cl.Status) {
	if st, failed := f.call(cl.OpPlatformCount); failed {
		return 0, st
	}
	return len(f.Platforms), cl.Success
}

func (f *Fake) PlatformIDs(n int) ([]cl.PlatformID, cl.Status) {
	if st, failed := f.call(cl.OpPlatformIDs); failed {
		return nil, st
	}
	if n > len(f.Platforms) {
		n = len(f.Platforms)
	}
	ids := make([]cl.PlatformID, n)
	for i := range ids {
		ids[i] = f.PlatformID(i)
	}
	return ids, cl.Success
}

func (f *Fake) PlatformInfo(id cl.PlatformID, param cl.PlatformParam) (string, cl.Status) {
	if st, failed := f.call(cl.OpPlatformInfo); failed {
		return "", st
	}
	p, ok := f.platform(id)
	if !ok {
		return "", cl.InvalidPlatform
	}
	switch param {
	case cl.PlatformName:
		return p.Name, cl.Success
	case cl.PlatformVendor:
		return "sodecl fake", cl.Success
	case cl.PlatformVersion:
		return "OpenCL 1.2 fake", cl.Success
	case cl.PlatformProfile:
		return "FULL_PROFILE", cl.Success
	default:
		return "", cl.Success
	}
}

func (f *Fake) matching(p *Platform, t cl.DeviceType) []int {
	var idx []int
	for i, d := range p.Devices {
		if t == cl.DeviceTypeAll || d.Type&t != 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

func (f *Fake) DeviceCount(platform cl.PlatformID, t cl.DeviceType) (int, cl.Status) {
	if st, failed := f.call(cl.OpDeviceCount); failed {
		return 0, st
	}
	p, ok := f.platform(platform)
	if !ok {
		return 0, cl.InvalidPlatform
	}
	n := len(f.matching(p, t))
	if n == 0 {
		return 0, cl.DeviceNotFound
	}
	return n, cl.Success
}

func (f *Fake) DeviceIDs(platform cl.PlatformID, t cl.DeviceType, n int) ([]cl.DeviceID, cl.Status) {
	if st, failed := f.call(cl.OpDeviceIDs); failed {
		return nil, st
	}
	p, ok := f.platform(platform)
	if !ok {
		return nil, cl.InvalidPlatform
	}
	idx := f.matching(p, t)
	if len(idx) == 0 {
		return nil, cl.DeviceNotFound
	}
	if n > len(idx) {
		n = len(idx)
	}
	pi := int(platform) - 0x1000
	ids := make([]cl.DeviceID, n)
	for i := range ids {
		ids[i] = f.DeviceID(pi, idx[i])
		f.created[KindDevice]++
	}
	return ids, cl.Success
}

func (f *Fake) DeviceInfo(id cl.DeviceID, param cl.DeviceParam) (string, cl.Status) {
	if st, failed := f.call(cl.OpDeviceInfo); failed {
		return "", st
	}
	if st, ok := f.FailDevice[id]; ok {
		return "", st
	}
	d, ok := f.device(id)
	if !ok {
		return "", cl.InvalidDevice
	}
	switch param {
	case cl.DeviceName:
		return d.Name, cl.Success
	case cl.DeviceVersion:
		return d.Version, cl.Success
	case cl.DeviceVendor:
		return "sodecl fake", cl.Success
	case cl.DriverVersion:
		return "1.0 fake", cl.Success
	default:
		return "", cl.Success
	}
}

func (f *Fake) DeviceType(id cl.DeviceID) (cl.DeviceType, cl.Status) {
	if st, failed := f.call(cl.OpDeviceInfo); failed {
		return 0, st
	}
	if st, ok := f.FailDevice[id]; ok {
		return 0, st
	}
	d, ok := f.device(id)
	if !ok {
		return 0, cl.InvalidDevice
	}
	return d.Type, cl.Success
}

func (f *Fake) ReleaseDevice(id cl.DeviceID) cl.Status {
	if st, failed := f.call(cl.OpReleaseDevice); failed {
		return st
	}
	if _, ok := f.device(id); !ok {
		return cl.InvalidDevice
	}
	f.released[KindDevice]++
	return cl.Success
}

func (f *Fake) CreateContext(devices []cl.DeviceID) (cl.Context, cl.Status) {
	if st, failed := f.call(cl.OpCreateContext); failed {
		return 0, st
	}
	if len(devices) == 0 {
		return 0, cl.InvalidValue
	}
	for _, id := range devices {
		if _, ok := f.device(id); !ok {
			return 0, cl.InvalidDevice
		}
	}
	return cl.Context(f.acquire(KindContext)), cl.Success
}

func (f *Fake) ReleaseContext(ctx cl.Context) cl.Status {
	if st, failed := f.call(cl.OpReleaseContext); failed {
		return st
	}
	return f.release(KindContext, uintptr(ctx), cl.InvalidContext)
}

func (f *Fake) CreateCommandQueue(ctx cl.Context, device cl.DeviceID) (cl.CommandQueue, cl.Status) {
	if st, failed := f.call(cl.OpCreateCommandQueue); failed {
		return 0, st
	}
	if f.live[uintptr(ctx)] != KindContext {
		return 0, cl.InvalidContext
	}
	if _, ok := f.device(device); !ok {
		return 0, cl.InvalidDevice
	}
	return cl.CommandQueue(f.acquire(KindQueue)), cl.Success
}

func (f *Fake) ReleaseCommandQueue(q cl.CommandQueue) cl.Status {
	if st, failed := f.call(cl.OpReleaseQueue); failed {
		return st
	}
	return f.release(KindQueue, uintptr(q), cl.InvalidCommandQueue)
}

func (f *Fake) CreateProgramWithSource(ctx cl.Context, source []byte) (cl.Program, cl.Status) {
	if st, failed := f.call(cl.OpCreateProgram); failed {
		return 0, st
	}
	if f.live[uintptr(ctx)] != KindContext {
		return 0, cl.InvalidContext
	}
	if len(source) == 0 {
		return 0, cl.InvalidValue
	}
	f.LastSource = append([]byte(nil), source...)
	return cl.Program(f.acquire(KindProgram)), cl.Success
}

func (f *Fake) BuildProgram(p cl.Program, devices []cl.DeviceID, options string) cl.Status {
	f.LastBuildOptions = options
	if st, failed := f.call(cl.OpBuildProgram); failed {
		return st
	}
	if f.live[uintptr(p)] != KindProgram {
		return cl.InvalidProgram
	}
	return cl.Success
}

func (f *Fake) ProgramBuildLog(p cl.Program, device cl.DeviceID) (string, cl.Status) {
	if st, failed := f.call(cl.OpBuildLog); failed {
		return "", st
	}
	if f.live[uintptr(p)] != KindProgram {
		return "", cl.InvalidProgram
	}
	return f.BuildLog, cl.Success
}

func (f *Fake) ReleaseProgram(p cl.Program) cl.Status {
	if st, failed := f.call(cl.OpReleaseProgram); failed {
		return st
	}
	return f.release(KindProgram, uintptr(p), cl.InvalidProgram)
}

func (f *Fake) CreateKernel(p cl.Program, name string) (cl.Kernel, cl.Status) {
	if st, failed := f.call(cl.OpCreateKernel); failed {
		return 0, st
	}
	if f.live[uintptr(p)] != KindProgram {
		return 0, cl.InvalidProgram
	}
	if name == "" {
		return 0, cl.InvalidKernelName
	}
	return cl.Kernel(f.acquire(KindKernel)), cl.Success
}

func (f *Fake) ReleaseKernel(k cl.Kernel) cl.Status {
	if st, failed := f.call(cl.OpReleaseKernel); failed {
		return st
	}
	return f.release(KindKernel, uintptr(k), cl.InvalidKernel)
}

var _ cl.Runtime = (*Fake)(nil)
