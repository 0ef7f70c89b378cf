// Package cl is the boundary between sodecl and an OpenCL implementation.
//
// Handles are opaque values owned by the runtime. The Runtime interface mirrors
// the subset of the OpenCL host API that device discovery, context creation and
// program building need, returning the raw Status of every call so callers can
// classify failures themselves.
package cl

import "errors"

// Opaque runtime handles.
type (
	PlatformID   uintptr
	DeviceID     uintptr
	Context      uintptr
	CommandQueue uintptr
	Program      uintptr
	Kernel       uintptr
)

// DeviceType is the OpenCL cl_device_type bitfield.
type DeviceType uint64

const (
	DeviceTypeDefault     DeviceType = 1 << 0
	DeviceTypeCPU         DeviceType = 1 << 1
	DeviceTypeGPU         DeviceType = 1 << 2
	DeviceTypeAccelerator DeviceType = 1 << 3
	DeviceTypeAll         DeviceType = 0xFFFFFFFF
)

// PlatformParam selects a string property of a platform.
type PlatformParam uint32

const (
	PlatformProfile PlatformParam = 0x0900
	PlatformVersion PlatformParam = 0x0901
	PlatformName    PlatformParam = 0x0902
	PlatformVendor  PlatformParam = 0x0903
)

// DeviceParam selects a string property of a device.
type DeviceParam uint32

const (
	DeviceName    DeviceParam = 0x102B
	DeviceVendor  DeviceParam = 0x102C
	DriverVersion DeviceParam = 0x102D
	DeviceVersion DeviceParam = 0x102F
)

// Operation names used in errors, diagnostics and metrics labels.
const (
	OpPlatformCount      = "clGetPlatformIDs(count)"
	OpPlatformIDs        = "clGetPlatformIDs(list)"
	OpPlatformInfo       = "clGetPlatformInfo"
	OpDeviceCount        = "clGetDeviceIDs(count)"
	OpDeviceIDs          = "clGetDeviceIDs(list)"
	OpDeviceInfo         = "clGetDeviceInfo"
	OpReleaseDevice      = "clReleaseDevice"
	OpCreateContext      = "clCreateContext"
	OpReleaseContext     = "clReleaseContext"
	OpCreateCommandQueue = "clCreateCommandQueue"
	OpReleaseQueue       = "clReleaseCommandQueue"
	OpCreateProgram      = "clCreateProgramWithSource"
	OpBuildProgram       = "clBuildProgram"
	OpBuildLog           = "clGetProgramBuildInfo(log)"
	OpReleaseProgram     = "clReleaseProgram"
	OpCreateKernel       = "clCreateKernel"
	OpReleaseKernel      = "clReleaseKernel"
)

// ErrNotBuilt indicates the binary was built without OpenCL support.
var ErrNotBuilt = errors.New("opencl support requires building with '-tags gpu'")

// Runtime is the OpenCL host API surface used by sodecl.
//
// Implementations are not required to be safe for concurrent use.
type Runtime interface {
	PlatformCount() (int, Status)
	PlatformIDs(n int) ([]PlatformID, Status)
	PlatformInfo(id PlatformID, param PlatformParam) (string, Status)

	DeviceCount(platform PlatformID, t DeviceType) (int, Status)
	DeviceIDs(platform PlatformID, t DeviceType, n int) ([]DeviceID, Status)
	DeviceInfo(id DeviceID, param DeviceParam) (string, Status)
	DeviceType(id DeviceID) (DeviceType, Status)
	ReleaseDevice(id DeviceID) Status

	CreateContext(devices []DeviceID) (Context, Status)
	ReleaseContext(ctx Context) Status

	CreateCommandQueue(ctx Context, device DeviceID) (CommandQueue, Status)
	ReleaseCommandQueue(q CommandQueue) Status

	CreateProgramWithSource(ctx Context, source []byte) (Program, Status)
	BuildProgram(p Program, devices []DeviceID, options string) Status
	ProgramBuildLog(p Program, device DeviceID) (string, Status)
	ReleaseProgram(p Program) Status

	CreateKernel(p Program, name string) (Kernel, Status)
	ReleaseKernel(k Kernel) Status
}
