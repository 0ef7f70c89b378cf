//go:build gpu

package cl

/*
#cgo LDFLAGS: -lOpenCL
#define CL_TARGET_OPENCL_VERSION 120
#define CL_USE_DEPRECATED_OPENCL_1_2_APIS
#include <CL/cl.h>
#include <stdlib.h>

static cl_command_queue sodecl_create_queue(cl_context ctx, cl_device_id device, cl_int *status) {
	return clCreateCommandQueue(ctx, device, 0, status);
}
*/
import "C"

import (
	"unsafe"
)

type openCL struct{}

// Open returns the OpenCL runtime linked into this binary.
func Open() (Runtime, error) {
	return openCL{}, nil
}

func platformHandle(id PlatformID) C.cl_platform_id {
	return C.cl_platform_id(unsafe.Pointer(uintptr(id)))
}

func deviceHandle(id DeviceID) C.cl_device_id {
	return C.cl_device_id(unsafe.Pointer(uintptr(id)))
}

func deviceHandles(ids []DeviceID) []C.cl_device_id {
	out := make([]C.cl_device_id, len(ids))
	for i, id := range ids {
		out[i] = deviceHandle(id)
	}
	return out
}

func contextHandle(ctx Context) C.cl_context {
	return C.cl_context(unsafe.Pointer(uintptr(ctx)))
}

func programHandle(p Program) C.cl_program {
	return C.cl_program(unsafe.Pointer(uintptr(p)))
}

func (openCL) PlatformCount() (int, Status) {
	var count C.cl_uint
	status := C.clGetPlatformIDs(0, nil, &count)
	return int(count), Status(status)
}

func (openCL) PlatformIDs(n int) ([]PlatformID, Status) {
	if n <= 0 {
		return nil, Success
	}
	ids := make([]C.cl_platform_id, n)
	var got C.cl_uint
	status := C.clGetPlatformIDs(C.cl_uint(n), &ids[0], &got)
	if status != C.CL_SUCCESS {
		return nil, Status(status)
	}
	if int(got) < n {
		n = int(got)
	}
	out := make([]PlatformID, n)
	for i := range out {
		out[i] = PlatformID(uintptr(unsafe.Pointer(ids[i])))
	}
	return out, Success
}

func (openCL) PlatformInfo(id PlatformID, param PlatformParam) (string, Status) {
	pid := platformHandle(id)
	var size C.size_t
	status := C.clGetPlatformInfo(pid, C.cl_platform_info(param), 0, nil, &size)
	if status != C.CL_SUCCESS {
		return "", Status(status)
	}
	if size == 0 {
		return "", Success
	}

	buf := make([]byte, int(size))
	status = C.clGetPlatformInfo(pid, C.cl_platform_info(param), size, unsafe.Pointer(&buf[0]), nil)
	if status != C.CL_SUCCESS {
		return "", Status(status)
	}
	return trimNull(buf), Success
}

func (openCL) DeviceCount(platform PlatformID, t DeviceType) (int, Status) {
	var count C.cl_uint
	status := C.clGetDeviceIDs(platformHandle(platform), C.cl_device_type(t), 0, nil, &count)
	return int(count), Status(status)
}

func (openCL) DeviceIDs(platform PlatformID, t DeviceType, n int) ([]DeviceID, Status) {
	if n <= 0 {
		return nil, Success
	}
	ids := make([]C.cl_device_id, n)
	var got C.cl_uint
	status := C.clGetDeviceIDs(platformHandle(platform), C.cl_device_type(t), C.cl_uint(n), &ids[0], &got)
	if status != C.CL_SUCCESS {
		return nil, Status(status)
	}
	if int(got) < n {
		n = int(got)
	}
	out := make([]DeviceID, n)
	for i := range out {
		out[i] = DeviceID(uintptr(unsafe.Pointer(ids[i])))
	}
	return out, Success
}

func (openCL) DeviceInfo(id DeviceID, param DeviceParam) (string, Status) {
	did := deviceHandle(id)
	var size C.size_t
	status := C.clGetDeviceInfo(did, C.cl_device_info(param), 0, nil, &size)
	if status != C.CL_SUCCESS {
		return "", Status(status)
	}
	if size == 0 {
		return "", Success
	}

	buf := make([]byte, int(size))
	status = C.clGetDeviceInfo(did, C.cl_device_info(param), size, unsafe.Pointer(&buf[0]), nil)
	if status != C.CL_SUCCESS {
		return "", Status(status)
	}
	return trimNull(buf), Success
}

func (openCL) DeviceType(id DeviceID) (DeviceType, Status) {
	var rawType C.cl_device_type
	status := C.clGetDeviceInfo(deviceHandle(id), C.CL_DEVICE_TYPE, C.size_t(unsafe.Sizeof(rawType)), unsafe.Pointer(&rawType), nil)
	if status != C.CL_SUCCESS {
		return 0, Status(status)
	}
	return DeviceType(rawType), Success
}

func (openCL) ReleaseDevice(id DeviceID) Status {
	return Status(C.clReleaseDevice(deviceHandle(id)))
}

func (openCL) CreateContext(devices []DeviceID) (Context, Status) {
	if len(devices) == 0 {
		return 0, InvalidValue
	}
	ids := deviceHandles(devices)
	var status C.cl_int
	ctx := C.clCreateContext(nil, C.cl_uint(len(ids)), &ids[0], nil, nil, &status)
	if status != C.CL_SUCCESS {
		return 0, Status(status)
	}
	return Context(uintptr(unsafe.Pointer(ctx))), Success
}

func (openCL) ReleaseContext(ctx Context) Status {
	return Status(C.clReleaseContext(contextHandle(ctx)))
}

func (openCL) CreateCommandQueue(ctx Context, device DeviceID) (CommandQueue, Status) {
	var status C.cl_int
	q := C.sodecl_create_queue(contextHandle(ctx), deviceHandle(device), &status)
	if status != C.CL_SUCCESS {
		return 0, Status(status)
	}
	return CommandQueue(uintptr(unsafe.Pointer(q))), Success
}

func (openCL) ReleaseCommandQueue(q CommandQueue) Status {
	return Status(C.clReleaseCommandQueue(C.cl_command_queue(unsafe.Pointer(uintptr(q)))))
}

func (openCL) CreateProgramWithSource(ctx Context, source []byte) (Program, Status) {
	if len(source) == 0 {
		return 0, InvalidValue
	}
	src := C.CString(string(source))
	defer C.free(unsafe.Pointer(src))
	length := C.size_t(len(source))

	var status C.cl_int
	p := C.clCreateProgramWithSource(contextHandle(ctx), 1, &src, &length, &status)
	if status != C.CL_SUCCESS {
		return 0, Status(status)
	}
	return Program(uintptr(unsafe.Pointer(p))), Success
}

func (openCL) BuildProgram(p Program, devices []DeviceID, options string) Status {
	opts := C.CString(options)
	defer C.free(unsafe.Pointer(opts))

	if len(devices) == 0 {
		return Status(C.clBuildProgram(programHandle(p), 0, nil, opts, nil, nil))
	}
	ids := deviceHandles(devices)
	return Status(C.clBuildProgram(programHandle(p), C.cl_uint(len(ids)), &ids[0], opts, nil, nil))
}

func (openCL) ProgramBuildLog(p Program, device DeviceID) (string, Status) {
	var size C.size_t
	status := C.clGetProgramBuildInfo(programHandle(p), deviceHandle(device), C.CL_PROGRAM_BUILD_LOG, 0, nil, &size)
	if status != C.CL_SUCCESS {
		return "", Status(status)
	}
	if size == 0 {
		return "", Success
	}

	buf := make([]byte, int(size))
	status = C.clGetProgramBuildInfo(programHandle(p), deviceHandle(device), C.CL_PROGRAM_BUILD_LOG, size, unsafe.Pointer(&buf[0]), nil)
	if status != C.CL_SUCCESS {
		return "", Status(status)
	}
	return trimNull(buf), Success
}

func (openCL) ReleaseProgram(p Program) Status {
	return Status(C.clReleaseProgram(programHandle(p)))
}

func (openCL) CreateKernel(p Program, name string) (Kernel, Status) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	var status C.cl_int
	k := C.clCreateKernel(programHandle(p), cname, &status)
	if status != C.CL_SUCCESS {
		return 0, Status(status)
	}
	return Kernel(uintptr(unsafe.Pointer(k))), Success
}

func (openCL) ReleaseKernel(k Kernel) Status {
	return Status(C.clReleaseKernel(C.cl_kernel(unsafe.Pointer(uintptr(k)))))
}

func trimNull(buf []byte) string {
	if len(buf) == 0 {
		return ""
	}
	if buf[len(buf)-1] == 0 {
		buf = buf[:len(buf)-1]
	}
	return string(buf)
}
