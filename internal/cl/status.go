package cl

import "fmt"

// Status is an OpenCL status code (cl_int).
type Status int32

const (
	Success                  Status = 0
	DeviceNotFound           Status = -1
	DeviceNotAvailable       Status = -2
	CompilerNotAvailable     Status = -3
	MemObjectAllocFailure    Status = -4
	OutOfResources           Status = -5
	OutOfHostMemory          Status = -6
	BuildProgramFailure      Status = -11
	InvalidValue             Status = -30
	InvalidDeviceType        Status = -31
	InvalidPlatform          Status = -32
	InvalidDevice            Status = -33
	InvalidContext           Status = -34
	InvalidQueueProperties   Status = -35
	InvalidCommandQueue      Status = -36
	InvalidBinary            Status = -42
	InvalidBuildOptions      Status = -43
	InvalidProgram           Status = -44
	InvalidProgramExecutable Status = -45
	InvalidKernelName        Status = -46
	InvalidKernelDefinition  Status = -47
	InvalidKernel            Status = -48
	InvalidOperation         Status = -59

	// PlatformNotFoundKHR is returned by ICD loaders with no installed platforms.
	PlatformNotFoundKHR Status = -1001
)

var statusNames = map[Status]string{
	Success:                  "CL_SUCCESS",
	DeviceNotFound:           "CL_DEVICE_NOT_FOUND",
	DeviceNotAvailable:       "CL_DEVICE_NOT_AVAILABLE",
	CompilerNotAvailable:     "CL_COMPILER_NOT_AVAILABLE",
	MemObjectAllocFailure:    "CL_MEM_OBJECT_ALLOCATION_FAILURE",
	OutOfResources:           "CL_OUT_OF_RESOURCES",
	OutOfHostMemory:          "CL_OUT_OF_HOST_MEMORY",
	BuildProgramFailure:      "CL_BUILD_PROGRAM_FAILURE",
	InvalidValue:             "CL_INVALID_VALUE",
	InvalidDeviceType:        "CL_INVALID_DEVICE_TYPE",
	InvalidPlatform:          "CL_INVALID_PLATFORM",
	InvalidDevice:            "CL_INVALID_DEVICE",
	InvalidContext:           "CL_INVALID_CONTEXT",
	InvalidQueueProperties:   "CL_INVALID_QUEUE_PROPERTIES",
	InvalidCommandQueue:      "CL_INVALID_COMMAND_QUEUE",
	InvalidBinary:            "CL_INVALID_BINARY",
	InvalidBuildOptions:      "CL_INVALID_BUILD_OPTIONS",
	InvalidProgram:           "CL_INVALID_PROGRAM",
	InvalidProgramExecutable: "CL_INVALID_PROGRAM_EXECUTABLE",
	InvalidKernelName:        "CL_INVALID_KERNEL_NAME",
	InvalidKernelDefinition:  "CL_INVALID_KERNEL_DEFINITION",
	InvalidKernel:            "CL_INVALID_KERNEL",
	InvalidOperation:         "CL_INVALID_OPERATION",
	PlatformNotFoundKHR:      "CL_PLATFORM_NOT_FOUND_KHR",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "CL_UNKNOWN_ERROR"
}

// IsInvalid reports whether s belongs to the CL_INVALID_* family (-30 and below).
func (s Status) IsInvalid() bool { return s <= InvalidValue && s >= -70 }

// Describe formats s as "<name> (<code>)", the shape used in diagnostics.
func (s Status) Describe() string {
	return fmt.Sprintf("%s (%d)", s.String(), int32(s))
}
