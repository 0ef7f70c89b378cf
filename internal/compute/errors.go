package compute

import (
	"errors"
	"fmt"

	"github.com/cwbudde/sodecl/internal/cl"
)

// Kind classifies runtime-reported failures.
type Kind int

const (
	KindGeneric Kind = iota
	KindInvalidArgument
	KindOutOfHostMemory
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindOutOfHostMemory:
		return "out of host memory"
	default:
		return "runtime failure"
	}
}

var (
	// ErrRuntime matches every *RuntimeError.
	ErrRuntime = errors.New("opencl runtime failure")
	// ErrInvalidArgument matches runtime errors caused by invalid arguments.
	ErrInvalidArgument = errors.New("opencl invalid argument")
	// ErrOutOfHostMemory matches runtime errors caused by host allocation failure.
	ErrOutOfHostMemory = errors.New("opencl out of host memory")

	// ErrPrecondition is returned when an operation runs before its dependency exists.
	ErrPrecondition = errors.New("operation out of order")
	// ErrClosed is returned by every operation on a closed manager.
	ErrClosed = errors.New("compute manager closed")

	// ErrDeviceQuery matches failed device property queries.
	ErrDeviceQuery = errors.New("device query failed")
	// ErrDeviceEnumeration matches failed device discovery on a platform.
	ErrDeviceEnumeration = errors.New("device enumeration failed")

	// ErrInvalidSelection matches every *SelectionError.
	ErrInvalidSelection = errors.New("invalid device selection")
)

// RuntimeError reports a failed runtime call.
type RuntimeError struct {
	Op     string
	Status cl.Status
	Kind   Kind
}

func newRuntimeError(op string, status cl.Status) *RuntimeError {
	return &RuntimeError{Op: op, Status: status, Kind: classify(status)}
}

func classify(status cl.Status) Kind {
	switch {
	case status == cl.OutOfHostMemory:
		return KindOutOfHostMemory
	case status.IsInvalid():
		return KindInvalidArgument
	default:
		return KindGeneric
	}
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Status.Describe())
}

func (e *RuntimeError) Is(target error) bool {
	switch target {
	case ErrRuntime:
		return true
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	case ErrOutOfHostMemory:
		return e.Kind == KindOutOfHostMemory
	}
	return false
}

// Check names one of the selection validation steps.
type Check string

const (
	CheckPlatformBounds Check = "platform-bounds"
	CheckDeviceBounds   Check = "device-bounds"
	CheckDeviceType     Check = "device-type"
)

// SelectionError is the recoverable failure of SelectDevice. Selection state
// is unchanged when it is returned.
type SelectionError struct {
	Check    Check
	Platform int
	Device   int
	Filter   DeviceType
	Reason   string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("invalid selection (platform %d, device %d, type %s): %s", e.Platform, e.Device, e.Filter, e.Reason)
}

func (e *SelectionError) Is(target error) bool {
	return target == ErrInvalidSelection
}

// deviceQueryError wraps a failed property query on one device.
type deviceQueryError struct {
	property string
	status   cl.Status
}

func (e *deviceQueryError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrDeviceQuery, e.property, e.status.Describe())
}

func (e *deviceQueryError) Is(target error) bool { return target == ErrDeviceQuery }

// Unwrap exposes the classified runtime error.
func (e *deviceQueryError) Unwrap() error { return newRuntimeError(cl.OpDeviceInfo, e.status) }

func preconditionError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}
