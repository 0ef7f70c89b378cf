package compute

import (
	"fmt"
	"strings"

	"github.com/cwbudde/sodecl/internal/cl"
)

// BuildOption is a kernel compilation flag.
type BuildOption int

const (
	FastRelaxedMath BuildOption = 1
	StdCL20         BuildOption = 2
	StdCL21         BuildOption = 3
)

// Flag returns the OpenCL compiler flag for o.
func (o BuildOption) Flag() string {
	switch o {
	case FastRelaxedMath:
		return "-cl-fast-relaxed-math"
	case StdCL20:
		return "-cl-std=CL2.0"
	case StdCL21:
		return "-cl-std=CL2.1"
	default:
		return ""
	}
}

func (o BuildOption) String() string {
	switch o {
	case FastRelaxedMath:
		return "fast-relaxed-math"
	case StdCL20:
		return "cl2.0"
	case StdCL21:
		return "cl2.1"
	default:
		return fmt.Sprintf("BuildOption(%d)", int(o))
	}
}

// ParseBuildOption maps user input to a BuildOption.
func ParseBuildOption(s string) (BuildOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast-relaxed-math", "fastrelaxedmath", "relaxed":
		return FastRelaxedMath, nil
	case "cl2.0", "cl20", "stdcl20":
		return StdCL20, nil
	case "cl2.1", "cl21", "stdcl21":
		return StdCL21, nil
	default:
		return 0, fmt.Errorf("unknown build option: %q", s)
	}
}

// BuildOptionsString joins the flags of opts, then one "-I <dir>" per include
// dir, separated by single spaces. Repeated options appear once.
func BuildOptionsString(opts []BuildOption, includeDirs ...string) string {
	var parts []string
	seen := make(map[BuildOption]bool, len(opts))
	for _, o := range opts {
		if seen[o] || o.Flag() == "" {
			continue
		}
		seen[o] = true
		parts = append(parts, o.Flag())
	}
	for _, dir := range includeDirs {
		if dir == "" {
			continue
		}
		parts = append(parts, "-I "+dir)
	}
	return strings.Join(parts, " ")
}

// OutputType selects how integration results are delivered.
type OutputType int

const (
	OutputFile  OutputType = 1
	OutputArray OutputType = 2
	OutputNone  OutputType = 3
)

func (o OutputType) String() string {
	switch o {
	case OutputFile:
		return "file"
	case OutputArray:
		return "array"
	case OutputNone:
		return "none"
	default:
		return fmt.Sprintf("OutputType(%d)", int(o))
	}
}

// ParseOutputType maps user input to an OutputType.
func ParseOutputType(s string) (OutputType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file":
		return OutputFile, nil
	case "array":
		return OutputArray, nil
	case "none", "":
		return OutputNone, nil
	default:
		return 0, fmt.Errorf("unknown output type: %q", s)
	}
}

// DeviceType is the device kind used for selection filters.
type DeviceType int

const (
	DeviceUnknown DeviceType = iota
	DeviceCPU
	DeviceGPU
	DeviceAccelerator
	// DeviceAll is the wildcard filter.
	DeviceAll
)

func (t DeviceType) String() string {
	switch t {
	case DeviceCPU:
		return "CPU"
	case DeviceGPU:
		return "GPU"
	case DeviceAccelerator:
		return "Accelerator"
	case DeviceAll:
		return "All"
	default:
		return "Unknown"
	}
}

// Mask returns the OpenCL device type bits for t.
func (t DeviceType) Mask() cl.DeviceType {
	switch t {
	case DeviceCPU:
		return cl.DeviceTypeCPU
	case DeviceGPU:
		return cl.DeviceTypeGPU
	case DeviceAccelerator:
		return cl.DeviceTypeAccelerator
	case DeviceAll:
		return cl.DeviceTypeAll
	default:
		return 0
	}
}

// ParseDeviceType maps user input to a DeviceType.
func ParseDeviceType(s string) (DeviceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu":
		return DeviceCPU, nil
	case "gpu":
		return DeviceGPU, nil
	case "accelerator", "acc":
		return DeviceAccelerator, nil
	case "all", "any", "*", "":
		return DeviceAll, nil
	default:
		return DeviceUnknown, fmt.Errorf("unknown device type: %q", s)
	}
}

// deviceTypeFromMask maps runtime bits to a kind. GPU wins over CPU, CPU over
// accelerator, matching how drivers report combined bits such as GPU|DEFAULT.
func deviceTypeFromMask(dt cl.DeviceType) DeviceType {
	switch {
	case dt&cl.DeviceTypeGPU != 0:
		return DeviceGPU
	case dt&cl.DeviceTypeCPU != 0:
		return DeviceCPU
	case dt&cl.DeviceTypeAccelerator != 0:
		return DeviceAccelerator
	default:
		return DeviceUnknown
	}
}

// SolverType names the integration scheme the kernels implement.
type SolverType int

const (
	Euler            SolverType = 1
	RungeKutta       SolverType = 2
	ImplicitEuler    SolverType = 3
	ImplicitMidpoint SolverType = 4
	StochasticEuler  SolverType = 5
)

func (s SolverType) String() string {
	switch s {
	case Euler:
		return "euler"
	case RungeKutta:
		return "rk4"
	case ImplicitEuler:
		return "implicit-euler"
	case ImplicitMidpoint:
		return "implicit-midpoint"
	case StochasticEuler:
		return "stochastic-euler"
	default:
		return fmt.Sprintf("SolverType(%d)", int(s))
	}
}

// Stochastic reports whether s integrates an SDE.
func (s SolverType) Stochastic() bool { return s == StochasticEuler }

// ParseSolverType maps user input to a SolverType.
func ParseSolverType(s string) (SolverType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "euler":
		return Euler, nil
	case "rk4", "rungekutta", "runge-kutta":
		return RungeKutta, nil
	case "implicit-euler", "impliciteuler", "ie":
		return ImplicitEuler, nil
	case "implicit-midpoint", "implicitmidpoint", "im":
		return ImplicitMidpoint, nil
	case "stochastic-euler", "stochasticeuler", "se":
		return StochasticEuler, nil
	default:
		return 0, fmt.Errorf("unknown solver type: %q", s)
	}
}
