package compute

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultKernelName is the entry point the solver kernels export.
const DefaultKernelName = "solver_caller"

// Selection is the validated platform/device choice of a manager.
type Selection struct {
	Platform int        `json:"platform"`
	Device   int        `json:"device"`
	Type     DeviceType `json:"type"`
}

// Settings holds the solver-facing parameters that accompany a selection.
type Settings struct {
	LocalGroupSize int
	Output         OutputType
	Solver         SolverType
	BuildOptions   []BuildOption
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		LocalGroupSize: 64,
		Output:         OutputFile,
		Solver:         RungeKutta,
	}
}

// Validate checks s for out-of-range values.
func (s Settings) Validate() error {
	if s.LocalGroupSize <= 0 {
		return fmt.Errorf("local group size must be positive, got %d", s.LocalGroupSize)
	}
	switch s.Output {
	case OutputFile, OutputArray, OutputNone:
	default:
		return fmt.Errorf("invalid output type %d", int(s.Output))
	}
	switch s.Solver {
	case Euler, RungeKutta, ImplicitEuler, ImplicitMidpoint, StochasticEuler:
	default:
		return fmt.Errorf("invalid solver type %d", int(s.Solver))
	}
	for _, o := range s.BuildOptions {
		if o.Flag() == "" {
			return fmt.Errorf("invalid build option %d", int(o))
		}
	}
	return nil
}

// KernelSource is the opaque kernel text passed to program creation.
type KernelSource struct {
	Path string
	Data []byte
}

// Dir returns the directory holding the source, used as include path.
func (k KernelSource) Dir() string {
	if k.Path == "" {
		return ""
	}
	return filepath.Dir(k.Path)
}

// ReadKernelSource reads the whole file at path.
func ReadKernelSource(path string) (KernelSource, error) {
	if path == "" {
		return KernelSource{}, fmt.Errorf("kernel path cannot be empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return KernelSource{}, fmt.Errorf("failed to read kernel source: %w", err)
	}
	if len(data) == 0 {
		return KernelSource{}, fmt.Errorf("kernel source %s is empty", path)
	}
	return KernelSource{Path: path, Data: data}, nil
}
