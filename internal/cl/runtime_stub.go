//go:build !gpu

package cl

// Open returns ErrNotBuilt when OpenCL support is not compiled in.
func Open() (Runtime, error) {
	return nil, ErrNotBuilt
}
