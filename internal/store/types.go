package store

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile records a successful device selection together with the solver
// settings and kernels that were built for it.
type Profile struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	PlatformIndex int    `json:"platformIndex"`
	PlatformName  string `json:"platformName"`
	DeviceIndex   int    `json:"deviceIndex"`
	DeviceName    string `json:"deviceName"`
	DeviceVersion string `json:"deviceVersion"`
	// DeviceType is the filter used at selection time ("all", "gpu", ...).
	DeviceType string `json:"deviceType"`

	LocalGroupSize int      `json:"localGroupSize"`
	Output         string   `json:"output"`
	Solver         string   `json:"solver"`
	BuildOptions   []string `json:"buildOptions,omitempty"`
	KernelPath     string   `json:"kernelPath,omitempty"`
	Kernels        []string `json:"kernels,omitempty"`
}

// ProfileInfo is the listing view of a Profile.
type ProfileInfo struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Platform   string    `json:"platform"`
	Device     string    `json:"device"`
	DeviceType string    `json:"deviceType"`
	Solver     string    `json:"solver"`
	Kernels    int       `json:"kernels"`
}

// NewProfile returns an empty profile with a fresh ID and the current time.
func NewProfile() *Profile {
	return &Profile{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
	}
}

// ToInfo converts a Profile to its listing view.
func (p *Profile) ToInfo() ProfileInfo {
	return ProfileInfo{
		ID:         p.ID,
		Timestamp:  p.Timestamp,
		Platform:   p.PlatformName,
		Device:     p.DeviceName,
		DeviceType: p.DeviceType,
		Solver:     p.Solver,
		Kernels:    len(p.Kernels),
	}
}

// Validate checks the fields every stored profile must carry.
func (p *Profile) Validate() error {
	if err := ValidateID(p.ID); err != nil {
		return err
	}
	if p.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if p.PlatformIndex < 0 {
		return &ValidationError{Field: "PlatformIndex", Reason: "cannot be negative"}
	}
	if p.DeviceIndex < 0 {
		return &ValidationError{Field: "DeviceIndex", Reason: "cannot be negative"}
	}
	if p.DeviceName == "" {
		return &ValidationError{Field: "DeviceName", Reason: "cannot be empty"}
	}
	if p.LocalGroupSize <= 0 {
		return &ValidationError{Field: "LocalGroupSize", Reason: "must be positive"}
	}
	if p.Solver == "" {
		return &ValidationError{Field: "Solver", Reason: "cannot be empty"}
	}
	if len(p.Kernels) > 0 && p.KernelPath == "" {
		return &ValidationError{Field: "KernelPath", Reason: "required when kernels are listed"}
	}
	return nil
}

// ValidateID rejects IDs that are empty or would not name a single
// directory below the profiles directory.
func ValidateID(id string) error {
	switch {
	case id == "":
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	case id == "." || id == "..":
		return &ValidationError{Field: "ID", Reason: "cannot be a relative path element"}
	case strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, filepath.Separator):
		return &ValidationError{Field: "ID", Reason: "cannot contain path separators"}
	}
	return nil
}

// ValidationError represents a profile validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// CheckTopology reports whether the devices recorded in the profile are still
// present at the same indices.
func (p *Profile) CheckTopology(platformName, deviceName string) error {
	if p.PlatformName != platformName {
		return &CompatibilityError{Field: "PlatformName", Expected: p.PlatformName, Actual: platformName}
	}
	if p.DeviceName != deviceName {
		return &CompatibilityError{Field: "DeviceName", Expected: p.DeviceName, Actual: deviceName}
	}
	return nil
}

// CompatibilityError is returned when a profile no longer matches the host.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
