package store

// Store persists setup profiles so a device selection can be reused.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return ErrNotFound if the profile doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// Save atomically writes the profile under its ID, replacing any
	// previous profile with the same ID.
	Save(profile *Profile) error

	// Load returns the profile with the given ID.
	Load(id string) (*Profile, error)

	// List returns metadata for every readable profile. Corrupt entries are skipped.
	List() ([]ProfileInfo, error)

	// Delete removes the profile directory, including its setup trace.
	Delete(id string) error

	// Trace returns the setup steps recorded for the profile.
	Trace(id string) ([]TraceEntry, error)
}

// ErrNotFound is returned when a requested profile does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing profile.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return "profile not found: " + e.ID
	}
	return "profile not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
