package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

var _ Store = (*FSStore)(nil)

// FSStore implements Store on the filesystem.
// Profiles live in <baseDir>/profiles/<id>/profile.json; writes go through
// a temp file and a rename, so no locking is needed.
type FSStore struct {
	baseDir string
}

// NewFSStore creates the base directory if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FSStore{
		baseDir: baseDir,
	}, nil
}

// BaseDir returns the root directory of the store.
func (fs *FSStore) BaseDir() string { return fs.baseDir }

func (fs *FSStore) profilesDir() string {
	return filepath.Join(fs.baseDir, "profiles")
}

func (fs *FSStore) profileDir(id string) string {
	return filepath.Join(fs.profilesDir(), id)
}

func (fs *FSStore) profilePath(id string) string {
	return filepath.Join(fs.profileDir(id), "profile.json")
}

// Save validates and atomically writes the profile.
func (fs *FSStore) Save(profile *Profile) error {
	if profile == nil {
		return fmt.Errorf("profile cannot be nil")
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	dir := fs.profileDir(profile.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}

	finalPath := fs.profilePath(profile.ID)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp profile file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename profile file: %w", err)
	}

	slog.Debug("Profile saved", "id", profile.ID, "path", finalPath)
	return nil
}

// Load reads the profile with the given ID.
func (fs *FSStore) Load(id string) (*Profile, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	path := fs.profilePath(id)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &NotFoundError{ID: id}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to deserialize profile: %w", err)
	}

	slog.Debug("Profile loaded", "id", id, "path", path)
	return &profile, nil
}

// List returns metadata for all profiles, newest first.
func (fs *FSStore) List() ([]ProfileInfo, error) {
	entries, err := os.ReadDir(fs.profilesDir())
	if errors.Is(err, os.ErrNotExist) {
		return []ProfileInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read profiles directory: %w", err)
	}

	infos := []ProfileInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		if _, err := os.Stat(fs.profilePath(id)); os.IsNotExist(err) {
			continue
		}

		profile, err := fs.Load(id)
		if err != nil {
			slog.Warn("Failed to load profile for listing", "id", id, "error", err)
			continue
		}
		infos = append(infos, profile.ToInfo())
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})

	slog.Debug("Listed profiles", "count", len(infos))
	return infos, nil
}

// Delete removes the profile directory and everything in it.
func (fs *FSStore) Delete(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	dir := fs.profileDir(id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{ID: id}
	} else if err != nil {
		return fmt.Errorf("failed to stat profile directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove profile directory: %w", err)
	}

	slog.Debug("Profile deleted", "id", id, "path", dir)
	return nil
}

// Trace reads the setup trace of a profile.
func (fs *FSStore) Trace(id string) ([]TraceEntry, error) {
	return ReadTrace(fs.baseDir, id)
}
