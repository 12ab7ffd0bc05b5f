package profile

import "errors"

var (
	// ErrNotFound is returned when no profile file exists for a name.
	ErrNotFound = errors.New("profile not found")
	// ErrAlreadyExists is returned when creating or renaming onto an existing profile.
	ErrAlreadyExists = errors.New("profile already exists")
	// ErrInvalidName is returned for names that are not safe file names.
	ErrInvalidName = errors.New("invalid profile name")
	// ErrInvalidProfile is returned when a profile fails validation on save.
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrNoCurrent is returned when no profile is marked current.
	ErrNoCurrent = errors.New("no current profile")
)
