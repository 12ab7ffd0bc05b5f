package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PointerName is the symlink marking the current profile.
const PointerName = ".CURRENT"

func (s *Store) pointerPath() string {
	return filepath.Join(s.dir, PointerName)
}

// currentTarget returns the path the pointer links to, or "" when there is
// no pointer or it is not a symlink.
func (s *Store) currentTarget() string {
	info, err := os.Lstat(s.pointerPath())
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return ""
	}
	target, err := os.Readlink(s.pointerPath())
	if err != nil {
		return ""
	}
	return target
}

// GetCurrent returns the profile the pointer links to.
func (s *Store) GetCurrent() (*Profile, error) {
	target := s.currentTarget()
	if target == "" {
		return nil, ErrNoCurrent
	}

	p, err := s.load(target)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoCurrent
	}
	return p, err
}

// IsCurrent reports whether the pointer links to p's file.
func (s *Store) IsCurrent(p *Profile) bool {
	return p != nil && p.path != "" && s.currentTarget() == p.path
}

// SetCurrent marks the profile called name as current.
//
// The pointer is removed and then recreated, so a concurrent reader may
// briefly see no current profile.
func (s *Store) SetCurrent(name string) (*Profile, error) {
	p, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	if s.IsCurrent(p) {
		return p, nil
	}

	if err := s.setPointer(p.path); err != nil {
		return nil, err
	}

	s.log.WithField("profile", p.Name).Debug("Set current profile")
	return p, nil
}

func (s *Store) setPointer(target string) error {
	if err := s.clearPointer(); err != nil {
		return err
	}
	if err := os.Symlink(target, s.pointerPath()); err != nil {
		return fmt.Errorf("failed to set current profile: %w", err)
	}
	return nil
}

func (s *Store) clearPointer() error {
	err := os.Remove(s.pointerPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear current profile: %w", err)
	}
	return nil
}
