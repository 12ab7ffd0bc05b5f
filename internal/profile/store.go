package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/xabinapal/mtcli/internal/keyring"
	"github.com/xabinapal/mtcli/internal/utils"
)

// FileExt is the extension of profile files.
const FileExt = ".yml"

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTokenVault keeps access tokens in vault instead of the YAML files.
func WithTokenVault(vault keyring.Store) StoreOption {
	return func(s *Store) {
		s.vault = vault
	}
}

// WithLogger sets the logger for store operations.
func WithLogger(log *logrus.Entry) StoreOption {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// Store manages the profiles in one directory. It assumes a single writer.
type Store struct {
	dir      string
	vault    keyring.Store
	log      *logrus.Entry
	validate *validator.Validate
}

// NewStore creates a Store over dir. The directory is created on first save.
func NewStore(dir string, opts ...StoreOption) *Store {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)

	s := &Store{
		dir:      dir,
		log:      logrus.NewEntry(l),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory holding the profiles.
func (s *Store) Dir() string {
	return s.dir
}

// path returns the file for name. A name starting with a path separator is
// taken as an already resolved path.
func (s *Store) path(name string) string {
	if strings.HasPrefix(name, string(filepath.Separator)) {
		return name
	}
	return filepath.Join(s.dir, name+FileExt)
}

func nameFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), FileExt)
}

func (s *Store) exists(name string) (bool, error) {
	_, err := os.Stat(s.path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check profile %s: %w", name, err)
}

// List returns every profile in the directory in file name order.
func (s *Store) List() ([]*Profile, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*"+FileExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles := make([]*Profile, 0, len(paths))
	for _, path := range paths {
		p, err := s.load(path)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Get loads the profile called name. Names that are not absolute paths must
// be valid profile names, so no operation reaches outside the directory.
func (s *Store) Get(name string) (*Profile, error) {
	if !strings.HasPrefix(name, string(filepath.Separator)) && !utils.IsValidProfileName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	ok, err := s.exists(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s.load(s.path(name))
}

// Create validates and saves a new profile.
func (s *Store) Create(name string, fields Fields) (*Profile, error) {
	if !utils.IsValidProfileName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	ok, err := s.exists(name)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}

	p := &Profile{
		Name: name,
		path: s.path(name),
	}
	fields.apply(p)

	if err := s.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update overwrites the non-nil fields of an existing profile and saves it.
func (s *Store) Update(name string, fields Fields) (*Profile, error) {
	p, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	fields.apply(p)

	if err := s.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a profile, clearing the current pointer first if it points
// at it.
func (s *Store) Delete(name string) error {
	p, err := s.Get(name)
	if err != nil {
		return err
	}

	if s.vault != nil {
		if err := s.vault.Delete(p.Name); err != nil {
			return fmt.Errorf("failed to delete stored token for %s: %w", p.Name, err)
		}
	}

	if s.IsCurrent(p) {
		if err := s.clearPointer(); err != nil {
			return err
		}
	}

	if err := os.Remove(p.path); err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", name, err)
	}

	s.log.WithField("profile", p.Name).Debug("Deleted profile")
	return nil
}

// Rename moves a profile to newName. A current profile stays current.
func (s *Store) Rename(name, newName string) (*Profile, error) {
	if !utils.IsValidProfileName(newName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, newName)
	}

	p, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	ok, err := s.exists(newName)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, newName)
	}

	wasCurrent := s.IsCurrent(p)
	newPath := s.path(newName)

	if s.vault != nil {
		if err := keyring.Move(s.vault, p.Name, newName); err != nil {
			return nil, fmt.Errorf("failed to move stored token for %s: %w", p.Name, err)
		}
	}

	if err := os.Rename(p.path, newPath); err != nil {
		if s.vault != nil {
			if rerr := keyring.Move(s.vault, newName, p.Name); rerr != nil {
				s.log.WithField("profile", p.Name).Warnf("Failed to restore stored token: %v", rerr)
			}
		}
		return nil, fmt.Errorf("failed to rename profile %s: %w", name, err)
	}

	p.Name = newName
	p.path = newPath

	if wasCurrent {
		if err := s.setPointer(newPath); err != nil {
			return nil, err
		}
	}

	s.log.WithField("profile", newName).Debugf("Renamed profile from %s", name)
	return p, nil
}

// Save validates p and writes it to its file.
func (s *Store) Save(p *Profile) error {
	if p.path == "" {
		if !utils.IsValidProfileName(p.Name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, p.Name)
		}
		p.path = s.path(p.Name)
	}

	p.normalize()
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidProfile, p.Name, err)
	}

	record := *p
	if s.vault != nil {
		var err error
		if p.AccessToken != "" {
			err = s.vault.Set(p.Name, p.AccessToken)
		} else {
			err = s.vault.Delete(p.Name)
		}
		if err != nil {
			return fmt.Errorf("failed to store access token: %w", err)
		}
		record.AccessToken = ""
	}

	data, err := yaml.Marshal(&record)
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", p.Name, err)
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write profile %s: %w", p.Name, err)
	}

	s.log.WithField("profile", p.Name).Debug("Saved profile")
	return nil
}

// Info returns the display form of p.
func (s *Store) Info(p *Profile) Info {
	return Info{
		Name:       p.Name,
		BaseURL:    p.BaseURL,
		APIVersion: p.APIVersion,
		Current:    s.IsCurrent(p),
		LoggedIn:   p.LoggedIn(),
	}
}

// load reads the profile stored at path.
func (s *Store) load(path string) (*Profile, error) {
	// #nosec G304 - path is built from the profile directory or the current pointer
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, nameFromPath(path))
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	p := &Profile{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	p.Name = nameFromPath(path)
	p.path = path
	p.normalize()

	if s.vault != nil && p.AccessToken == "" {
		token, err := s.vault.Get(p.Name)
		switch {
		case err == nil:
			p.AccessToken = token
		case !errors.Is(err, keyring.ErrTokenNotFound):
			s.log.WithField("profile", p.Name).Warnf("Failed to read stored token: %v", err)
		}
	}

	return p, nil
}
