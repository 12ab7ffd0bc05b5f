package profile

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/samber/lo"

	"github.com/xabinapal/mtcli/internal/dataapi"
	"github.com/xabinapal/mtcli/internal/keyring"
)

func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlink pointer requires a Unix-like filesystem")
	}
	return NewStore(filepath.Join(t.TempDir(), ".mtcli"), opts...)
}

func mustCreate(t *testing.T, s *Store, name, baseURL string) *Profile {
	t.Helper()
	p, err := s.Create(name, Fields{BaseURL: lo.ToPtr(baseURL)})
	if err != nil {
		t.Fatalf("Create(%s) error: %v", name, err)
	}
	return p
}

func TestStoreCreate(t *testing.T) {
	s := newTestStore(t)

	p := mustCreate(t, s, "blog", "https://example.com/mt/mt-data-api.cgi/")

	if p.BaseURL != "https://example.com/mt/mt-data-api.cgi" {
		t.Errorf("BaseURL = %q, want trailing slash stripped", p.BaseURL)
	}
	if p.APIVersion != dataapi.DefaultVersion {
		t.Errorf("APIVersion = %d, want %d", p.APIVersion, dataapi.DefaultVersion)
	}
	if p.LoggedIn() {
		t.Error("new profile should not be logged in")
	}
	if p.Path() != filepath.Join(s.Dir(), "blog.yml") {
		t.Errorf("Path() = %q", p.Path())
	}

	info, err := os.Stat(p.Path())
	if err != nil {
		t.Fatalf("profile file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("profile file mode = %o, want 600", perm)
	}

	loaded, err := s.Get("blog")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if loaded.BaseURL != p.BaseURL || loaded.Name != "blog" {
		t.Errorf("Get() = %+v", loaded)
	}
}

func TestStoreCreateErrors(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "blog", "https://example.com/api")

	tests := []struct {
		name    string
		profile string
		fields  Fields
		wantErr error
	}{
		{name: "duplicate", profile: "blog", fields: Fields{BaseURL: lo.ToPtr("https://other.example.com")}, wantErr: ErrAlreadyExists},
		{name: "invalid name", profile: "../escape", fields: Fields{BaseURL: lo.ToPtr("https://example.com")}, wantErr: ErrInvalidName},
		{name: "pointer name", profile: ".CURRENT", fields: Fields{BaseURL: lo.ToPtr("https://example.com")}, wantErr: ErrInvalidName},
		{name: "missing base URL", profile: "empty", fields: Fields{}, wantErr: ErrInvalidProfile},
		{name: "not a URL", profile: "bad", fields: Fields{BaseURL: lo.ToPtr("example")}, wantErr: ErrInvalidProfile},
		{name: "invalid version", profile: "old", fields: Fields{BaseURL: lo.ToPtr("https://example.com"), APIVersion: lo.ToPtr(-1)}, wantErr: ErrInvalidProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(tt.profile, tt.fields)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create(%q) error = %v, want %v", tt.profile, err, tt.wantErr)
			}
		})
	}

	p, err := s.Get("blog")
	if err != nil {
		t.Fatal(err)
	}
	if p.BaseURL != "https://example.com/api" {
		t.Errorf("duplicate create modified existing profile: %q", p.BaseURL)
	}
}

func TestStoreList(t *testing.T) {
	s := newTestStore(t)

	profiles, err := s.List()
	if err != nil {
		t.Fatalf("List() on missing directory error: %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("List() = %d profiles, want 0", len(profiles))
	}

	mustCreate(t, s, "zeta", "https://z.example.com")
	mustCreate(t, s, "alpha", "https://a.example.com")
	if _, err := s.SetCurrent("alpha"); err != nil {
		t.Fatal(err)
	}

	profiles, err = s.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	names := lo.Map(profiles, func(p *Profile, _ int) string { return p.Name })
	if strings.Join(names, ",") != "alpha,zeta" {
		t.Errorf("List() names = %v, want [alpha zeta]", names)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStoreGetByPath(t *testing.T) {
	s := newTestStore(t)
	p := mustCreate(t, s, "blog", "https://example.com")

	loaded, err := s.Get(p.Path())
	if err != nil {
		t.Fatalf("Get(path) error: %v", err)
	}
	if loaded.Name != "blog" {
		t.Errorf("Name = %q, want blog", loaded.Name)
	}
}

func TestStoreUpdate(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "blog", "https://example.com")

	endpoints := []dataapi.Endpoint{{ID: "list_sites", Verb: "GET", Route: "/sites", Version: 1}}
	p, err := s.Update("blog", Fields{
		APIVersion:  lo.ToPtr(4),
		AccessToken: lo.ToPtr("tok"),
		Endpoints:   &endpoints,
	})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if p.BaseURL != "https://example.com" {
		t.Errorf("nil field changed BaseURL to %q", p.BaseURL)
	}

	loaded, err := s.Get("blog")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.APIVersion != 4 || loaded.AccessToken != "tok" || len(loaded.Endpoints) != 1 {
		t.Errorf("Get() after Update() = %+v", loaded)
	}
	if !loaded.LoggedIn() {
		t.Error("LoggedIn() = false after storing a token")
	}

	if _, err := s.Update("missing", Fields{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStoreDelete(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "blog", "https://example.com")
	mustCreate(t, s, "other", "https://other.example.com")
	if _, err := s.SetCurrent("blog"); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete("blog"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := s.Get("blog"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetCurrent(); !errors.Is(err, ErrNoCurrent) {
		t.Errorf("GetCurrent() after deleting current error = %v, want ErrNoCurrent", err)
	}
	if _, err := os.Lstat(s.pointerPath()); !os.IsNotExist(err) {
		t.Error("pointer should be removed when the current profile is deleted")
	}

	if err := s.Delete("blog"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStoreDeleteKeepsOtherPointer(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "blog", "https://example.com")
	mustCreate(t, s, "other", "https://other.example.com")
	if _, err := s.SetCurrent("other"); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete("blog"); err != nil {
		t.Fatal(err)
	}

	current, err := s.GetCurrent()
	if err != nil {
		t.Fatalf("GetCurrent() error: %v", err)
	}
	if current.Name != "other" {
		t.Errorf("GetCurrent() = %s, want other", current.Name)
	}
}

func TestStoreRename(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "blog", "https://example.com")
	if _, err := s.SetCurrent("blog"); err != nil {
		t.Fatal(err)
	}

	p, err := s.Rename("blog", "site")
	if err != nil {
		t.Fatalf("Rename() error: %v", err)
	}
	if p.Name != "site" || p.Path() != filepath.Join(s.Dir(), "site.yml") {
		t.Errorf("Rename() = %s at %s", p.Name, p.Path())
	}

	if _, err := s.Get("blog"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(old) error = %v, want ErrNotFound", err)
	}

	current, err := s.GetCurrent()
	if err != nil {
		t.Fatalf("GetCurrent() error: %v", err)
	}
	if current.Name != "site" {
		t.Errorf("GetCurrent() = %s, want site", current.Name)
	}
}

func TestStoreRenameErrors(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "blog", "https://blog.example.com")
	mustCreate(t, s, "site", "https://site.example.com")

	if _, err := s.Rename("blog", "site"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Rename() onto existing error = %v, want ErrAlreadyExists", err)
	}
	if _, err := s.Rename("missing", "new"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rename(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := s.Rename("blog", "a/b"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Rename() to invalid name error = %v, want ErrInvalidName", err)
	}

	for name, want := range map[string]string{"blog": "https://blog.example.com", "site": "https://site.example.com"} {
		p, err := s.Get(name)
		if err != nil {
			t.Fatalf("Get(%s) error: %v", name, err)
		}
		if p.BaseURL != want {
			t.Errorf("%s BaseURL = %q, want %q", name, p.BaseURL, want)
		}
	}
}

func TestStoreInfo(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "blog", "https://example.com")
	p, err := s.SetCurrent("blog")
	if err != nil {
		t.Fatal(err)
	}

	info := s.Info(p)
	want := Info{Name: "blog", BaseURL: "https://example.com", APIVersion: 3, Current: true, LoggedIn: false}
	if info != want {
		t.Errorf("Info() = %+v, want %+v", info, want)
	}
}

func TestStoreTokenVault(t *testing.T) {
	vault := keyring.NewMockStore()
	s := newTestStore(t, WithTokenVault(vault))

	mustCreate(t, s, "blog", "https://example.com")
	if _, err := s.Update("blog", Fields{AccessToken: lo.ToPtr("secret-token")}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), "blog.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret-token") {
		t.Error("token written to profile file while a vault is configured")
	}
	if token, _ := vault.Get("blog"); token != "secret-token" {
		t.Errorf("vault token = %q, want secret-token", token)
	}

	p, err := s.Get("blog")
	if err != nil {
		t.Fatal(err)
	}
	if p.AccessToken != "secret-token" {
		t.Errorf("loaded token = %q, want secret-token", p.AccessToken)
	}

	if _, err := s.Rename("blog", "site"); err != nil {
		t.Fatal(err)
	}
	if keys := vault.Keys(); len(keys) != 1 || keys[0] != "site" {
		t.Errorf("vault keys after rename = %v, want [site]", keys)
	}

	if _, err := s.Update("site", Fields{AccessToken: lo.ToPtr("")}); err != nil {
		t.Fatal(err)
	}
	if len(vault.Keys()) != 0 {
		t.Errorf("empty token should remove vault entry, keys = %v", vault.Keys())
	}

	if _, err := s.Update("site", Fields{AccessToken: lo.ToPtr("again")}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("site"); err != nil {
		t.Fatal(err)
	}
	if len(vault.Keys()) != 0 {
		t.Errorf("Delete() left vault keys %v", vault.Keys())
	}
}

func TestStoreTokenVaultFailure(t *testing.T) {
	vault := keyring.NewMockStore()
	s := newTestStore(t, WithTokenVault(vault))
	mustCreate(t, s, "blog", "https://example.com")

	vault.SetFailing(true)
	if _, err := s.Update("blog", Fields{AccessToken: lo.ToPtr("tok")}); !errors.Is(err, keyring.ErrKeyringUnavailable) {
		t.Errorf("Update() error = %v, want ErrKeyringUnavailable", err)
	}
}

func TestStoreRejectsNamesOutsideDirectory(t *testing.T) {
	s := newTestStore(t)

	outside := filepath.Join(filepath.Dir(s.Dir()), "victim.yml")
	if err := os.WriteFile(outside, []byte("baseUrl: https://example.com\napiVersion: 3\n"), 0600); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"../victim", "sub/../../victim", ".CURRENT", ".."} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(name); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Get(%q) error = %v, want ErrInvalidName", name, err)
			}
			if _, err := s.Update(name, Fields{BaseURL: lo.ToPtr("https://evil.example.com")}); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Update(%q) error = %v, want ErrInvalidName", name, err)
			}
			if err := s.Delete(name); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Delete(%q) error = %v, want ErrInvalidName", name, err)
			}
			if _, err := s.Rename(name, "moved"); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Rename(%q) error = %v, want ErrInvalidName", name, err)
			}
			if _, err := s.SetCurrent(name); !errors.Is(err, ErrInvalidName) {
				t.Errorf("SetCurrent(%q) error = %v, want ErrInvalidName", name, err)
			}
		})
	}

	data, err := os.ReadFile(outside)
	if err != nil {
		t.Fatalf("file outside the directory was removed: %v", err)
	}
	if strings.Contains(string(data), "evil") {
		t.Error("file outside the directory was modified")
	}
}

func TestStoreTokenVaultFailureKeepsProfile(t *testing.T) {
	vault := keyring.NewMockStore()
	s := newTestStore(t, WithTokenVault(vault))
	mustCreate(t, s, "blog", "https://example.com")
	if _, err := s.Update("blog", Fields{AccessToken: lo.ToPtr("tok")}); err != nil {
		t.Fatal(err)
	}

	vault.SetFailing(true)

	if err := s.Delete("blog"); !errors.Is(err, keyring.ErrKeyringUnavailable) {
		t.Errorf("Delete() error = %v, want ErrKeyringUnavailable", err)
	}
	if _, err := s.Rename("blog", "site"); !errors.Is(err, keyring.ErrKeyringUnavailable) {
		t.Errorf("Rename() error = %v, want ErrKeyringUnavailable", err)
	}

	vault.SetFailing(false)

	p, err := s.Get("blog")
	if err != nil {
		t.Fatalf("profile should survive failed vault operations: %v", err)
	}
	if p.AccessToken != "tok" {
		t.Errorf("AccessToken = %q, want tok", p.AccessToken)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "site.yml")); !os.IsNotExist(err) {
		t.Errorf("failed rename left site.yml behind: %v", err)
	}
}
