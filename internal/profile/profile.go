// Package profile stores named connection profiles, one YAML file each, and
// tracks the current one through a symlink.
package profile

import (
	"strings"

	"github.com/xabinapal/mtcli/internal/dataapi"
)

// Profile is a named connection to one API installation.
type Profile struct {
	// Name is derived from the backing file name and never stored.
	Name string `yaml:"-"`

	BaseURL     string             `yaml:"baseUrl" validate:"required,http_url"`
	AccessToken string             `yaml:"accessToken"`
	APIVersion  int                `yaml:"apiVersion" validate:"gte=1"`
	Endpoints   []dataapi.Endpoint `yaml:"endpoints,omitempty"`

	TLSSkipVerify bool   `yaml:"tlsSkipVerify,omitempty"`
	CACert        string `yaml:"caCert,omitempty"`
	ClientCert    string `yaml:"clientCert,omitempty"`
	ClientKey     string `yaml:"clientKey,omitempty"`

	path string
}

// Path returns the file backing the profile.
func (p *Profile) Path() string {
	return p.path
}

// LoggedIn reports whether the profile holds an access token.
func (p *Profile) LoggedIn() bool {
	return p.AccessToken != ""
}

// ClientConfig returns the API client settings stored in the profile.
func (p *Profile) ClientConfig() dataapi.Config {
	return dataapi.Config{
		BaseURL:     p.BaseURL,
		Version:     p.APIVersion,
		AccessToken: p.AccessToken,
		Endpoints:   p.Endpoints,
		TLS: dataapi.TLSOptions{
			SkipVerify: p.TLSSkipVerify,
			CACert:     p.CACert,
			ClientCert: p.ClientCert,
			ClientKey:  p.ClientKey,
		},
	}
}

func (p *Profile) normalize() {
	p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	if p.APIVersion == 0 {
		p.APIVersion = dataapi.DefaultVersion
	}
}

// Fields is a partial profile. Nil fields are left untouched.
type Fields struct {
	BaseURL       *string
	AccessToken   *string
	APIVersion    *int
	Endpoints     *[]dataapi.Endpoint
	TLSSkipVerify *bool
	CACert        *string
	ClientCert    *string
	ClientKey     *string
}

func (f Fields) apply(p *Profile) {
	if f.BaseURL != nil {
		p.BaseURL = *f.BaseURL
	}
	if f.AccessToken != nil {
		p.AccessToken = *f.AccessToken
	}
	if f.APIVersion != nil {
		p.APIVersion = *f.APIVersion
	}
	if f.Endpoints != nil {
		p.Endpoints = *f.Endpoints
	}
	if f.TLSSkipVerify != nil {
		p.TLSSkipVerify = *f.TLSSkipVerify
	}
	if f.CACert != nil {
		p.CACert = *f.CACert
	}
	if f.ClientCert != nil {
		p.ClientCert = *f.ClientCert
	}
	if f.ClientKey != nil {
		p.ClientKey = *f.ClientKey
	}
}

// Info is the display form of a profile.
type Info struct {
	Name       string `json:"name" yaml:"name"`
	BaseURL    string `json:"baseUrl" yaml:"baseUrl"`
	APIVersion int    `json:"apiVersion" yaml:"apiVersion"`
	Current    bool   `json:"current" yaml:"current"`
	LoggedIn   bool   `json:"loggedIn" yaml:"loggedIn"`
}
