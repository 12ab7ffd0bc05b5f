package dataapi

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBuildHTTPClient(t *testing.T) {
	dir := t.TempDir()
	badCA := filepath.Join(dir, "ca.pem")
	if err := os.WriteFile(badCA, []byte("not a certificate"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    TLSOptions
		wantErr bool
	}{
		{name: "default", opts: TLSOptions{}},
		{name: "skip verify", opts: TLSOptions{SkipVerify: true}},
		{name: "missing CA file", opts: TLSOptions{CACert: filepath.Join(dir, "missing.pem")}, wantErr: true},
		{name: "invalid CA file", opts: TLSOptions{CACert: badCA}, wantErr: true},
		{name: "cert without key", opts: TLSOptions{ClientCert: "cert.pem"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := buildHTTPClient(tt.opts, 0)
			if tt.wantErr {
				if err == nil {
					t.Error("buildHTTPClient() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildHTTPClient() unexpected error: %v", err)
			}
			if client.Timeout != DefaultTimeout {
				t.Errorf("Timeout = %v, want %v", client.Timeout, DefaultTimeout)
			}
			transport := client.Transport.(*http.Transport)
			if transport.TLSClientConfig.InsecureSkipVerify != tt.opts.SkipVerify {
				t.Errorf("InsecureSkipVerify = %v, want %v", transport.TLSClientConfig.InsecureSkipVerify, tt.opts.SkipVerify)
			}
		})
	}
}

func TestBuildHTTPClientTimeout(t *testing.T) {
	client, err := buildHTTPClient(TLSOptions{}, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", client.Timeout)
	}
}
