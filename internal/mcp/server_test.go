package mcp

import (
	"strings"
	"testing"

	"github.com/veracode-tools/veracode-mcp/internal/testutil"
	"github.com/veracode-tools/veracode-mcp/internal/veracode"
)

const (
	testKeyID     = "0123456789abcdef"
	testKeySecret = "cafebabe0123456789abcdefcafebabe"

	// GUIDs must be well-formed UUIDs or the engine rejects them before
	// any request is made.
	appGUID      = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	otherAppGUID = "8b1e3a52-2f4a-4c7e-9d1b-6a0f2e8c4d10"
	sandboxGUID  = "11111111-2222-3333-4444-555555555555"
)

// newBackend starts a fake gateway and an engine client against it.
func newBackend(t *testing.T) (*testutil.Gateway, *veracode.Client) {
	t.Helper()
	g := testutil.NewGateway(t)
	client, err := veracode.NewClient(veracode.ClientConfig{
		APIKeyID:     testKeyID,
		APIKeySecret: testKeySecret,
		BaseURL:      g.URL(),
		Logger:       testutil.DiscardLogger(),
	})
	if err != nil {
		t.Fatalf("NewClient() unexpected error: %v", err)
	}
	return g, client
}

func validServerConfig(client *veracode.Client) Config {
	return Config{
		Name:    "veracode-mcp",
		Version: "1.0.0",
		Client:  client,
	}
}

func TestNewServerSuccess(t *testing.T) {
	_, client := newBackend(t)

	server, err := NewServer(validServerConfig(client))
	if err != nil {
		t.Fatalf("NewServer() unexpected error: %v", err)
	}

	if server.name != "veracode-mcp" {
		t.Errorf("server.name = %q, want %q", server.name, "veracode-mcp")
	}
	if server.version != "1.0.0" {
		t.Errorf("server.version = %q, want %q", server.version, "1.0.0")
	}
	if server.mcpServer == nil {
		t.Error("server.mcpServer is nil")
	}
	if server.client == nil {
		t.Error("server.client is nil")
	}
	if server.logger == nil {
		t.Error("server.logger is nil, want nop default")
	}
}

func TestNewServerValidationErrors(t *testing.T) {
	_, client := newBackend(t)

	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:    "missing name",
			config:  Config{Version: "1.0.0", Client: client},
			wantErr: "server name is required",
		},
		{
			name:    "missing version",
			config:  Config{Name: "veracode-mcp", Client: client},
			wantErr: "server version is required",
		},
		{
			name:    "missing client",
			config:  Config{Name: "veracode-mcp", Version: "1.0.0"},
			wantErr: "veracode client is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewServer(tt.config)
			if err == nil {
				t.Fatal("NewServer() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewServer() error = %q, want to contain %q", err, tt.wantErr)
			}
		})
	}
}
