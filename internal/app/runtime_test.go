package app

import (
	"context"
	"testing"
)

func TestNewRuntime(t *testing.T) {
	rt, err := NewRuntime(context.Background(), testConfig(), "1.0.0-test")
	if err != nil {
		t.Fatalf("NewRuntime() error: %v", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	}()

	if rt.App == nil {
		t.Fatal("App not set")
	}
	if rt.App.Client == nil {
		t.Error("Client not initialized")
	}
	if rt.Server == nil {
		t.Error("MCP server not initialized")
	}
}

func TestNewRuntimeSetupFailure(t *testing.T) {
	cfg := testConfig()
	cfg.APIKeySecret = "zz" // not valid hex

	rt, err := NewRuntime(context.Background(), cfg, "1.0.0-test")
	if err == nil {
		_ = rt.Close()
		t.Fatal("NewRuntime() succeeded with broken credentials")
	}
	if rt != nil {
		t.Error("runtime returned alongside an error")
	}
}
