package cmd

import (
	"strings"
	"testing"
)

func TestRootCommandMetadata(t *testing.T) {
	if rootCmd.Use != "veracode-mcp" {
		t.Errorf("Use = %q, want veracode-mcp", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("Short description is empty")
	}
	if !strings.Contains(rootCmd.Long, "stdio") {
		t.Error("Long description does not mention the stdio transport")
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"mcp", "version"} {
		if !names[want] {
			t.Errorf("subcommand %q not registered", want)
		}
	}
}

func TestDebugFlagRegistered(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("debug")
	if f == nil {
		t.Fatal("persistent flag --debug not registered")
	}
	if f.DefValue != "false" {
		t.Errorf("debug default = %q, want false", f.DefValue)
	}
}
