// ABOUTME: Tests for root CLI command structure and global flags
// ABOUTME: Verifies subcommand registration and flag defaults
package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "cerebro" {
		t.Errorf("Use = %q, want %q", cmd.Use, "cerebro")
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	cmd := NewRootCmd()

	tests := []struct {
		flagName  string
		shorthand string
		defValue  string
	}{
		{"verbose", "v", "false"},
		{"quiet", "q", "false"},
		{"format", "", "auto"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("--%s flag not found", tt.flagName)
			}
			if tt.shorthand != "" && flag.Shorthand != tt.shorthand {
				t.Errorf("--%s shorthand = %q, want %q", tt.flagName, flag.Shorthand, tt.shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("--%s default = %q, want %q", tt.flagName, flag.DefValue, tt.defValue)
			}
		})
	}
}

func TestQueryCmds_TopKFlag(t *testing.T) {
	for _, newCmd := range []func() *cobra.Command{NewSearchCmd, NewAskCmd} {
		cmd := newCmd()
		t.Run(cmd.Name(), func(t *testing.T) {
			flag := cmd.Flags().Lookup("top-k")
			if flag == nil {
				t.Fatal("--top-k flag not found")
			}
			if flag.DefValue != "0" {
				t.Errorf("--top-k default = %q, want %q", flag.DefValue, "0")
			}
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	expected := []string{"serve", "ingest", "list", "search", "ask", "mcp", "version"}
	for _, name := range expected {
		t.Run(name, func(t *testing.T) {
			for _, sub := range cmd.Commands() {
				if sub.Name() == name {
					return
				}
			}
			t.Errorf("subcommand %q not registered", name)
		})
	}
}

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-08-28")
	defer SetVersion("dev", "none", "unknown")

	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	got := out.String()
	for _, want := range []string{"1.2.3", "abc123", "2026-08-28"} {
		if !strings.Contains(got, want) {
			t.Errorf("version output missing %q: %s", want, got)
		}
	}
}

func TestIngestCmd_ArgValidation(t *testing.T) {
	t.Run("no input", func(t *testing.T) {
		ingestURL = ""
		cmd := NewIngestCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		if err := cmd.RunE(cmd, nil); err == nil {
			t.Error("expected error with neither file nor --url")
		}
	})

	t.Run("both inputs", func(t *testing.T) {
		ingestURL = "https://example.com"
		defer func() { ingestURL = "" }()
		cmd := NewIngestCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		if err := cmd.RunE(cmd, []string{"file.md"}); err == nil {
			t.Error("expected error with both file and --url")
		}
	})
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a longer string", 10, "this is..."},
		{"abc", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}
