package cli

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			// an unreadable config must not break completion scripts
			out, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "completion", shell)
			if err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out, "moviegraph") {
				t.Errorf("completion %s script does not mention moviegraph:\n%.200s", shell, out)
			}
		})
	}
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestCompleteFormats(t *testing.T) {
	tests := []struct {
		toComplete string
		want       []string
	}{
		{"", []string{"dot", "graphviz", "json", "pdf", "png", "svg"}},
		{"p", []string{"pdf", "png"}},
		{"svg,p", []string{"svg,pdf", "svg,png"}},
		{"svg,png,", []string{"svg,png,dot", "svg,png,graphviz", "svg,png,json", "svg,png,pdf"}},
		{"gif", nil},
	}
	for _, tt := range tests {
		got, directive := completeFormats(nil, nil, tt.toComplete)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("completeFormats(%q) = %v, want %v", tt.toComplete, got, tt.want)
		}
		if directive&cobra.ShellCompDirectiveNoFileComp == 0 {
			t.Errorf("completeFormats(%q) allows file completion", tt.toComplete)
		}
	}
}
