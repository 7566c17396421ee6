package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})

			if err := root.Execute(); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if !strings.Contains(out.String(), appName) {
				t.Errorf("%s script does not mention %s", shell, appName)
			}
		})
	}
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"completion", "tcsh"})

	if err := root.Execute(); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestCompleteModels(t *testing.T) {
	tests := []struct {
		prefix string
		want   []string
	}{
		{"gpt", []string{"gpt-4\t#F97316", "gpt-4-turbo\t#EF4444"}},
		{"llama", []string{"llama-3\t#14B8A6"}},
		{"mistral", nil},
	}
	for _, tt := range tests {
		got, dir := completeModels(nil, nil, tt.prefix)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("completeModels(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
		if dir != cobra.ShellCompDirectiveNoFileComp {
			t.Errorf("directive = %v, want NoFileComp", dir)
		}
	}
}

func TestModelFlagCompletion(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{cobra.ShellCompRequestCmd, "generate", "--model", "claude-h"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "claude-haiku-4-5") {
		t.Errorf("completion output = %q", out.String())
	}
}
