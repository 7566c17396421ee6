package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clawdsign/pkg/client"
)

func TestRootCommandSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()

	want := []string{"serve", "migrate", "generate", "models", "claim", "vote", "stats", "top", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestServerFlag(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(envServer, "")
		root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
		if got := root.PersistentFlags().Lookup("server").DefValue; got != client.DefaultBaseURL {
			t.Errorf("default server = %q, want %q", got, client.DefaultBaseURL)
		}
	})
	t.Run("env", func(t *testing.T) {
		t.Setenv(envServer, "https://clawdsign.example")
		root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
		if got := root.PersistentFlags().Lookup("server").DefValue; got != "https://clawdsign.example" {
			t.Errorf("server = %q, want env value", got)
		}
	})
}

func TestGenerateCommand(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"generate", "--name", "Atlas", "--model", "gpt-4", "--theme", "explorer", "--skills", "6"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), `id="clip-7a8f44"`) {
		t.Errorf("output is not the Atlas signature: %.80q", out.String())
	}
}

func TestGenerateCommandRequiresFlags(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"generate", "--name", "Atlas"})

	if err := root.Execute(); err == nil {
		t.Error("expected error for missing --theme")
	}
}

func TestRenderModels(t *testing.T) {
	out := renderModels()
	for _, want := range []string{"claude-opus-4-5 (default)", "gpt-4", "#F97316", "llama-3"} {
		if !strings.Contains(out, want) {
			t.Errorf("models table missing %q", want)
		}
	}
}
