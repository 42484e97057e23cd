package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completionRoot builds a small root with the completion command attached
// so tests don't mutate the shared rootCmd.
func completionRoot(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	root := &cobra.Command{Use: "gpumon"}
	root.AddCommand(&cobra.Command{Use: "query", Run: func(*cobra.Command, []string) {}})
	root.AddCommand(&cobra.Command{Use: "completion", RunE: completionCmd.RunE})

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	return root, &buf
}

func TestCompletionShells(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "# bash completion for gpumon"},
		{"zsh", "#compdef gpumon"},
		{"fish", "complete -c gpumon"},
		{"powershell", "Register-ArgumentCompleter"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			root, buf := completionRoot(t)
			root.SetArgs([]string{"completion", tt.shell})

			require.NoError(t, root.Execute())
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	root, _ := completionRoot(t)
	root.SetArgs([]string{"completion", "tcsh"})

	assert.Error(t, root.Execute())
}

func TestCompletionCommandValidArgs(t *testing.T) {
	assert.ElementsMatch(t, []string{"bash", "zsh", "fish", "powershell"}, completionCmd.ValidArgs)
}
