package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/engine"
	"github.com/roach88/nucleus/internal/node"
	"github.com/roach88/nucleus/internal/testutil"
)

func writeDNA(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "test.cue")
	require.NoError(t, os.WriteFile(path, []byte(testutil.TestDNA), 0o600))
	return path
}

func writeConfig(t *testing.T, dir, dnaPath, dbPath string) string {
	t.Helper()
	path := filepath.Join(dir, "node.toml")
	content := fmt.Sprintf(`
[node]
agent_id = "alice"
dna_path = %q

[storage]
backend = "sqlite"
path = %q
eav_backend = "sqlite"

[network]
timeout_ms = 200
`, dnaPath, dbPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// runUntilReady starts a node through the run command, hands it to inspect
// once started, then shuts it down.
func runUntilReady(t *testing.T, args []string, inspect func(*node.Node)) (string, error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		IDs:         engine.NewSequenceGenerator("alice-req"),
		Ready: func(n *node.Node) {
			if inspect != nil {
				inspect(n)
			}
			cancel()
		},
	}
	cmd := &cobra.Command{
		Use:           "run",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNode(opts, cmd)
		},
	}
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "")
	cmd.Flags().StringVar(&opts.DNAPath, "dna", "", "")
	cmd.Flags().StringVar(&opts.AgentID, "agent", "", "")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "")

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}
