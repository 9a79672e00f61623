package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/store"
	"github.com/roach88/nucleus/internal/testutil"
)

func seedActions(t *testing.T, actions ...action.Action) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "node.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	for i, a := range actions {
		require.NoError(t, st.Actions().Append(testutil.Context(t), action.Wrapper{ID: int64(i + 1), Action: a}))
	}
	require.NoError(t, st.Close())
	return path
}

func TestTrace_MissingDatabaseFlag(t *testing.T) {
	_, err := execute(t, NewRootCommand(), "trace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTrace_NonExistentDatabase(t *testing.T) {
	_, err := execute(t, NewRootCommand(), "trace", "--db", "/nonexistent/path/node.db")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestTrace_UnknownKind(t *testing.T) {
	db := seedActions(t)
	_, err := execute(t, NewRootCommand(), "trace", "--db", db, "--kind", "launch_rockets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid --kind "launch_rockets"`)
}

func TestTrace_Empty(t *testing.T) {
	db := seedActions(t)
	out, err := execute(t, NewRootCommand(), "trace", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No actions found.\n", out)
}

func TestTrace_Text(t *testing.T) {
	db := seedActions(t,
		action.InitDNA{Address: "dna"},
		action.GetEntry{Address: "e1"},
		action.GetEntryTimeout{Address: "e1"},
	)

	out, err := execute(t, NewRootCommand(), "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, `[1] init_dna {"address":"dna"}`)
	assert.Contains(t, out, `[3] get_entry_timeout {"address":"e1"}`)
	assert.Contains(t, out, "3 actions, last seq 3")
}

func TestTrace_FilterAndPage(t *testing.T) {
	db := seedActions(t,
		action.InitDNA{Address: "dna"},
		action.GetEntry{Address: "e1"},
		action.GetEntry{Address: "e2"},
		action.GetEntry{Address: "e3"},
	)

	out, err := execute(t, NewRootCommand(), "trace", "--db", db, "--kind", "get_entry", "--after", "2", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Timeline, 2)
	assert.Equal(t, int64(3), resp.Data.Timeline[0].Seq)
	assert.Equal(t, 2, resp.Data.Stats.ByKind[action.KindGetEntry])
	assert.Equal(t, int64(4), resp.Data.Stats.LastSeq)

	decoded, err := action.Decode(resp.Data.Timeline[1].Kind, resp.Data.Timeline[1].Payload)
	require.NoError(t, err)
	assert.Equal(t, action.GetEntry{Address: ir.Address("e3")}, decoded)
}

func TestTrace_AfterRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "alice.db")
	cfgPath := writeConfig(t, dir, writeDNA(t, dir), dbPath)

	_, err := runUntilReady(t, []string{"--config", cfgPath}, nil)
	require.NoError(t, err)

	out, err := execute(t, NewRootCommand(), "trace", "--db", dbPath, "--kind", "commit")
	require.NoError(t, err)
	assert.Contains(t, out, "2 actions")
	assert.Contains(t, out, `"entry_type":"%agent_id"`)
}
