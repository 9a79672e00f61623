package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/agent"
	"github.com/roach88/nucleus/internal/engine"
	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/runtime"
	"github.com/roach88/nucleus/internal/testutil"
)

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAdminHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	engine.NewMetrics(reg)

	rc := testutil.NewContext(t, "alice")
	testutil.InitNetwork(t, rc)
	ctx := testutil.Context(t)
	require.NoError(t, agent.Genesis(ctx, rc))
	header, err := agent.Append(ctx, rc, ir.NewEntry("post", "status"))
	require.NoError(t, err)

	srv := httptest.NewServer(adminHandler(reg, func() *runtime.Context { return rc }))
	defer srv.Close()

	code, body := get(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "nucleus_action_queue_depth")

	code, body = get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)

	code, body = get(t, srv, "/status")
	require.Equal(t, http.StatusOK, code)
	var status NodeStatus
	require.NoError(t, json.Unmarshal([]byte(body), &status))
	assert.Equal(t, "alice", status.AgentID)
	assert.Equal(t, "testdna", status.DNA)
	assert.Equal(t, header.Address(), status.ChainTop)
	assert.Equal(t, int64(3), status.ChainSeq)
	assert.Equal(t, rc.State().Seq(), status.Seq)
}

func TestAdminHandler_NotStarted(t *testing.T) {
	srv := httptest.NewServer(adminHandler(prometheus.NewRegistry(), func() *runtime.Context { return nil }))
	defer srv.Close()

	code, _ := get(t, srv, "/status")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
