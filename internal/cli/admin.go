package cli

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/runtime"
)

// NodeStatus is served on /status.
type NodeStatus struct {
	AgentID    string     `json:"agent_id"`
	DNA        string     `json:"dna"`
	DNAAddress ir.Address `json:"dna_address"`
	Seq        int64      `json:"seq"`
	ChainTop   ir.Address `json:"chain_top,omitempty"`
	ChainSeq   int64      `json:"chain_seq"`
}

func nodeStatus(rc *runtime.Context) NodeStatus {
	s := rc.State()
	status := NodeStatus{
		AgentID:    rc.AgentID(),
		DNA:        rc.DNA().Name,
		DNAAddress: rc.DNA().Address(),
		Seq:        s.Seq(),
		ChainTop:   s.Agent().TopAddress(),
	}
	if top, ok := s.Agent().Top(); ok {
		status.ChainSeq = top.Seq
	}
	return status
}

// adminHandler serves metrics, liveness and the node's status. rc may be
// nil before the node is built; /status then answers 503.
func adminHandler(reg *prometheus.Registry, rc func() *runtime.Context) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		ctx := rc()
		if ctx == nil {
			http.Error(w, "node not started", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(nodeStatus(ctx))
	})
	return r
}
