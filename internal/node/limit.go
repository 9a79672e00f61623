package node

import (
	"sync"

	"golang.org/x/time/rate"
)

// peerLimiter throttles inbound requests per requesting agent. A zero
// limit lets everything through.
type peerLimiter struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	peers map[string]*rate.Limiter
}

func newPeerLimiter(perSecond float64, burst int) *peerLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &peerLimiter{limit: limit, burst: burst, peers: map[string]*rate.Limiter{}}
}

func (l *peerLimiter) allow(agentID string) bool {
	if l.limit == rate.Inf {
		return true
	}
	l.mu.Lock()
	lim, ok := l.peers[agentID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.peers[agentID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
