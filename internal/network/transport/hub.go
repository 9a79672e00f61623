package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Hub is an in-process network. Nodes join with their agent id and get an
// Endpoint to send from.
//
// Routing:
//   - GetDhtData goes to every other joined node; only holders answer
//   - every other message goes to the agent it is addressed to
//
// Delivery is asynchronous: each message is handed to its handler on a
// fresh goroutine, so handlers may block on their own engine.
type Hub struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	wg       sync.WaitGroup
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{handlers: make(map[string]Handler)}
}

// Join registers handler for agentID and returns the node's endpoint.
// Joining again replaces the previous handler.
func (h *Hub) Join(agentID string, handler Handler) *Endpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[agentID] = handler
	return &Endpoint{hub: h, agentID: agentID}
}

// Endpoint returns a send-only endpoint for agentID. The agent receives
// messages only once it has joined.
func (h *Hub) Endpoint(agentID string) *Endpoint {
	return &Endpoint{hub: h, agentID: agentID}
}

// Leave unregisters agentID. Messages already in flight are still delivered.
func (h *Hub) Leave(agentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.handlers, agentID)
}

// Peers returns the joined agent ids in sorted order.
func (h *Hub) Peers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.handlers))
	for id := range h.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Wait blocks until every delivery started so far has returned.
func (h *Hub) Wait() {
	h.wg.Wait()
}

func (h *Hub) route(ctx context.Context, from string, msg Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var to []string
	switch m := msg.(type) {
	case GetDhtData:
		for id := range h.handlers {
			if id != from {
				to = append(to, id)
			}
		}
		if len(to) == 0 {
			return fmt.Errorf("no peers to ask for %s", m.Address)
		}
		sort.Strings(to)
	case DhtData:
		to = []string{m.ToAgentID}
	case GetValidationPackageData:
		to = []string{m.ToAgentID}
	case ValidationPackageData:
		to = []string{m.ToAgentID}
	default:
		return fmt.Errorf("unsupported message %T", msg)
	}

	for _, id := range to {
		handler, ok := h.handlers[id]
		if !ok {
			return fmt.Errorf("unknown agent %q", id)
		}
		h.deliver(ctx, id, handler, msg)
	}
	return nil
}

func (h *Hub) deliver(ctx context.Context, to string, handler Handler, msg Message) {
	slog.Debug("hub delivering message", "to", to, "type", fmt.Sprintf("%T", msg))
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		handler(context.WithoutCancel(ctx), msg)
	}()
}

// Endpoint is one node's view of a Hub. It implements Transport.
type Endpoint struct {
	hub     *Hub
	agentID string
}

// AgentID returns the agent the endpoint sends as.
func (e *Endpoint) AgentID() string {
	return e.agentID
}

// Send routes msg through the hub. It fails if no recipient is joined.
func (e *Endpoint) Send(ctx context.Context, msg Message) error {
	return e.hub.route(ctx, e.agentID, msg)
}

// Close leaves the hub.
func (e *Endpoint) Close() {
	e.hub.Leave(e.agentID)
}
