package chat

import (
	"encoding/json"

	"github.com/anirbanjana883/ZYRA-backend/logger"
)

// BroadcastRelay forwards broadcast frames to the other gateway nodes. The
// NATS relay implements it; a nil relay means single-node operation.
type BroadcastRelay interface {
	Publish(event string, data json.RawMessage) error
}

// Router delivers named events to users. Delivery is at-most-once and
// fire-and-forget: a push either lands on a live handle's queue or it
// doesn't, and the caller learns only which of the two happened. There is
// no retry and no acknowledgement at this layer.
type Router struct {
	reg    *Registry
	fanout *Fanout
	relay  BroadcastRelay
}

func NewRouter(reg *Registry, relay BroadcastRelay) *Router {
	// One worker: broadcasts must leave in submission order so presence
	// snapshots reflect attach/detach in the order they happened.
	return &Router{
		reg:    reg,
		fanout: NewFanout(1, 1024),
		relay:  relay,
	}
}

// DeliverToUser pushes one event to userID's connection if present.
// Returns false when the user is absent or the handle is mid-teardown;
// what absence means is the caller's business (the delivery tracker leaves
// the message at "sent", the notifier relies on the offline flush).
func (r *Router) DeliverToUser(userID, event string, data any) bool {
	c, ok := r.reg.Lookup(userID)
	if !ok {
		return false
	}
	payload, err := MarshalFrame(event, data)
	if err != nil {
		logger.Errorf("marshal %s frame: %v", event, err)
		return false
	}
	return c.Push(payload)
}

// Broadcast pushes one event to every local connection and hands it to the
// relay so other nodes do the same. Best effort on both legs.
func (r *Router) Broadcast(event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		logger.Errorf("marshal %s broadcast: %v", event, err)
		return
	}
	r.broadcastLocal(event, raw)
	if r.relay != nil {
		if err := r.relay.Publish(event, raw); err != nil {
			logger.Warnf("relay publish %s: %v", event, err)
		}
	}
}

// ApplyRemote replays a broadcast that originated on another node onto the
// local connections only. Called by the relay consumer.
func (r *Router) ApplyRemote(event string, data json.RawMessage) {
	r.broadcastLocal(event, data)
}

func (r *Router) broadcastLocal(event string, raw json.RawMessage) {
	payload, err := json.Marshal(Frame{Event: event, Data: raw})
	if err != nil {
		logger.Errorf("marshal %s frame: %v", event, err)
		return
	}
	r.fanout.Broadcast(r.reg.Clients(), payload)
}

// ===== fan-out pool =====

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout spreads a payload over many connections from a small worker pool,
// keeping broadcast cost off the caller's goroutine.
type Fanout struct {
	jobs chan fanoutJob
}

func NewFanout(workers, queue int) *Fanout {
	f := &Fanout{jobs: make(chan fanoutJob, queue)}
	for i := 0; i < workers; i++ {
		go func() {
			for job := range f.jobs {
				for _, c := range job.conns {
					// Slow or closing clients are skipped, not waited on.
					c.Push(job.payload)
				}
			}
		}()
	}
	return f
}

func (f *Fanout) Broadcast(conns []*Client, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	f.jobs <- fanoutJob{conns: conns, payload: payload}
}
