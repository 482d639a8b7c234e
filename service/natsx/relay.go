package natsx

import (
	"encoding/json"
	"time"

	"github.com/anirbanjana883/ZYRA-backend/logger"

	"github.com/nats-io/nats.go"
)

const defaultSubject = "zyra.broadcast"

// Relay fans broadcast frames out across gateway nodes over core NATS.
// Every node publishes its local broadcasts and replays everyone else's;
// the node id in the envelope suppresses the loop back to the origin.
// Best effort, like the local broadcast it extends.
type Relay struct {
	nc      *nats.Conn
	subject string
	nodeID  string
	sub     *nats.Subscription
}

type envelope struct {
	Node  string          `json:"node"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Config struct {
	URL     string
	Subject string
	NodeID  string
}

func NewRelay(cfg Config) (*Relay, error) {
	if cfg.Subject == "" {
		cfg.Subject = defaultSubject
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name("zyra-gateway-"+cfg.NodeID),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warnf("[relay] nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Infof("[relay] nats reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Relay{nc: nc, subject: cfg.Subject, nodeID: cfg.NodeID}, nil
}

// Publish sends one broadcast frame to the other nodes.
func (r *Relay) Publish(event string, data json.RawMessage) error {
	raw, err := json.Marshal(envelope{Node: r.nodeID, Event: event, Data: data})
	if err != nil {
		return err
	}
	return r.nc.Publish(r.subject, raw)
}

// Subscribe starts replaying remote broadcasts through apply. Frames
// published by this node come back on the subject and are dropped here.
func (r *Relay) Subscribe(apply func(event string, data json.RawMessage)) error {
	sub, err := r.nc.Subscribe(r.subject, func(m *nats.Msg) {
		var env envelope
		if err := json.Unmarshal(m.Data, &env); err != nil {
			logger.Warnf("[relay] bad envelope: %v", err)
			return
		}
		if env.Node == r.nodeID {
			return
		}
		apply(env.Event, env.Data)
	})
	if err != nil {
		return err
	}
	r.sub = sub
	return nil
}

func (r *Relay) Close() {
	if r.sub != nil {
		_ = r.sub.Unsubscribe()
	}
	r.nc.Close()
}
