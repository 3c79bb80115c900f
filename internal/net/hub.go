// Package net relays draw transports between the participants of a
// session and lets participants find hosts on the local network.
package net

import (
	"context"
	"errors"
	"net/http"

	"CollabBoard/internal/draw"
	"CollabBoard/internal/logging"
	"CollabBoard/internal/state"
)

// hubOwner stamps the events the hub creates itself. It never matches a
// participant, so replaying their events leaves the hub redo stack alone.
const hubOwner draw.Owner = "collabboard-hub"

// ErrHubStopped is returned by queries made after Run returned.
var ErrHubStopped = errors.New("hub stopped")

// Fanout shares frames between hosts serving the same session.
type Fanout interface {
	Publish(ctx context.Context, frame []byte) error
	// Subscribe delivers frames published by other hosts until ctx is done.
	Subscribe(ctx context.Context, deliver func(frame []byte)) error
}

type inbound struct {
	from  *peer
	frame []byte
}

// Hub relays transports between connected peers. It keeps a replica of
// the document so that late joiners start from the current state.
type Hub struct {
	logger  logging.Logger
	metrics *Metrics
	fanout  Fanout

	replica *state.Whiteboard
	peers   map[*peer]struct{}

	register   chan *peer
	unregister chan *peer
	inbound    chan inbound
	snapshots  chan chan []draw.Event
	done       chan struct{}
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithMetrics records relay metrics.
func WithMetrics(m *Metrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// WithFanout shares the session with other hosts.
func WithFanout(f Fanout) HubOption {
	return func(h *Hub) { h.fanout = f }
}

// NewHub creates a hub. Call Run to start relaying.
func NewHub(logger logging.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	h := &Hub{
		logger:     logger,
		replica:    state.NewWhiteboard(hubOwner, nil, logger.Named("replica")),
		peers:      make(map[*peer]struct{}),
		register:   make(chan *peer),
		unregister: make(chan *peer),
		inbound:    make(chan inbound, 256),
		snapshots:  make(chan chan []draw.Event),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run relays frames until ctx is done. Peers are disconnected on return.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	h.logger.Info("hub started")

	remote := make(chan []byte, 256)
	if h.fanout != nil {
		go func() {
			err := h.fanout.Subscribe(ctx, func(frame []byte) {
				select {
				case remote <- frame:
				case <-ctx.Done():
				}
			})
			if err != nil && ctx.Err() == nil {
				h.logger.Errorf("fanout subscription ended: %v", err)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			for p := range h.peers {
				h.drop(p)
			}
			h.logger.Info("hub stopped")
			return ctx.Err()

		case p := <-h.register:
			h.join(p)

		case p := <-h.unregister:
			if _, ok := h.peers[p]; ok {
				h.drop(p)
				p.logger.Infof("left, %d connected", len(h.peers))
			}

		case in := <-h.inbound:
			if frame, ok := h.apply(in.frame); ok {
				h.relay(in.from, frame)
				h.publish(ctx, frame)
			}

		case reply := <-h.snapshots:
			reply <- h.replica.History()

		case frame := <-remote:
			h.metrics.addFanout()
			if frame, ok := h.apply(frame); ok {
				h.relay(nil, frame)
			}
		}
	}
}

// ServeHTTP upgrades the request to a websocket peer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("upgrade %s: %v", r.RemoteAddr, err)
		return
	}

	p := newPeer(h, conn)
	select {
	case h.register <- p:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go p.writePump()
	go p.readPump()
}

// Snapshot returns the visible events of the session.
func (h *Hub) Snapshot(ctx context.Context) ([]draw.Event, error) {
	reply := make(chan []draw.Event, 1)
	select {
	case h.snapshots <- reply:
	case <-h.done:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return <-reply, nil
}

// join sends the current document to p then starts relaying to it.
func (h *Hub) join(p *peer) {
	for _, t := range h.replica.SyncTransports() {
		frame, err := draw.Encode(t)
		if err != nil {
			h.logger.Errorf("encode sync %s: %v", t.Action, err)
			continue
		}
		p.send <- frame
	}
	h.peers[p] = struct{}{}
	h.metrics.setPeers(len(h.peers))
	p.logger.Infof("joined, %d connected", len(h.peers))
}

func (h *Hub) drop(p *peer) {
	delete(h.peers, p)
	close(p.send)
	h.metrics.setPeers(len(h.peers))
}

// apply validates a frame and mirrors it on the replica. Invalid events
// of an add are stripped; the returned frame is what gets relayed.
func (h *Hub) apply(frame []byte) ([]byte, bool) {
	t, err := draw.Decode(frame)
	if err != nil {
		h.logger.Warnf("drop frame: %v", err)
		h.metrics.addDropped("decode")
		return nil, false
	}
	if t.Action == draw.ActionAdd {
		events, errs := t.ValidEvents()
		if len(errs) > 0 {
			h.metrics.addDropped("event")
			if len(events) == 0 {
				h.logger.Warnf("drop add: no valid event")
				return nil, false
			}
			t.Events = events
			if frame, err = draw.Encode(t); err != nil {
				h.logger.Errorf("encode add: %v", err)
				return nil, false
			}
		}
	}

	if err := h.replica.Receive(t); err != nil {
		h.logger.Debugf("replica: %v", err)
	}
	h.metrics.addRelayed(string(t.Action))
	return frame, true
}

// relay sends frame to every peer except from, in arrival order. Peers
// that cannot keep up are disconnected.
func (h *Hub) relay(from *peer, frame []byte) {
	for p := range h.peers {
		if p == from {
			continue
		}
		select {
		case p.send <- frame:
		default:
			p.logger.Warn("too slow, disconnecting")
			h.metrics.addDropped("slow_peer")
			h.drop(p)
		}
	}
}

func (h *Hub) publish(ctx context.Context, frame []byte) {
	if h.fanout == nil {
		return
	}
	if err := h.fanout.Publish(ctx, frame); err != nil {
		h.logger.Errorf("fanout publish: %v", err)
	}
}
