package net

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CollabBoard/internal/draw"
	"CollabBoard/internal/logging"
)

const waitFor = 2 * time.Second

type hubFixture struct {
	hub     *Hub
	metrics *Metrics
	url     string
}

func startHub(t *testing.T, opts ...HubOption) *hubFixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	m := NewMetrics()
	h := NewHub(logging.Nop(), append([]HubOption{WithMetrics(m)}, opts...)...)
	done := make(chan struct{})
	go func() {
		_ = h.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close()
	})

	return &hubFixture{
		hub:     h,
		metrics: m,
		url:     "ws" + strings.TrimPrefix(srv.URL, "http"),
	}
}

// connect dials the hub and waits for the background sync every
// participant receives first.
func (f *hubFixture) connect(t *testing.T) (*Client, <-chan draw.Transport) {
	t.Helper()

	c, err := Dial(context.Background(), f.url, logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan draw.Transport, 16)
	go func() { _ = c.Run(ctx, func(tr draw.Transport) { received <- tr }) }()
	t.Cleanup(func() {
		cancel()
		_ = c.Close()
	})

	tr := next(t, received)
	require.Equal(t, draw.ActionBackground, tr.Action)
	return c, received
}

func next(t *testing.T, ch <-chan draw.Transport) draw.Transport {
	t.Helper()
	select {
	case tr := <-ch:
		return tr
	case <-time.After(waitFor):
		t.Fatal("no transport received")
		return draw.Transport{}
	}
}

func silent(t *testing.T, ch <-chan draw.Transport) {
	t.Helper()
	select {
	case tr := <-ch:
		t.Fatalf("unexpected %s transport", tr.Action)
	case <-time.After(100 * time.Millisecond):
	}
}

func line(id string) draw.Event {
	return draw.New(&draw.FixedIDs{IDs: []string{id}}, "alice", draw.TypeLine,
		[]float64{0, 0, 10, 10}, draw.DefaultOptions())
}

func TestHubRelay(t *testing.T) {
	f := startHub(t)
	alice, fromAlice := f.connect(t)
	_, fromBob := f.connect(t)

	require.NoError(t, alice.Send(draw.AddTransport([]draw.Event{line("a")})))

	tr := next(t, fromBob)
	assert.Equal(t, draw.ActionAdd, tr.Action)
	require.Len(t, tr.Events, 1)
	assert.Equal(t, "a", tr.Events[0].ID)
	silent(t, fromAlice)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.peers))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.relayed.WithLabelValues("add")))
}

func TestHubOrdering(t *testing.T) {
	f := startHub(t)
	alice, _ := f.connect(t)
	_, fromBob := f.connect(t)

	require.NoError(t, alice.Send(draw.AddTransport([]draw.Event{line("a")})))
	require.NoError(t, alice.Send(draw.TranslateTransport([]string{"a"}, 5, 5)))
	require.NoError(t, alice.Send(draw.RemoveTransport([]string{"a"})))

	assert.Equal(t, draw.ActionAdd, next(t, fromBob).Action)
	assert.Equal(t, draw.ActionTranslate, next(t, fromBob).Action)
	assert.Equal(t, draw.ActionRemove, next(t, fromBob).Action)
}

func TestHubLateJoiner(t *testing.T) {
	f := startHub(t)
	alice, _ := f.connect(t)
	_, fromBob := f.connect(t)

	require.NoError(t, alice.Send(draw.AddTransport([]draw.Event{line("a"), line("b")})))
	require.NoError(t, alice.Send(draw.TranslateTransport([]string{"a"}, 5, 5)))
	require.NoError(t, alice.Send(draw.RemoveTransport([]string{"b"})))
	for range 3 {
		next(t, fromBob)
	}

	_, fromCarol := f.connect(t)
	tr := next(t, fromCarol)
	assert.Equal(t, draw.ActionAdd, tr.Action)
	require.Len(t, tr.Events, 1)
	assert.Equal(t, "a", tr.Events[0].ID)
	assert.Equal(t, []float64{5, 5, 15, 15}, tr.Events[0].Data)

	events, err := f.hub.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestHubDropsMalformed(t *testing.T) {
	f := startHub(t)
	_, fromBob := f.connect(t)

	raw, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	require.NoError(t, err)
	defer func() { _ = raw.Close() }()
	_, _, err = raw.ReadMessage()
	require.NoError(t, err)

	require.NoError(t, raw.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, raw.WriteMessage(websocket.TextMessage, []byte(`{"action":"explode"}`)))
	require.NoError(t, raw.WriteMessage(websocket.TextMessage,
		[]byte(`{"action":"add","events":[{"id":"","type":"line","data":[0,0,1,1]},`+
			`{"id":"ok","type":"line","options":{"lineWidth":1,"color":"0, 0, 0","opacity":1},"data":[0,0,1,1]}]}`)))

	tr := next(t, fromBob)
	require.Len(t, tr.Events, 1)
	assert.Equal(t, "ok", tr.Events[0].ID)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.dropped.WithLabelValues("decode")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.dropped.WithLabelValues("event")))
}

func TestHubPeerLeaves(t *testing.T) {
	f := startHub(t)
	alice, _ := f.connect(t)
	_, fromBob := f.connect(t)

	require.NoError(t, alice.Close())
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(f.metrics.peers) == 1
	}, waitFor, 10*time.Millisecond)
	assert.ErrorIs(t, alice.Send(draw.RemoveTransport([]string{"a"})), ErrClientClosed)
	silent(t, fromBob)
}

type memoryFanout struct {
	mu        sync.Mutex
	published [][]byte
	remote    chan []byte
}

func (m *memoryFanout) Publish(_ context.Context, frame []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, frame)
	return nil
}

func (m *memoryFanout) Subscribe(ctx context.Context, deliver func([]byte)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-m.remote:
			deliver(frame)
		}
	}
}

func (m *memoryFanout) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

func TestHubFanout(t *testing.T) {
	fan := &memoryFanout{remote: make(chan []byte)}
	f := startHub(t, WithFanout(fan))
	alice, fromAlice := f.connect(t)

	require.NoError(t, alice.Send(draw.AddTransport([]draw.Event{line("a")})))
	assert.Eventually(t, func() bool { return fan.count() == 1 }, waitFor, 10*time.Millisecond)

	frame, err := draw.Encode(draw.RemoveTransport([]string{"a"}))
	require.NoError(t, err)
	fan.remote <- frame

	tr := next(t, fromAlice)
	assert.Equal(t, draw.ActionRemove, tr.Action)
	assert.Equal(t, 1, fan.count())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.fanedOut))
}

func TestHubStopped(t *testing.T) {
	h := NewHub(logging.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.Run(ctx), context.Canceled)

	_, err := h.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrHubStopped)
}
