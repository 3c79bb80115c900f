package net

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"CollabBoard/internal/logging"
)

const (
	// Time allowed to write a message.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4 << 20

	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Participants join from share links on the local network.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// peer is one websocket connection of the hub.
type peer struct {
	hub    *Hub
	conn   *websocket.Conn
	addr   string
	logger logging.Logger
	send   chan []byte
}

func newPeer(h *Hub, conn *websocket.Conn) *peer {
	addr := conn.RemoteAddr().String()
	return &peer{
		hub:    h,
		conn:   conn,
		addr:   addr,
		logger: logging.WithPeer(h.logger, addr),
		send:   make(chan []byte, sendBuffer),
	}
}

// readPump pumps frames from the websocket to the hub.
func (p *peer) readPump() {
	defer func() {
		select {
		case p.hub.unregister <- p:
		case <-p.hub.done:
		}
		_ = p.conn.Close()
	}()

	p.conn.SetReadLimit(maxMessageSize)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				p.logger.Warnf("closed unexpectedly: %v", err)
			}
			return
		}

		select {
		case p.hub.inbound <- inbound{from: p, frame: frame}:
		case <-p.hub.done:
			return
		}
	}
}

// writePump pumps frames from the hub to the websocket.
func (p *peer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = p.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				p.logger.Warnf("write: %v", err)
				return
			}

		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				p.logger.Warnf("ping: %v", err)
				return
			}
		}
	}
}
