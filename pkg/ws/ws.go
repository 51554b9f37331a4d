// Package ws fans server events out to connected dashboards over
// gorilla/websocket. The feed is one-way: inbound frames are read only to
// service pings and detect closes.
//
//	hub := ws.NewHub()
//	go hub.Run(ctx)
//	router.Get("/ws/orders", "ws.orders", func(w http.ResponseWriter, r *http.Request) {
//	    ws.Upgrade(w, r, hub)
//	})
//	hub.Publish(event)
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/afandal/storeadmin/pkg/logger"
)

const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
	pingEvery    = idleTimeout * 9 / 10
	readLimit    = 4 << 10
	sendBuffer   = 64
)

var errHubStopped = errors.New("ws: hub stopped")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// AllowOrigins restricts upgrades to browsers on the listed origins. "*"
// allows any; requests without an Origin header are always accepted.
func AllowOrigins(origins []string) {
	upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
	}
}

// subscriber is one receiver of hub messages. conn is nil for in-process
// subscribers such as the SSE feed.
type subscriber struct {
	hub  *Hub
	conn *websocket.Conn
	out  chan []byte
}

// listen consumes inbound frames until the peer goes away.
func (s *subscriber) listen() {
	defer func() {
		s.hub.leave <- s
		s.conn.Close()
	}()

	s.conn.SetReadLimit(readLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})
	for {
		_, _, err := s.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			logger.Warn("feed: connection lost", "error", err)
		}
		return
	}
}

// deliver writes queued messages and keepalive pings.
func (s *subscriber) deliver() {
	ping := time.NewTicker(pingEvery)
	defer func() {
		ping.Stop()
		s.conn.Close()
	}()

	for {
		var err error
		select {
		case msg, open := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !open {
				_ = s.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			err = s.conn.WriteMessage(websocket.TextMessage, msg)
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err = s.conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}

// Hub owns the subscriber set. All mutation happens on the Run goroutine.
type Hub struct {
	members map[*subscriber]struct{}
	size    atomic.Int64

	messages chan []byte
	join     chan *subscriber
	leave    chan *subscriber
	done     chan struct{}
}

// NewHub creates a Hub. Call Run in a goroutine at startup.
func NewHub() *Hub {
	return &Hub{
		members:  map[*subscriber]struct{}{},
		messages: make(chan []byte, 256),
		join:     make(chan *subscriber),
		leave:    make(chan *subscriber),
		done:     make(chan struct{}),
	}
}

// Run is the hub event loop; it closes every subscriber when ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for s := range h.members {
				h.remove(s)
			}
			return

		case s := <-h.join:
			h.members[s] = struct{}{}
			h.size.Store(int64(len(h.members)))
			logger.Info("feed: subscriber joined", "subscribers", len(h.members))

		case s := <-h.leave:
			if _, ok := h.members[s]; ok {
				h.remove(s)
				logger.Info("feed: subscriber left", "subscribers", len(h.members))
			}

		case msg := <-h.messages:
			for s := range h.members {
				select {
				case s.out <- msg:
				default:
					// Too slow to keep up; cut it loose.
					h.remove(s)
				}
			}
		}
	}
}

func (h *Hub) remove(s *subscriber) {
	delete(h.members, s)
	close(s.out)
	h.size.Store(int64(len(h.members)))
}

// Publish marshals v as JSON and queues it for every subscriber. A full
// queue drops the message.
func (h *Hub) Publish(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case h.messages <- raw:
	default:
		logger.Warn("feed: queue full, message dropped")
	}
	return nil
}

// Subscribe registers an in-process subscriber and returns its message
// channel. The channel is closed once ctx ends or the hub stops.
func (h *Hub) Subscribe(ctx context.Context) (<-chan []byte, error) {
	s := &subscriber{hub: h, out: make(chan []byte, sendBuffer)}
	select {
	case h.join <- s:
	case <-h.done:
		return nil, errHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	go func() {
		select {
		case <-ctx.Done():
			select {
			case h.leave <- s:
			case <-h.done:
			}
		case <-h.done:
		}
	}()
	return s.out, nil
}

// ClientCount returns the number of current subscribers.
func (h *Hub) ClientCount() int { return int(h.size.Load()) }

// Upgrade upgrades the request and subscribes the connection to hub.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("feed: upgrade failed", "error", err)
		return
	}
	s := &subscriber{hub: hub, conn: conn, out: make(chan []byte, sendBuffer)}
	select {
	case hub.join <- s:
	case <-hub.done:
		conn.Close()
		return
	}
	go s.deliver()
	go s.listen()
}
