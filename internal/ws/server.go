package ws

import (
	"context"
	"encoding/json"
	"expvar"
	"net/http"
	"sync"
	"time"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/events"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	sendBuffer = 32
	writeWait  = 5 * time.Second
)

var (
	metricClientsActive   = expvar.NewInt("ws_clients_active")
	metricMessagesDropped = expvar.NewInt("ws_messages_dropped_total")
)

type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	player string
}

// Server fans committed hunt results out to websocket subscribers. It
// satisfies events.Publisher.
type Server struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*Client]bool
	closed   bool
}

func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  map[*Client]bool{},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, sendBuffer)}

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}
		if base.Type != "subscribe" {
			continue
		}
		var sub SubscribeMessage
		if err := json.Unmarshal(msg, &sub); err != nil {
			continue
		}
		s.subscribe(c, sub)
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			_ = c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) subscribe(c *Client, sub SubscribeMessage) {
	filter := ""
	if sub.Player != "" {
		addr, err := chain.ParseAddress(sub.Player)
		if err != nil {
			s.sendSubscribeResult(c, false, "invalid_address", "")
			return
		}
		filter = addr.String()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if !s.clients[c] {
		metricClientsActive.Add(1)
	}
	c.player = filter
	s.clients[c] = true
	s.mu.Unlock()

	s.sendSubscribeResult(c, true, "", filter)
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[c] {
		delete(s.clients, c)
		metricClientsActive.Add(-1)
	}
	safeClose(c.send)
}

func (s *Server) sendSubscribeResult(c *Client, ok bool, errCode, player string) {
	b, _ := json.Marshal(SubscribeResult{Type: "subscribe_result", ProtocolVersion: ProtocolVersion, Ok: ok, Error: errCode, Player: player})
	safeSend(c.send, b)
}

// PublishHunt delivers ev to every matching subscriber. Slow clients drop
// messages instead of blocking the relayer.
func (s *Server) PublishHunt(_ context.Context, ev events.HuntEvent) error {
	b, err := json.Marshal(HuntResult{Type: "hunt_result", ProtocolVersion: ProtocolVersion, HuntEvent: ev})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if c.player != "" && c.player != ev.Player {
			continue
		}
		if !safeSend(c.send, b) {
			metricMessagesDropped.Add(1)
		}
	}
	return nil
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for c := range s.clients {
		delete(s.clients, c)
		metricClientsActive.Add(-1)
		safeClose(c.send)
	}
	log.Debug().Msg("hunt feed closed")
	return nil
}

func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func safeClose(ch chan []byte) {
	defer func() { _ = recover() }()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) (sent bool) {
	defer func() {
		if recover() != nil {
			sent = false
		}
	}()
	select {
	case ch <- msg:
		return true
	default:
		return false
	}
}
