// Websocket live stream. Connected clients receive the full city state
// once, then frame snapshots at a fixed cadence plus news items as they
// land; they may send click/tool command envelopes back on the same
// connection.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/mini-city/internal/engine"
	"github.com/talgya/mini-city/internal/news"
)

// framePeriod is the live-stream snapshot cadence.
const framePeriod = 100 * time.Millisecond

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type client struct {
	srv  *Server
	conn *websocket.Conn
	send chan []byte
}

// hub fans snapshot frames out to every connected websocket client. A
// client that can't keep up is dropped rather than allowed to stall the
// broadcast.
type hub struct {
	clients    map[*client]bool
	count      atomic.Int32 // Mirrors len(clients) for readers off the hub goroutine
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
}

func newHub() *hub {
	return &hub{
		clients:    map[*client]bool{},
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
	}
}

func (h *hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.count.Store(int32(len(h.clients)))
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
				h.count.Store(int32(len(h.clients)))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.count.Store(int32(len(h.clients)))
		}
	}
}

// envelope is the bidirectional websocket message frame.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{srv: s, conn: conn, send: make(chan []byte, 32)}
	s.hub.register <- c
	go c.writer()
	go c.reader()

	c.sendFullState()
	slog.Debug("live client connected", "remote", r.RemoteAddr)
}

func (c *client) reader() {
	defer func() {
		c.srv.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var env envelope
		if json.Unmarshal(data, &env) != nil {
			continue
		}
		switch env.Type {
		case "click":
			var p clickRequest
			if json.Unmarshal(env.Payload, &p) != nil {
				continue
			}
			tool, ok := engine.ToolFromString(p.Tool)
			if !ok {
				continue
			}
			if err := c.srv.Eng.ApplyClick(p.X, p.Y, tool); err != nil {
				c.sendMessage("rejected", map[string]any{"message": err.Error()})
			}
		case "tool":
			var p toolRequest
			if json.Unmarshal(env.Payload, &p) != nil {
				continue
			}
			if tool, ok := engine.ToolFromString(p.Tool); ok {
				c.srv.Eng.SetTool(tool)
			}
		}
	}
}

func (c *client) writer() {
	for msg := range c.send {
		c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

// sendMessage queues one typed message for this client only.
func (c *client) sendMessage(kind string, payload any) {
	b, err := marshalEnvelope(kind, payload)
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

// sendFullState pushes the complete city to a freshly connected client:
// the grid and news feed change rarely, so they travel once here and
// again only on change.
func (c *client) sendFullState() {
	g := c.srv.Eng.Grid()
	c.sendMessage("state", map[string]any{
		"grid": map[string]any{
			"size":    g.Size(),
			"version": g.Version(),
			"rows":    g.Rows(),
		},
		"stats":       c.srv.Eng.Stats(),
		"time_of_day": c.srv.Eng.TimeOfDay(),
		"news":        c.srv.Eng.News(),
		"tool":        c.srv.Eng.Tool().String(),
	})
}

// pushFrames broadcasts frame snapshots while anyone is listening.
func (s *Server) pushFrames() {
	ticker := time.NewTicker(framePeriod)
	defer ticker.Stop()

	lastVersion := uint64(0)
	for range ticker.C {
		if s.hub.count.Load() == 0 {
			continue
		}

		g := s.Eng.Grid()
		frame := map[string]any{
			"stats":       s.Eng.Stats(),
			"time_of_day": s.Eng.TimeOfDay(),
			"vehicles":    s.Eng.VehicleTransforms(),
			"pedestrians": s.Eng.PedestrianTransforms(),
			"train":       s.Eng.TrainTransforms(),
		}
		if v := g.Version(); v != lastVersion {
			lastVersion = v
			frame["grid"] = map[string]any{
				"size":    g.Size(),
				"version": v,
				"rows":    g.Rows(),
			}
		}

		b, err := marshalEnvelope("frame", frame)
		if err != nil {
			continue
		}
		s.hub.broadcast <- b
	}
}

// BroadcastNews pushes one news item to every live client. Wired to the
// engine's OnNews callback by the runner.
func (s *Server) BroadcastNews(it news.Item) {
	b, err := marshalEnvelope("news", it)
	if err != nil {
		return
	}
	select {
	case s.hub.broadcast <- b:
	default:
	}
}

func marshalEnvelope(kind string, payload any) ([]byte, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: kind, Payload: p})
}
