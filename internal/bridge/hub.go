package bridge

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mirrorhost/scrcpy-engine/internal/session"
)

const (
	writeWait  = 5 * time.Second
	clientBuf  = 64
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // local tool, no browser CORS concerns
}

// wireEvent is the JSON shape published to websocket clients. Packet
// payloads (video/audio bytes) are deliberately omitted: this channel is
// for lifecycle and clipboard notifications, not media delivery (spec §1
// Non-goals — delivery to a browser is out of scope).
type wireEvent struct {
	Kind      string `json:"kind"`
	Serial    string `json:"serial"`
	Clipboard string `json:"clipboard,omitempty"`
	Error     string `json:"error,omitempty"`
}

func eventKindName(k session.EventKind) string {
	switch k {
	case session.EventConnected:
		return "connected"
	case session.EventMetadata:
		return "metadata"
	case session.EventVideo:
		return "video"
	case session.EventAudio:
		return "audio"
	case session.EventClipboard:
		return "clipboard"
	case session.EventDisconnected:
		return "disconnected"
	case session.EventError:
		return "error"
	default:
		return "unknown"
	}
}

// hub fans a single Supervisor event stream out to any number of connected
// websocket clients. When a slow client's backlog is full, the new event is
// dropped for that client rather than blocking the rest (same
// non-blocking-publish discipline as session.Supervisor).
type hub struct {
	mu      sync.Mutex
	clients map[chan wireEvent]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[chan wireEvent]struct{})}
}

func (h *hub) run(events <-chan session.Event) {
	for ev := range events {
		// Video/audio packets are high-frequency and not part of this
		// channel's contract; skip them before touching any client.
		if ev.Kind == session.EventVideo || ev.Kind == session.EventAudio {
			continue
		}
		w := wireEvent{Kind: eventKindName(ev.Kind), Serial: ev.Serial}
		if ev.Kind == session.EventClipboard {
			w.Clipboard = ev.Clipboard
		}
		if ev.Kind == session.EventError && ev.Err != nil {
			w.Error = ev.Err.Error()
		}
		h.broadcast(w)
	}
}

func (h *hub) broadcast(w wireEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- w:
		default:
			log.Debugf("websocket client backlog full, dropping event")
		}
	}
}

func (h *hub) register() chan wireEvent {
	ch := make(chan wireEvent, clientBuf)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unregister(ch chan wireEvent) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (s *Server) handleEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ch := s.hub.register()
	defer s.hub.unregister(ch)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	// Drain client-initiated reads on a goroutine purely to notice the
	// connection closing; this endpoint is publish-only.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case w, ok := <-ch:
			if !ok {
				return
			}
			body, err := json.Marshal(w)
			if err != nil {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
				return
			}
		}
	}
}
