/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package serve

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bennypowers.dev/cembundle/internal/search"
)

// reloadScript is injected into the HTML wrapper handed back by
// handlePreview; it opens the reload socket and reloads the page once the
// server pushes a {"type":"reload"} frame to this connection's topic.
const reloadScript = `<script>
(() => {
  const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/__cembundle_reload__%s");
  ws.onmessage = (ev) => {
    const msg = JSON.parse(ev.data);
    if (msg.type === "reload") location.reload();
  };
})();
</script>`

const previewPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>cembundle preview</title></head>
<body>
%s
<script type="module" src="/"></script>
</body>
</html>`

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     isLocalOrigin,
}

// isLocalOrigin allows same-origin and localhost WebSocket connections,
// rejecting a cross-origin page from subscribing to reload events.
func isLocalOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := originURL.Hostname()
	requestHost := r.Host
	if i := strings.IndexByte(requestHost, ':'); i != -1 {
		requestHost = requestHost[:i]
	}
	if host == requestHost || host == "localhost" || host == "127.0.0.1" {
		return true
	}
	return strings.HasSuffix(host, ".localhost")
}

// wsConn pairs a reload-socket connection with the write mutex gorilla's
// websocket requires for concurrent writers, and the topic it subscribed
// to (derived from the ?module= query parameter via search.Slugify, or
// "" for a connection that wants every reload regardless of module).
type wsConn struct {
	mu    sync.Mutex
	topic string
}

// Server serves the most recently built bundle over HTTP and notifies
// connected browsers to reload whenever Publish is called with a new
// bundle.
type Server struct {
	mu          sync.RWMutex
	bundle      []byte
	conns       map[*websocket.Conn]*wsConn
	connsMu     sync.RWMutex
	logger      Logger
	reloadDelay time.Duration
}

// NewServer creates a Server with no bundle published yet.
func NewServer(logger Logger) *Server {
	return &Server{
		conns:  make(map[*websocket.Conn]*wsConn),
		logger: logger,
	}
}

// SetReloadDelay configures how long Publish waits before notifying
// browsers, giving a rebuild that lands in several quick steps (shake,
// bundle, minify) a moment to settle before triggering a page reload.
func (s *Server) SetReloadDelay(d time.Duration) {
	s.mu.Lock()
	s.reloadDelay = d
	s.mu.Unlock()
}

// Publish updates the bundle served at "/" and notifies every connected
// browser to reload.
func (s *Server) Publish(bundle []byte) {
	s.mu.Lock()
	s.bundle = bundle
	delay := s.reloadDelay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	s.broadcast("", []byte(`{"type":"reload"}`))
}

// PublishModule notifies only the browsers previewing moduleID, computing
// the topic the same way handleReloadSocket does so the two always agree.
func (s *Server) PublishModule(moduleID string, bundle []byte) {
	s.mu.Lock()
	s.bundle = bundle
	delay := s.reloadDelay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	s.broadcast(search.Slugify(moduleID), []byte(`{"type":"reload"}`))
}

// ConnectionCount reports how many browsers are currently connected for
// live reload.
func (s *Server) ConnectionCount() int {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	return len(s.conns)
}

// broadcast sends message to every connection subscribed to topic. A
// connection with an empty topic (no ?module= query parameter given)
// always receives every broadcast, regardless of topic; a connection
// with a specific topic only receives broadcasts for that exact topic or
// the untargeted ("") ones Publish sends.
func (s *Server) broadcast(topic string, message []byte) {
	s.connsMu.RLock()
	type entry struct {
		conn *websocket.Conn
		ws   *wsConn
	}
	snapshot := make([]entry, 0, len(s.conns))
	for c, ws := range s.conns {
		if topic == "" || ws.topic == "" || ws.topic == topic {
			snapshot = append(snapshot, entry{c, ws})
		}
	}
	s.connsMu.RUnlock()

	var dead []*websocket.Conn
	for _, e := range snapshot {
		e.ws.mu.Lock()
		err := e.conn.WriteMessage(websocket.TextMessage, message)
		e.ws.mu.Unlock()
		if err != nil {
			dead = append(dead, e.conn)
		}
	}

	if len(dead) > 0 {
		s.connsMu.Lock()
		for _, c := range dead {
			delete(s.conns, c)
			_ = c.Close()
		}
		s.connsMu.Unlock()
	}
}

// Handler returns the http.Handler serving the bundle and the reload
// websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/__cembundle_reload__", s.handleReloadSocket)
	mux.HandleFunc("/__cembundle_preview__", s.handlePreview)
	mux.HandleFunc("/", s.handleBundle)
	return mux
}

// handlePreview serves an HTML wrapper around the bundle that injects
// reloadScript, so opening the bundle directly in a browser (rather than
// importing it from a page of the user's own) still gets live reload. An
// optional ?module= query parameter scopes the reload socket to that
// module's topic via search.Slugify, matching PublishModule.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	query := ""
	if moduleID := r.URL.Query().Get("module"); moduleID != "" {
		query = "?module=" + url.QueryEscape(moduleID)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprintf(w, previewPage, fmt.Sprintf(reloadScript, query))
}

func (s *Server) handleBundle(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	bundle := s.bundle
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(bundle)
}

func (s *Server) handleReloadSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("websocket upgrade failed: %v", err)
		}
		return
	}

	topic := ""
	if moduleID := r.URL.Query().Get("module"); moduleID != "" {
		topic = search.Slugify(moduleID)
	}

	s.connsMu.Lock()
	s.conns[conn] = &wsConn{topic: topic}
	s.connsMu.Unlock()

	defer func() {
		s.connsMu.Lock()
		delete(s.conns, conn)
		s.connsMu.Unlock()
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
