package api

import (
	"net/http"
	"net/url"
	"slices"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin accepts same-host connections and the configured CORS origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err == nil && u.Host == r.Host {
		return true
	}
	return slices.Contains(s.cfg.API.CORSOrigins, "*") || slices.Contains(s.cfg.API.CORSOrigins, origin)
}

// handleWebSocket upgrades the connection and streams the session's form
// and submission events to it.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, cookie, err := s.openSession(r)
	if err != nil {
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	// The upgrade writes its own response, so the cookie travels in the
	// handshake headers.
	header := http.Header{"Set-Cookie": {cookie.String()}}

	conn, err := s.upgrader().Upgrade(w, r, header)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:     s.wsHub,
		session: sess.id,
		send:    make(chan WSMessage, 256),
	}

	// Queue the first frame while the channel is still ours to write to.
	client.send <- WSMessage{Type: EventFormUpdated, Data: s.formState(sess)}
	if !s.wsHub.Register(client) {
		conn.Close()
		return
	}

	go s.wsWritePump(conn, client)
	go s.wsReadPump(conn, client, sess)
}

// wsReadPump reads client messages until the connection closes.
func (s *Server) wsReadPump(conn *websocket.Conn, client *WSClient, sess *session) {
	defer func() {
		client.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read error", "session", client.session, "error", err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "ping":
			s.wsHub.Publish(client.session, WSMessage{Type: "pong"})
		case "snapshot":
			s.wsHub.Publish(client.session, WSMessage{Type: EventFormUpdated, Data: s.formState(sess)})
		}
	}
}

// wsWritePump pumps messages from the hub to the WebSocket connection.
func (s *Server) wsWritePump(conn *websocket.Conn, client *WSClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Error("websocket marshal error", "error", err)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
