// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"octopal/internal/metrics"
)

// WebSocketClient represents a connected WebSocket client
type WebSocketClient struct {
	conn              *websocket.Conn
	send              chan []byte
	natsConn          *nats.Conn
	natsSubscriptions []*nats.Subscription
	closeOnce         sync.Once
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 64 * 1024,
	}
}

// WebSocketUpgrader is used to upgrade HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// ProgressionWebSocketHandler pushes progression notifications (points,
// badges, level-ups, challenge completions) to connected clients in real time.
func ProgressionWebSocketHandler(natsConn *nats.Conn, eventsTopic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if natsConn == nil {
			http.Error(w, "Event bus is not configured", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade to WebSocket: %v", err)
			return
		}

		client := &WebSocketClient{
			conn:     conn,
			send:     make(chan []byte, 256),
			natsConn: natsConn,
		}

		go client.writePump()
		go client.readPump()

		if err := client.subscribeToProgression(eventsTopic); err != nil {
			log.Printf("Failed to subscribe to progression topics: %v", err)
			client.closeConnection()
			return
		}

		welcomeMsg := map[string]interface{}{
			"type": "welcome",
			"time": time.Now(),
		}
		welcomeJSON, _ := json.Marshal(welcomeMsg)
		client.send <- welcomeJSON

		metrics.WebsocketConnections.Inc()
		log.Printf("New progression WebSocket connection from %s", r.RemoteAddr)
	}
}

// readPump drains client messages. Inbound payloads are ignored; the pump
// exists to process control frames and detect disconnects.
func (c *WebSocketClient) readPump() {
	config := DefaultWebSocketConfig()

	defer func() {
		c.closeConnection()
	}()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps notifications to the WebSocket connection
func (c *WebSocketClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// subscribeToProgression subscribes to the progression notification subjects.
// Each message is wrapped with its subject so clients can route by type.
func (c *WebSocketClient) subscribeToProgression(eventsTopic string) error {
	subjects := []string{"points", "badge", "level", "challenge"}

	for _, subject := range subjects {
		subject := subject
		sub, err := c.natsConn.Subscribe(eventsTopic+"."+subject, func(msg *nats.Msg) {
			envelope := map[string]interface{}{
				"type":    subject,
				"payload": json.RawMessage(msg.Data),
				"time":    time.Now(),
			}
			data, err := json.Marshal(envelope)
			if err != nil {
				return
			}
			select {
			case c.send <- data:
			default:
				// Slow client: drop rather than block the NATS callback.
			}
		})
		if err != nil {
			return err
		}
		c.natsSubscriptions = append(c.natsSubscriptions, sub)
	}

	return nil
}

// closeConnection closes the WebSocket connection and cleans up resources.
// Both pumps call this on exit; the sync.Once keeps the teardown single.
func (c *WebSocketClient) closeConnection() {
	c.closeOnce.Do(func() {
		for _, sub := range c.natsSubscriptions {
			sub.Unsubscribe()
		}

		c.conn.Close()
		close(c.send)
		metrics.WebsocketConnections.Dec()

		log.Printf("WebSocket connection closed")
	})
}
