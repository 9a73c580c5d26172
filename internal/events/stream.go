package events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/giantswarm/kubectl-mcp/internal/logging"
)

const (
	// KeepAliveInterval is how often an idle stream is pinged.
	KeepAliveInterval = 30 * time.Second

	writeWait = 10 * time.Second
)

// FilterFromRequest reads the resourceType and namespace query parameters.
func FilterFromRequest(r *http.Request) Filter {
	q := r.URL.Query()
	return Filter{
		ResourceType: q.Get("resourceType"),
		Namespace:    q.Get("namespace"),
	}
}

func (b *Bus) connectedEvent(sub *Subscription) Event {
	return Event{
		Type:      ConnectedType,
		Timestamp: b.now().UTC(),
		Data: map[string]any{
			"subscriber":   sub.ID(),
			"resourceType": sub.Filter().ResourceType,
			"namespace":    sub.Filter().Namespace,
		},
	}
}

// SSEHandler streams events as Server-Sent Events. The first frame is a
// "connected" acknowledgement; each following frame is named after the
// event type.
func (b *Bus) SSEHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Only GET method allowed", http.StatusMethodNotAllowed)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		sub := b.Subscribe(FilterFromRequest(r))
		defer b.Unsubscribe(sub)

		if err := writeSSE(w, b.connectedEvent(sub)); err != nil {
			return
		}
		flusher.Flush()

		ticker := time.NewTicker(KeepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-sub.Done():
				return
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case <-sub.Ready():
				for _, ev := range sub.Drain() {
					if err := writeSSE(w, ev); err != nil {
						b.logger.Debug("event stream write failed", logging.Subscriber(sub.ID()), logging.Err(err))
						return
					}
				}
				flusher.Flush()
			}
		}
	})
}

func writeSSE(w http.ResponseWriter, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WebSocketHandler streams events as JSON WebSocket messages, starting with
// the "connected" acknowledgement.
func (b *Bus) WebSocketHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			b.logger.Warn("websocket upgrade failed", logging.Err(err))
			return
		}
		defer conn.Close()

		sub := b.Subscribe(FilterFromRequest(r))
		defer b.Unsubscribe(sub)

		// The read loop only exists to notice the peer going away.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					sub.Close()
					return
				}
			}
		}()

		if err := writeJSON(conn, b.connectedEvent(sub)); err != nil {
			return
		}

		ticker := time.NewTicker(KeepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-sub.Done():
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			case <-sub.Ready():
				for _, ev := range sub.Drain() {
					if err := writeJSON(conn, ev); err != nil {
						b.logger.Debug("event stream write failed", logging.Subscriber(sub.ID()), logging.Err(err))
						return
					}
				}
			}
		}
	})
}

func writeJSON(conn *websocket.Conn, ev Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(ev)
}
