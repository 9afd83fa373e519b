package rpc

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/strmfi/vestd/internal/core/vesting"
)

// ContractEvent is broadcast to WebSocket subscribers after every
// instruction the engine applies successfully, the same shape the
// teacher's Publisher used for ledgerClosed/transaction events but
// scoped to a single escrow's settlement effects.
type ContractEvent struct {
	Type        string        `json:"type"`
	Escrow      principalJSON `json:"escrow"`
	Instruction string        `json:"instruction"`
	Result      int           `json:"result"`
	Amount      uint64        `json:"amount,omitempty"`
}

// eventHub fans out ContractEvents to WebSocket clients subscribed to
// a specific escrow (or to all escrows via the wildcard key).
type eventHub struct {
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[string]map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

const wsWildcard = "*"

func newEventHub() *eventHub {
	return &eventHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[string]map[*wsClient]struct{}),
	}
}

// ServeHTTP upgrades the connection and subscribes it to the escrow
// named by the "escrow" query parameter, or to every escrow if absent.
func (h *eventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("escrow")
	if key == "" {
		key = wsWildcard
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("vestd rpc: websocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, 64)}
	h.subscribe(key, client)

	ctx, cancel := context.WithCancel(context.Background())
	go h.writeLoop(ctx, client)
	go h.readLoop(cancel, client, key)
}

func (h *eventHub) subscribe(key string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[*wsClient]struct{})
	}
	h.subs[key][c] = struct{}{}
}

func (h *eventHub) unsubscribe(key string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[key], c)
	close(c.send)
}

// readLoop exists only to detect client disconnects; vestd's
// subscriptions are read-only from the client's perspective.
func (h *eventHub) readLoop(cancel context.CancelFunc, c *wsClient, key string) {
	defer cancel()
	defer h.unsubscribe(key, c)
	defer c.conn.Close()
	c.conn.SetReadLimit(4096)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *eventHub) writeLoop(ctx context.Context, c *wsClient) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// broadcast publishes event to clients subscribed to its escrow and to
// wildcard subscribers.
func (h *eventHub) broadcast(event ContractEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	escrowKey := string(event.Escrow)
	for _, key := range []string{escrowKey, wsWildcard} {
		for c := range h.subs[key] {
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

func instructionName(tag vesting.Tag) string {
	switch tag {
	case vesting.TagCreate:
		return "create"
	case vesting.TagWithdraw:
		return "withdraw"
	case vesting.TagTopUp:
		return "topup"
	case vesting.TagTransfer:
		return "transfer_recipient"
	case vesting.TagCancel:
		return "cancel"
	default:
		return "unknown"
	}
}
