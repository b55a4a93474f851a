package rpc

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/takulai/takd/internal/node"
)

// WebSocketServer upgrades connections, answers RPC commands sent as
// {"command": ..., "id": ...} messages and streams transaction events.
type WebSocketServer struct {
	upgrader websocket.Upgrader
	node     *node.Node
	registry *MethodRegistry
	log      *slog.Logger

	mu    sync.Mutex
	conns map[*wsConn]struct{}
}

type wsConn struct {
	conn   *websocket.Conn
	send   chan []byte
	closed chan struct{}
	once   sync.Once
}

// NewWebSocketServer creates a websocket server sharing the RPC registry.
func NewWebSocketServer(n *node.Node, registry *MethodRegistry, log *slog.Logger) *WebSocketServer {
	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		node:     n,
		registry: registry,
		log:      log,
		conns:    make(map[*wsConn]struct{}),
	}
}

// ServeHTTP handles websocket upgrade requests.
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &wsConn{
		conn:   conn,
		send:   make(chan []byte, 256),
		closed: make(chan struct{}),
	}

	ws.mu.Lock()
	ws.conns[c] = struct{}{}
	ws.mu.Unlock()

	events, cancel := ws.node.Subscribe()

	go ws.writeLoop(c, events, cancel)
	go ws.readLoop(c, r)
}

func (c *wsConn) close() {
	c.once.Do(func() { close(c.closed) })
}

func (ws *WebSocketServer) drop(c *wsConn) {
	c.close()
	ws.mu.Lock()
	delete(ws.conns, c)
	ws.mu.Unlock()
	c.conn.Close()
}

// CloseAll drops every connection, used at server shutdown.
func (ws *WebSocketServer) CloseAll() {
	ws.mu.Lock()
	conns := make([]*wsConn, 0, len(ws.conns))
	for c := range ws.conns {
		conns = append(conns, c)
	}
	ws.mu.Unlock()
	for _, c := range conns {
		ws.drop(c)
	}
}

// writeLoop forwards queued responses and node events to the peer.
func (ws *WebSocketServer) writeLoop(c *wsConn, events <-chan node.Event, cancel func()) {
	defer cancel()
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				ws.drop(c)
				return
			}
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				ws.drop(c)
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(map[string]any{
				"type":        "transaction",
				"transaction": ev,
			})
			if err != nil {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				ws.drop(c)
				return
			}
		}
	}
}

// readLoop answers RPC commands from the peer.
func (ws *WebSocketServer) readLoop(c *wsConn, r *http.Request) {
	defer ws.drop(c)

	c.conn.SetReadLimit(512 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.log.Warn("websocket read failed", "err", err)
			}
			return
		}
		ws.handleMessage(c, r, message)
	}
}

// handleMessage executes one command message. The command and id live at
// the top level; the remaining fields are the parameters.
func (ws *WebSocketServer) handleMessage(c *wsConn, r *http.Request, message []byte) {
	var cmdMap map[string]any
	if err := json.Unmarshal(message, &cmdMap); err != nil {
		ws.sendError(c, nil, RpcErrorInvalidParams("Invalid JSON: "+err.Error()))
		return
	}

	command, _ := cmdMap["command"].(string)
	if command == "" {
		ws.sendError(c, nil, NewRpcError(RpcBAD_SYNTAX, "missingCommand", "Missing command field"))
		return
	}
	id := cmdMap["id"]
	delete(cmdMap, "command")
	delete(cmdMap, "id")

	var params json.RawMessage
	if len(cmdMap) > 0 {
		params, _ = json.Marshal(cmdMap)
	}

	handler, exists := ws.registry.Get(command)
	if !exists {
		ws.sendError(c, id, RpcErrorMethodNotFound(command))
		return
	}

	result, rpcErr := handler.Handle(r.Context(), params)
	if rpcErr != nil {
		ws.sendError(c, id, rpcErr)
		return
	}

	response := map[string]any{
		"type":   "response",
		"status": "success",
		"result": result,
	}
	if id != nil {
		response["id"] = id
	}
	ws.enqueue(c, response)
}

func (ws *WebSocketServer) sendError(c *wsConn, id any, rpcErr *RpcError) {
	response := map[string]any{
		"type":          "response",
		"status":        "error",
		"error":         rpcErr.ErrorString,
		"error_code":    rpcErr.Code,
		"error_message": rpcErr.Message,
	}
	if id != nil {
		response["id"] = id
	}
	ws.enqueue(c, response)
}

func (ws *WebSocketServer) enqueue(c *wsConn, response map[string]any) {
	data, err := json.Marshal(response)
	if err != nil {
		ws.log.Error("failed to marshal websocket response", "err", err)
		return
	}
	select {
	case c.send <- data:
	case <-c.closed:
	default:
		// Slow consumer, drop the connection.
		ws.drop(c)
	}
}
