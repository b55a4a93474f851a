// Package rpc exposes the node over a JSON-RPC HTTP endpoint and a
// websocket event stream.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/takulai/takd/internal/node"
)

// Server handles HTTP JSON-RPC requests.
// Request format: {"method": "method_name", "params": [{...}]}
type Server struct {
	registry *MethodRegistry
	ws       *WebSocketServer
	log      *slog.Logger
	httpSrv  *http.Server
}

// Options configures the RPC server.
type Options struct {
	Addr    string
	Version string
	Logger  *slog.Logger
}

// NewServer creates an RPC server over the given node.
func NewServer(n *node.Node, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	registry := NewMethodRegistry()
	registerAllMethods(registry, n, opts.Version)

	s := &Server{
		registry: registry,
		ws:       NewWebSocketServer(n, registry, opts.Logger),
		log:      opts.Logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/", s)
	mux.Handle("/ws", s.ws)

	s.httpSrv = &http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe serves until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return err
	}
	s.log.Info("rpc server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.ws.CloseAll()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
		s.handleGet(w, r)
		return
	case http.MethodPost:
		s.handlePost(w, r)
		return
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGet serves simple queries like /?command=server_info.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "server_info"
	}
	result, rpcErr := s.execute(r.Context(), method, nil)
	s.writeResponse(w, result, rpcErr)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeResponse(w, nil, RpcErrorInternal("failed to read request body"))
		return
	}
	defer r.Body.Close()

	var request rpcRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, nil, NewRpcError(RpcBAD_SYNTAX, "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, nil, NewRpcError(RpcBAD_SYNTAX, "missingCommand", "Missing method field"))
		return
	}

	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	result, rpcErr := s.execute(r.Context(), request.Method, params)
	s.writeResponse(w, result, rpcErr)
}

func (s *Server) execute(ctx context.Context, method string, params json.RawMessage) (any, *RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, RpcErrorMethodNotFound(method)
	}
	return handler.Handle(ctx, params)
}

// writeResponse writes the response envelope. Errors are reported inside
// the result object with status "error".
func (s *Server) writeResponse(w http.ResponseWriter, result any, rpcErr *RpcError) {
	var resultObj map[string]any

	if rpcErr != nil {
		resultObj = map[string]any{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
	} else if m, ok := result.(map[string]any); ok {
		m["status"] = "success"
		resultObj = m
	} else {
		resultObj = map[string]any{
			"status": "success",
			"data":   result,
		}
	}

	data, err := json.Marshal(map[string]any{"result": resultObj})
	if err != nil {
		s.log.Error("failed to marshal rpc response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
