// Package mcp serves tools to a calling agent over newline-delimited JSON-RPC.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/ahmethakanbesel/ecb-exchange/internal/apperror"
)

const maxLineSize = 1 << 20

// Tool is an invocable capability exposed to the agent.
type Tool interface {
	Definition() ToolDefinition
	Execute(ctx context.Context, arguments json.RawMessage) ([]Content, error)
}

type Server struct {
	name    string
	version string

	mu    sync.RWMutex
	tools map[string]Tool
}

func NewServer(name, version string) *Server {
	return &Server{
		name:    name,
		version: version,
		tools:   make(map[string]Tool),
	}
}

func (s *Server) Register(t Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[t.Definition().Name] = t
}

// Serve reads one request per line from r and writes one response per line to
// w until r is exhausted or ctx is cancelled. Lines that are not valid JSON-RPC
// are logged and skipped.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	enc := json.NewEncoder(w)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if len(line) == 0 {
				continue
			}

			var req Request
			if err := json.Unmarshal(line, &req); err != nil {
				slog.Error("error parsing request", "error", err)
				continue
			}

			resp := s.Handle(ctx, req)
			if resp == nil {
				continue
			}
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}
	}
}

// Handle dispatches a single request. It returns nil for notifications.
func (s *Server) Handle(ctx context.Context, req Request) *Response {
	result, err := s.dispatch(ctx, req)
	if req.IsNotification() {
		if err != nil {
			slog.Warn("notification failed", "method", req.Method, "error", err)
		}
		return nil
	}

	resp := &Response{JSONRPC: jsonRPCVersion, ID: req.ID}
	if err != nil {
		var rpcErr *RPCError
		if !errors.As(err, &rpcErr) {
			rpcErr = &RPCError{Code: apperror.RPCInternalError, Message: err.Error()}
		}
		resp.Error = rpcErr
		return resp
	}
	resp.Result = result
	return resp
}

func (s *Server) dispatch(ctx context.Context, req Request) (any, error) {
	if req.JSONRPC != jsonRPCVersion {
		return nil, &RPCError{Code: apperror.RPCInvalidRequest, Message: "jsonrpc must be \"2.0\""}
	}

	switch req.Method {
	case "initialize":
		return initializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      serverInfo{Name: s.name, Version: s.version},
		}, nil
	case "notifications/initialized", "notifications/cancelled", "ping":
		return struct{}{}, nil
	case "tools/list":
		return listToolsResult{Tools: s.definitions()}, nil
	case "tools/call":
		return s.callTool(ctx, req.Params)
	default:
		return nil, &RPCError{Code: apperror.RPCMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}
}

func (s *Server) definitions() []ToolDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	defs := make([]ToolDefinition, 0, len(s.tools))
	for _, t := range s.tools {
		defs = append(defs, t.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (any, error) {
	var params callToolParams
	if err := json.Unmarshal(raw, &params); err != nil || params.Name == "" {
		return nil, &RPCError{Code: apperror.RPCInvalidParams, Message: "invalid tools/call params"}
	}

	s.mu.RLock()
	tool, ok := s.tools[params.Name]
	s.mu.RUnlock()
	if !ok {
		return nil, &RPCError{Code: apperror.RPCInvalidParams, Message: fmt.Sprintf("unknown tool: %s", params.Name)}
	}

	content, err := tool.Execute(ctx, params.Arguments)
	if err != nil {
		ae := apperror.From(err)
		if ae.Code() == apperror.BadRequest {
			return nil, &RPCError{Code: ae.RPCCode(), Message: ae.Message()}
		}
		slog.Error("tool call failed", "tool", params.Name, "error", err)
		return callToolResult{Content: []Content{TextContent(ae.Message())}, IsError: true}, nil
	}
	return callToolResult{Content: content}, nil
}
