package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/dominant-colors/internal/histogram"
	"github.com/ironsheep/dominant-colors/internal/imaging"
)

// Server handles MCP protocol communication
type Server struct {
	cache    *imaging.ImageCache
	analyzer *histogram.Analyzer
	step     int
	version  string
	logger   *zap.Logger
}

// Options configures a Server. Zero values fall back to the defaults of the
// histogram package and a no-op logger.
type Options struct {
	Analyzer *histogram.Analyzer
	Step     int
	Version  string
	Logger   *zap.Logger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes used in responses.
const (
	codeParseError     = -32700
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
	codeToolFailed     = -32000
)

const protocolVersion = "2024-11-05"

func reply(id, result interface{}) *MCPResponse {
	return &MCPResponse{JSONRPC: "2.0", ID: id, Result: result}
}

// New creates a server with its own image cache.
func New(opts Options) *Server {
	if opts.Step == 0 {
		opts.Step = histogram.DefaultStep
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Server{
		cache:    imaging.NewImageCache(),
		analyzer: opts.Analyzer,
		step:     opts.Step,
		version:  opts.Version,
		logger:   opts.Logger,
	}
}

// Serve reads one JSON-RPC request per line from in and writes one response
// per line to out. It returns nil when in is exhausted and ctx.Err() as
// soon as ctx is done, even while a read is still blocked.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
		readErr <- scanner.Err()
	}()

	enc := json.NewEncoder(out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				err := <-readErr
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return errors.Wrap(err, "read requests")
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			resp := s.handleLine(line)
			if resp == nil {
				continue
			}
			if err := enc.Encode(resp); err != nil {
				return errors.Wrap(err, "write response")
			}
		}
	}
}

// handleLine decodes and answers one request line. Blank lines and
// notifications produce no response.
func (s *Server) handleLine(line []byte) *MCPResponse {
	if len(bytes.TrimSpace(line)) == 0 {
		return nil
	}
	var req MCPRequest
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("failed to parse request", zap.Error(err))
		// The id survives when the line is valid JSON of the wrong shape.
		var partial struct {
			ID interface{} `json:"id"`
		}
		json.Unmarshal(line, &partial)
		return errorResponse(partial.ID, codeParseError, "Parse error", err.Error())
	}
	return s.handleRequest(&req)
}

func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", zap.String("method", req.Method), zap.Any("id", req.ID))

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return reply(req.ID, map[string]interface{}{})
	}
	return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return reply(req.ID, map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]interface{}{"tools": map[string]interface{}{}},
		"serverInfo":      map[string]interface{}{"name": "dominant-colors", "version": s.version},
	})
}
