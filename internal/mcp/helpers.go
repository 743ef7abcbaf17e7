package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"invopt-mcp/internal/planning"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// ResponseEnvelope wraps every tool result with interpretation hints and an optional chart.
type ResponseEnvelope struct {
	Data     any      `json:"data"`
	Guidance []string `json:"guidance,omitempty"`
	Chart    string   `json:"-"`
}

// WrapResponse builds an envelope, dropping empty guidance lines.
func WrapResponse(data any, guidance ...string) ResponseEnvelope {
	env := ResponseEnvelope{Data: data}
	for _, g := range guidance {
		if g != "" {
			env.Guidance = append(env.Guidance, g)
		}
	}
	return env
}

// ErrorPayload is the body of a failed tool call.
type ErrorPayload struct {
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	MissingIDs []string `json:"missing_ids,omitempty"`
}

// Error kinds reported to clients.
const (
	ErrorInvalidRequest = "invalid_request"
	ErrorNotFound       = "not_found"
	ErrorInternal       = "internal"
)

func classifyError(err error) ErrorPayload {
	p := ErrorPayload{Error: ErrorInternal, Message: err.Error()}
	var nf *planning.NotFoundError
	switch {
	case errors.Is(err, planning.ErrInvalidRequest):
		p.Error = ErrorInvalidRequest
	case errors.As(err, &nf):
		p.Error = ErrorNotFound
		p.MissingIDs = nf.IDs
	case errors.Is(err, planning.ErrVariantNotFound):
		p.Error = ErrorNotFound
	}
	return p
}

func (s *Server) formatResult(data any) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}

func (s *Server) toResult(env ResponseEnvelope) *gomcp.CallToolResult {
	content := []gomcp.Content{&gomcp.TextContent{Text: s.formatResult(env)}}
	if s.enableMermaidCharts && env.Chart != "" {
		content = append(content, &gomcp.TextContent{Text: env.Chart})
	}
	return &gomcp.CallToolResult{Content: content}
}

func (s *Server) errorResult(err error) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		IsError: true,
		Content: []gomcp.Content{&gomcp.TextContent{Text: s.formatResult(classifyError(err))}},
	}
}

// handlerFor turns a typed handler into a go-sdk tool handler. Handler errors
// are reported as tool results so the client sees the error kind.
func handlerFor[In any](s *Server, name string, fn func(context.Context, In) (ResponseEnvelope, error)) gomcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, _ *gomcp.CallToolRequest, in In) (*gomcp.CallToolResult, any, error) {
		env, err := fn(ctx, in)
		if err != nil {
			log.Warn().Err(err).Str("tool", name).Msg("Tool call failed")
			return s.errorResult(err), nil, nil
		}
		log.Debug().Str("tool", name).Msg("Tool call succeeded")
		return s.toResult(env), nil, nil
	}
}

func addTool[In any](s *Server, server *gomcp.Server, tool *gomcp.Tool, fn func(context.Context, In) (ResponseEnvelope, error)) {
	gomcp.AddTool(server, tool, handlerFor(s, tool.Name, fn))
}
