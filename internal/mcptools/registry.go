package mcptools

import (
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Option configures which tools are registered.
type Option func(*registry)

type registry struct {
	server *sdkmcp.Server
}

func Register(server *sdkmcp.Server, opts ...Option) {
	reg := &registry{server: server}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(reg)
	}
}

// textResult returns a text-only tool result.
func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) *sdkmcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return textResult(err.Error())
	}
	return textResult(string(b))
}
