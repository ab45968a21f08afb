package mcptools

import (
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverName = "gigtracker"

// NewServer builds an MCP server with the given tools registered.
func NewServer(version string, opts ...Option) *sdkmcp.Server {
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    serverName,
		Version: version,
	}, nil)
	Register(server, opts...)
	return server
}

// Handler serves server over streamable HTTP; main mounts it at /mcp.
func Handler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, nil)
}
