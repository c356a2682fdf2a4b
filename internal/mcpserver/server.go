package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"meme-hunter/internal/app/relay"
	"meme-hunter/internal/chain"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes the relayer to MCP clients: state reads plus hunts signed
// by a delegated session key.
type Server struct {
	svc *relay.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(svc *relay.Service) *Server {
	mcpSrv := server.NewMCPServer(
		"meme-hunter",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		svc:        svc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerPublicTools()
	s.registerGameplayTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"session://{owner}",
			"session_info",
			mcp.WithTemplateDescription("Delegated session of an owner address"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw := request.Params.URI
			if !strings.HasPrefix(raw, "session://") {
				return nil, nil
			}
			owner, err := chain.ParseAddress(strings.TrimPrefix(raw, "session://"))
			if err != nil {
				return nil, err
			}
			sess, err := s.svc.Session(ctx, owner)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(sess)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      raw,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}

func addressArg(request mcp.CallToolRequest, name string) (chain.Address, *mcp.CallToolResult) {
	v, err := request.RequireString(name)
	if err != nil {
		return chain.Address{}, toolError("invalid_request", err.Error())
	}
	addr, err := chain.ParseAddress(strings.TrimSpace(v))
	if err != nil {
		return chain.Address{}, toolError("invalid_address", name+" must be a 64-char hex address")
	}
	return addr, nil
}
