package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPublicTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_config",
			mcp.WithDescription("Game configuration: authority, relayer, airdrop threshold, owner fee"),
		),
		s.handleGetConfig,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_pool",
			mcp.WithDescription("Reward pool address and balance"),
		),
		s.handleGetPool,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_session",
			mcp.WithDescription("Delegated session of an owner, including the epoch and nonce the next hunt must sign"),
			mcp.WithString("owner", mcp.Required(), mcp.Description("Owner address (hex)")),
		),
		s.handleGetSession,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_window",
			mcp.WithDescription("Hunt count recorded in a confirmation window"),
			mcp.WithNumber("slot", mcp.Required(), mcp.Description("Window slot")),
		),
		s.handleGetWindow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"hunt_history",
			mcp.WithDescription("Recent hunts of a player, newest first"),
			mcp.WithString("player", mcp.Required(), mcp.Description("Player address (hex)")),
			mcp.WithNumber("limit", mcp.Description("Page size, default 50, max 500")),
			mcp.WithNumber("offset", mcp.Description("Page offset, default 0")),
		),
		s.handleHuntHistory,
	)
}

func (s *Server) handleGetConfig(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.svc.Config(ctx)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetPool(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.svc.Pool(ctx)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	owner, errResp := addressArg(request, "owner")
	if errResp != nil {
		return errResp, nil
	}
	resp, err := s.svc.Session(ctx, owner)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slot, err := request.RequireInt("slot")
	if err != nil || slot < 0 {
		return toolError("invalid_request", "slot must be a non-negative integer"), nil
	}
	resp, svcErr := s.svc.Window(ctx, uint64(slot))
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleHuntHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, errResp := addressArg(request, "player")
	if errResp != nil {
		return errResp, nil
	}
	limit := request.GetInt("limit", defaultPageLimit)
	offset := request.GetInt("offset", 0)
	limit, offset = clampPagination(limit, offset, maxPageLimit)

	resp, err := s.svc.HuntHistory(ctx, player, limit, offset)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}
