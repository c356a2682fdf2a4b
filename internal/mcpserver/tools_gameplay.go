package mcpserver

import (
	"context"
	"encoding/hex"
	"strings"

	"meme-hunter/internal/app/relay"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerGameplayTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"submit_hunt",
			mcp.WithDescription("Relay a hunt signed by the player's session key over (player, meme_id, net_size, epoch, nonce)"),
			mcp.WithString("player", mcp.Required(), mcp.Description("Session owner address (hex)")),
			mcp.WithString("session_key", mcp.Required(), mcp.Description("Delegated key address (hex)")),
			mcp.WithNumber("meme_id", mcp.Required(), mcp.Description("Meme tier 0-4")),
			mcp.WithNumber("net_size", mcp.Required(), mcp.Description("0 small, 1 medium, 2 large")),
			mcp.WithString("signature", mcp.Required(), mcp.Description("Hex ed25519 signature")),
		),
		s.handleSubmitHunt,
	)
}

func (s *Server) handleSubmitHunt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, errResp := addressArg(request, "player")
	if errResp != nil {
		return errResp, nil
	}
	sessionKey, errResp := addressArg(request, "session_key")
	if errResp != nil {
		return errResp, nil
	}
	memeID, err := request.RequireInt("meme_id")
	if err != nil || memeID < 0 || memeID > 255 {
		return toolError("invalid_request", "meme_id must be an integer in 0..255"), nil
	}
	netSize, err := request.RequireInt("net_size")
	if err != nil || netSize < 0 || netSize > 255 {
		return toolError("invalid_request", "net_size must be an integer in 0..255"), nil
	}
	rawSig, err := request.RequireString("signature")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	sig, err := hex.DecodeString(strings.TrimSpace(rawSig))
	if err != nil {
		return toolError("invalid_request", "signature must be hex"), nil
	}

	resp, err := s.svc.Hunt(ctx, relay.HuntInput{
		Player:     player,
		SessionKey: sessionKey,
		MemeID:     uint8(memeID),
		NetSize:    uint8(netSize),
		Signature:  sig,
	})
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}
