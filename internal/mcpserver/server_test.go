package mcpserver

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"meme-hunter/internal/app/relay"
	"meme-hunter/internal/chain"
	"meme-hunter/internal/program"
	"meme-hunter/internal/store"
	"meme-hunter/internal/testutil"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

var testProgramID = chain.MustParseAddress("0b0c0d0e0f101112131415161718191a1b1c1d1e1f202122232425262728292a")

type fixture struct {
	svc     *relay.Service
	player  testutil.Key
	session testutil.Key
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	mem := store.NewMemory()
	clock := &chain.FixedClock{}
	clock.Set(700, now.Unix())

	admin := testutil.NewKey(t, "admin")
	relayer := testutil.NewKey(t, "relayer")
	f := &fixture{
		player:  testutil.NewKey(t, "player"),
		session: testutil.NewKey(t, "session"),
	}
	f.svc = relay.NewService(program.New(testProgramID, mem, clock), mem, relay.Options{
		Relayer:          relayer.Addr,
		SignatureMaxSkew: time.Minute,
	})
	if _, err := f.svc.Initialize(ctx, admin.Addr, relay.InitializeInput{}, program.DefaultOptions()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for _, addr := range []chain.Address{admin.Addr, relayer.Addr} {
		if _, err := f.svc.Fund(ctx, relay.FundInput{To: addr, Amount: 5_000_000_000}); err != nil {
			t.Fatalf("fund: %v", err)
		}
	}
	if _, err := f.svc.Deposit(ctx, admin.Addr, 2_000_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	issuedAt := now.Unix()
	msg := chain.AuthorizeSessionMessage(f.player.Addr, f.session.Addr, 3600, issuedAt)
	if _, err := f.svc.AuthorizeSession(ctx, relay.AuthorizeSessionInput{
		Owner:        f.player.Addr,
		SessionKey:   f.session.Addr,
		DurationSecs: 3600,
		IssuedAt:     issuedAt,
		Signature:    f.player.Sign(msg),
	}); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	return f
}

func TestMCPServerToolsAndHuntFlow(t *testing.T) {
	f := newFixture(t)
	httpSrv := httptest.NewServer(New(f.svc).Handler())
	defer httpSrv.Close()

	mcpClient, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	defer closeClient()

	assertToolNames(t, mustListTools(t, mcpClient),
		"get_config",
		"get_pool",
		"get_session",
		"get_window",
		"hunt_history",
		"submit_hunt",
	)

	sess := mapFromStructured(t, mustCallTool(t, mcpClient, "get_session", map[string]any{"owner": f.player.Addr.String()}))
	if asFloat64(sess["nonce"]) != 0 || asFloat64(sess["epoch"]) != 1 || sess["live"] != true {
		t.Fatalf("unexpected session: %v", sess)
	}

	sig := f.session.Sign(chain.HuntMessage(f.player.Addr, 1, program.NetMedium, 1, 0))
	args := map[string]any{
		"player":      f.player.Addr.String(),
		"session_key": f.session.Addr.String(),
		"meme_id":     1,
		"net_size":    int(program.NetMedium),
		"signature":   hex.EncodeToString(sig),
	}
	hunt := mustCallTool(t, mcpClient, "submit_hunt", args)
	if hunt.IsError {
		t.Fatalf("submit_hunt error: %v", hunt.StructuredContent)
	}
	payload := mapFromStructured(t, hunt)
	if asFloat64(payload["nonce"]) != 1 || asFloat64(payload["slot"]) != 700 {
		t.Fatalf("unexpected hunt payload: %v", payload)
	}

	// same signature against the advanced nonce
	assertToolErrorCode(t, mustCallTool(t, mcpClient, "submit_hunt", args), "invalid_session_key")

	window := mapFromStructured(t, mustCallTool(t, mcpClient, "get_window", map[string]any{"slot": 700}))
	if asFloat64(window["tx_count"]) != 1 {
		t.Fatalf("unexpected window: %v", window)
	}

	hist := mapFromStructured(t, mustCallTool(t, mcpClient, "hunt_history", map[string]any{
		"player": f.player.Addr.String(),
		"limit":  10,
	}))
	items, _ := hist["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("history items = %d, want 1: %v", len(items), hist)
	}

	pool := mapFromStructured(t, mustCallTool(t, mcpClient, "get_pool", nil))
	if asString(pool["address"]) == "" {
		t.Fatalf("pool missing address: %v", pool)
	}
}

func TestMCPServerToolErrors(t *testing.T) {
	f := newFixture(t)
	httpSrv := httptest.NewServer(New(f.svc).Handler())
	defer httpSrv.Close()

	mcpClient, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	defer closeClient()

	stranger := testutil.NewKey(t, "stranger")
	cases := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"bad owner", "get_session", map[string]any{"owner": "nope"}, "invalid_address"},
		{"missing owner", "get_session", map[string]any{}, "invalid_request"},
		{"unknown session", "get_session", map[string]any{"owner": stranger.Addr.String()}, "session_not_found"},
		{"negative slot", "get_window", map[string]any{"slot": -1}, "invalid_request"},
		{"meme out of range", "submit_hunt", map[string]any{
			"player":      f.player.Addr.String(),
			"session_key": f.session.Addr.String(),
			"meme_id":     300,
			"net_size":    0,
			"signature":   "00",
		}, "invalid_request"},
		{"signature not hex", "submit_hunt", map[string]any{
			"player":      f.player.Addr.String(),
			"session_key": f.session.Addr.String(),
			"meme_id":     0,
			"net_size":    0,
			"signature":   "zz",
		}, "invalid_request"},
		{"wrong session key", "submit_hunt", map[string]any{
			"player":      f.player.Addr.String(),
			"session_key": stranger.Addr.String(),
			"meme_id":     1,
			"net_size":    0,
			"signature":   hex.EncodeToString(stranger.Sign(chain.HuntMessage(f.player.Addr, 1, 0, 1, 0))),
		}, "invalid_session_key"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertToolErrorCode(t, mustCallTool(t, mcpClient, tc.tool, tc.args), tc.want)
		})
	}
}

func TestMCPSessionResource(t *testing.T) {
	f := newFixture(t)
	httpSrv := httptest.NewServer(New(f.svc).Handler())
	defer httpSrv.Close()

	mcpClient, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	defer closeClient()

	uri := "session://" + f.player.Addr.String()
	res, err := mcpClient.ReadResource(context.Background(), mcp.ReadResourceRequest{Params: mcp.ReadResourceParams{URI: uri}})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if len(res.Contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(res.Contents))
	}
	var text string
	switch c := res.Contents[0].(type) {
	case mcp.TextResourceContents:
		text = c.Text
	case *mcp.TextResourceContents:
		text = c.Text
	default:
		t.Fatalf("unexpected contents type %T", c)
	}
	var sess relay.SessionResponse
	if err := json.Unmarshal([]byte(text), &sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if sess.Owner != f.player.Addr || sess.SessionKey != f.session.Addr {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestClampPagination(t *testing.T) {
	cases := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, defaultPageLimit, 0},
		{10, 5, 10, 5},
		{1000, -3, maxPageLimit, 0},
	}
	for _, tc := range cases {
		l, o := clampPagination(tc.limit, tc.offset, maxPageLimit)
		if l != tc.wantLimit || o != tc.wantOffset {
			t.Fatalf("clamp(%d,%d) = %d,%d", tc.limit, tc.offset, l, o)
		}
	}
}

func newMCPClient(t *testing.T, endpoint string) (*client.Client, func()) {
	t.Helper()
	ctx := context.Background()
	trans, err := transport.NewStreamableHTTP(endpoint)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if err := trans.Start(ctx); err != nil {
		t.Fatalf("transport start: %v", err)
	}
	c := client.NewClient(trans)
	_, err = c.Initialize(ctx, mcp.InitializeRequest{Params: mcp.InitializeParams{ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION}})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return c, func() { _ = trans.Close() }
}

func mustListTools(t *testing.T, c *client.Client) []mcp.Tool {
	t.Helper()
	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	return res.Tools
}

func assertToolNames(t *testing.T, tools []mcp.Tool, expected ...string) {
	t.Helper()
	got := make([]string, 0, len(tools))
	for _, tool := range tools {
		got = append(got, tool.Name)
	}
	sort.Strings(got)
	sort.Strings(expected)
	if len(got) != len(expected) {
		t.Fatalf("tool count mismatch got=%v expected=%v", got, expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("tool list mismatch got=%v expected=%v", got, expected)
		}
	}
}

func mustCallTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}})
	if err != nil {
		t.Fatalf("call tool %s: %v", name, err)
	}
	return res
}

func assertToolErrorCode(t *testing.T, res *mcp.CallToolResult, want string) {
	t.Helper()
	if !res.IsError {
		t.Fatalf("expected tool error %q, got success: %v", want, res.StructuredContent)
	}
	payload := mapFromStructured(t, res)
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("error payload missing 'error': %v", payload)
	}
	if got := asString(errObj["code"]); got != want {
		t.Fatalf("error code=%q want=%q payload=%v", got, want, payload)
	}
}

func mapFromStructured(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	b, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat64(v any) float64 {
	f, _ := v.(float64)
	return f
}
