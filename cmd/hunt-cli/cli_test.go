package main

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"strings"
	"testing"

	"meme-hunter/internal/app/relay"
	"meme-hunter/internal/auth"
	"meme-hunter/internal/chain"
	"meme-hunter/internal/config"
	"meme-hunter/internal/program"
)

const testSeed = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func executeCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func testKey(t *testing.T) (ed25519.PrivateKey, chain.Address) {
	t.Helper()
	k, err := loadKey(testSeed)
	if err != nil {
		t.Fatalf("load key: %v", err)
	}
	return k, keyAddress(k)
}

func TestKeygen(t *testing.T) {
	out, err := executeCLI(t, "keygen")
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	var got struct {
		Seed    string `json:"seed"`
		Address string `json:"address"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	k, err := loadKey(got.Seed)
	if err != nil {
		t.Fatalf("seed does not load: %v", err)
	}
	if keyAddress(k).String() != got.Address {
		t.Fatalf("address %s does not match seed", got.Address)
	}
}

func TestDerivePoolMatchesProgram(t *testing.T) {
	out, err := executeCLI(t, "derive", "pool")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	var got map[string]chain.Address
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := program.New(chain.MustParseAddress(config.DefaultProgramID), nil, nil).PoolAddress()
	if got["pool"] != want {
		t.Fatalf("pool = %s, want %s", got["pool"], want)
	}
}

func TestSignSessionVerifies(t *testing.T) {
	_, owner := testKey(t)
	sessionKey := chain.MustParseAddress(strings.Repeat("ab", 32))
	out, err := executeCLI(t, "sign", "--key", testSeed, "session", "--session-key", sessionKey.String(), "--duration", "2h")
	if err != nil {
		t.Fatalf("sign session: %v", err)
	}
	var in relay.AuthorizeSessionInput
	if err := json.Unmarshal([]byte(out), &in); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if in.Owner != owner || in.DurationSecs != 7200 {
		t.Fatalf("unexpected body: %+v", in)
	}
	msg := chain.AuthorizeSessionMessage(in.Owner, in.SessionKey, in.DurationSecs, in.IssuedAt)
	if err := chain.Verify(owner, msg, in.Signature); err != nil {
		t.Fatalf("signature does not verify: %v", err)
	}
}

func TestSignHuntVerifies(t *testing.T) {
	_, sessionKey := testKey(t)
	player := chain.MustParseAddress(strings.Repeat("cd", 32))
	out, err := executeCLI(t, "sign", "--key", testSeed, "hunt", "--player", player.String(), "--meme", "3", "--net", "1", "--epoch", "2", "--nonce", "7")
	if err != nil {
		t.Fatalf("sign hunt: %v", err)
	}
	var in relay.HuntInput
	if err := json.Unmarshal([]byte(out), &in); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if in.SessionKey != sessionKey || in.MemeID != 3 || in.NetSize != 1 {
		t.Fatalf("unexpected body: %+v", in)
	}
	if err := chain.Verify(sessionKey, chain.HuntMessage(player, 3, 1, 2, 7), in.Signature); err != nil {
		t.Fatalf("signature does not verify: %v", err)
	}
}

func TestSignRequiresKey(t *testing.T) {
	t.Setenv(keyEnv, "")
	if _, err := executeCLI(t, "sign", "revoke"); err == nil || !strings.Contains(err.Error(), "no signing key") {
		t.Fatalf("got %v, want missing key error", err)
	}
	if _, err := executeCLI(t, "sign", "--key", "abcd", "revoke"); err == nil {
		t.Fatal("short seed should fail")
	}
}

func TestToken(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "cli-secret")
	_, subject := testKey(t)
	out, err := executeCLI(t, "token", "--subject", subject.String(), "--role", "admin")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	claims, err := auth.ParseToken([]byte("cli-secret"), strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != auth.RoleAdmin || claims.Subject != subject.String() {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestDatabaseCommandsNeedDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	_, addr := testKey(t)
	if _, err := executeCLI(t, "fund", "--to", addr.String(), "--amount", "5"); err == nil || !strings.Contains(err.Error(), "POSTGRES_DSN") {
		t.Fatalf("got %v, want missing DSN error", err)
	}
}
