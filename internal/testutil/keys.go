package testutil

import (
	"crypto/ed25519"
	"crypto/sha256"
	"testing"

	"meme-hunter/internal/chain"
)

// Key is a deterministic ed25519 identity for tests.
type Key struct {
	Addr chain.Address
	Priv ed25519.PrivateKey
}

// NewKey derives a key from name so fixtures are stable across runs.
func NewKey(t *testing.T, name string) Key {
	t.Helper()
	seed := sha256.Sum256([]byte("test-key:" + name))
	priv := ed25519.NewKeyFromSeed(seed[:])
	return Key{Addr: chain.AddressFromPublicKey(priv.Public().(ed25519.PublicKey)), Priv: priv}
}

func (k Key) Sign(msg []byte) []byte {
	return chain.Sign(k.Priv, msg)
}
