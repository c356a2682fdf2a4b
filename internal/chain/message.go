package chain

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"time"
)

var (
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrStaleSignature   = errors.New("stale_signature")
)

const (
	tagHunt             = "meme-hunter/hunt/v2"
	tagAuthorizeSession = "meme-hunter/authorize_session/v1"
	tagRevokeSession    = "meme-hunter/revoke_session/v1"
	tagCreateRoom       = "meme-hunter/create_room/v1"
	tagSettleRoom       = "meme-hunter/settle_room/v1"
)

// HuntMessage is what a session key signs for one hunt. The epoch names the
// authorization and the nonce is the session nonce before the hunt, so a
// signature is good for exactly one play of exactly one session.
func HuntMessage(player Address, memeID, netSize uint8, epoch, nonce uint64) []byte {
	var b bytes.Buffer
	b.WriteString(tagHunt)
	b.Write(player[:])
	b.WriteByte(memeID)
	b.WriteByte(netSize)
	b.Write(U64LE(epoch))
	b.Write(U64LE(nonce))
	return b.Bytes()
}

func AuthorizeSessionMessage(owner, sessionKey Address, durationSecs int64, issuedAt int64) []byte {
	var b bytes.Buffer
	b.WriteString(tagAuthorizeSession)
	b.Write(owner[:])
	b.Write(sessionKey[:])
	writeI64(&b, durationSecs)
	writeI64(&b, issuedAt)
	return b.Bytes()
}

func RevokeSessionMessage(owner Address, issuedAt int64) []byte {
	var b bytes.Buffer
	b.WriteString(tagRevokeSession)
	b.Write(owner[:])
	writeI64(&b, issuedAt)
	return b.Bytes()
}

func CreateRoomMessage(creator, mint, source Address, amount, roomNonce uint64, issuedAt int64) []byte {
	var b bytes.Buffer
	b.WriteString(tagCreateRoom)
	b.Write(creator[:])
	b.Write(mint[:])
	b.Write(source[:])
	b.Write(U64LE(amount))
	b.Write(U64LE(roomNonce))
	writeI64(&b, issuedAt)
	return b.Bytes()
}

func SettleRoomMessage(creator, room, destination Address, issuedAt int64) []byte {
	var b bytes.Buffer
	b.WriteString(tagSettleRoom)
	b.Write(creator[:])
	b.Write(room[:])
	b.Write(destination[:])
	writeI64(&b, issuedAt)
	return b.Bytes()
}

func Sign(key ed25519.PrivateKey, msg []byte) []byte {
	return ed25519.Sign(key, msg)
}

func Verify(signer Address, msg, sig []byte) error {
	if len(sig) != ed25519.SignatureSize || signer.IsZero() {
		return ErrInvalidSignature
	}
	if !ed25519.Verify(signer.PublicKey(), msg, sig) {
		return ErrInvalidSignature
	}
	return nil
}

// CheckIssuedAt rejects principal-signed requests outside maxSkew of now.
func CheckIssuedAt(issuedAt int64, now time.Time, maxSkew time.Duration) error {
	if maxSkew <= 0 {
		return nil
	}
	d := now.Sub(time.Unix(issuedAt, 0))
	if d < 0 {
		d = -d
	}
	if d > maxSkew {
		return ErrStaleSignature
	}
	return nil
}

func writeI64(b *bytes.Buffer, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	b.Write(buf[:])
}
