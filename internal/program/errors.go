package program

import (
	"errors"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/ledger"
	"meme-hunter/internal/store"
)

var (
	ErrAlreadyInitialized = errors.New("already_initialized")
	ErrNotInitialized     = errors.New("not_initialized")
	ErrInvalidConfig      = errors.New("invalid_config")

	ErrUnauthorizedAdmin   = errors.New("unauthorized_admin")
	ErrUnauthorizedRelayer = errors.New("unauthorized_relayer")
	ErrNotSessionOwner     = errors.New("not_session_owner")
	ErrUnauthorizedCreator = errors.New("unauthorized_creator")
	ErrInvalidSessionKey   = errors.New("invalid_session_key")

	ErrSessionExpired         = errors.New("session_expired")
	ErrInvalidSessionDuration = errors.New("invalid_session_duration")
	ErrAuthorizationReplayed  = errors.New("authorization_replayed")

	ErrInvalidMemeID  = errors.New("invalid_meme_id")
	ErrInvalidNetSize = errors.New("invalid_net_size")
	ErrInvalidAmount  = errors.New("invalid_amount")

	ErrInsufficientPoolFunds   = errors.New("insufficient_pool_funds")
	ErrInsufficientPoolBalance = errors.New("insufficient_pool_balance")
	ErrInsufficientPayment     = errors.New("insufficient_payment")

	ErrOverflow = errors.New("overflow")

	ErrInvalidVault        = errors.New("invalid_vault")
	ErrRoomNotActive       = errors.New("room_not_active")
	ErrRoomAlreadySettled  = errors.New("room_already_settled")
	ErrInvalidTokenAccount = errors.New("invalid_token_account")
	ErrRoomExists          = errors.New("room_exists")

	ErrSessionNotFound = errors.New("session_not_found")
	ErrRoomNotFound    = errors.New("room_not_found")
)

// Kind groups errors by how a caller should react to them.
type Kind string

const (
	KindAuthorization       Kind = "authorization"
	KindValidityWindow      Kind = "validity_window"
	KindInputDomain         Kind = "input_domain"
	KindResourceSufficiency Kind = "resource_sufficiency"
	KindArithmetic          Kind = "arithmetic"
	KindStateConsistency    Kind = "state_consistency"
	KindNotFound            Kind = "not_found"
	KindInternal            Kind = "internal"
)

var kinds = []struct {
	kind Kind
	errs []error
}{
	{KindAuthorization, []error{ErrUnauthorizedAdmin, ErrUnauthorizedRelayer, ErrNotSessionOwner, ErrUnauthorizedCreator, ErrInvalidSessionKey, ledger.ErrUnauthorized, chain.ErrInvalidSignature}},
	{KindValidityWindow, []error{ErrSessionExpired, ErrInvalidSessionDuration, ErrAuthorizationReplayed, chain.ErrStaleSignature}},
	{KindInputDomain, []error{ErrInvalidMemeID, ErrInvalidNetSize, ErrInvalidAmount, ErrInvalidConfig, ledger.ErrInvalidAmount}},
	{KindResourceSufficiency, []error{ErrInsufficientPoolFunds, ErrInsufficientPoolBalance, ErrInsufficientPayment, ledger.ErrInsufficientFunds}},
	{KindArithmetic, []error{ErrOverflow, ledger.ErrOverflow, store.ErrOutOfRange}},
	{KindStateConsistency, []error{ErrInvalidVault, ErrRoomNotActive, ErrRoomAlreadySettled, ErrInvalidTokenAccount, ErrRoomExists, ErrAlreadyInitialized, ErrNotInitialized, ledger.ErrMintMismatch}},
	{KindNotFound, []error{ErrSessionNotFound, ErrRoomNotFound, ledger.ErrAccountNotFound}},
}

// KindOf classifies err; unknown errors are KindInternal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		for _, target := range k.errs {
			if errors.Is(err, target) {
				return k.kind
			}
		}
	}
	return KindInternal
}
