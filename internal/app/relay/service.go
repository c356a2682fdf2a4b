package relay

import (
	"context"
	"time"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/events"
	"meme-hunter/internal/program"
	"meme-hunter/internal/store"

	"github.com/rs/zerolog/log"
)

// Service is the relayer: it checks principal signatures, submits program
// operations as the configured relayer, and fans out committed hunts.
type Service struct {
	prog    *program.Program
	backend store.Backend
	pub     events.Publisher
	relayer chain.Address
	maxSkew time.Duration
	now     func() time.Time
}

type Options struct {
	Relayer          chain.Address
	SignatureMaxSkew time.Duration
	Publisher        events.Publisher
}

func NewService(prog *program.Program, backend store.Backend, opts Options) *Service {
	pub := opts.Publisher
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{
		prog:    prog,
		backend: backend,
		pub:     pub,
		relayer: opts.Relayer,
		maxSkew: opts.SignatureMaxSkew,
		now:     time.Now,
	}
}

func (s *Service) Relayer() chain.Address { return s.relayer }

func (s *Service) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// verify checks a principal-signed request: fresh issued_at and a valid
// signature by signer.
func (s *Service) verify(signer chain.Address, issuedAt int64, msg, sig []byte) error {
	if signer.IsZero() {
		return ErrInvalidRequest
	}
	if err := chain.CheckIssuedAt(issuedAt, s.now(), s.maxSkew); err != nil {
		return err
	}
	return chain.Verify(signer, msg, sig)
}

func (s *Service) Config(ctx context.Context) (*ConfigResponse, error) {
	cfg, err := s.prog.Config(ctx)
	if err != nil {
		return nil, err
	}
	return &ConfigResponse{
		Address:             cfg.Address,
		Authority:           cfg.Authority,
		Relayer:             cfg.Relayer,
		PoolAddress:         s.prog.PoolAddress(),
		ConcurrentThreshold: cfg.ConcurrentThreshold,
		OwnerFeePercent:     cfg.OwnerFeePercent,
	}, nil
}

func (s *Service) Pool(ctx context.Context) (*PoolResponse, error) {
	bal, err := s.prog.PoolBalance(ctx)
	if err != nil {
		return nil, err
	}
	return &PoolResponse{Address: s.prog.PoolAddress(), Balance: bal}, nil
}

func (s *Service) Window(ctx context.Context, slot uint64) (*WindowResponse, error) {
	w, err := s.prog.WindowStats(ctx, slot)
	if err != nil {
		return nil, err
	}
	return &WindowResponse{Address: w.Address, Slot: w.Slot, TxCount: w.TxCount}, nil
}

func (s *Service) Session(ctx context.Context, owner chain.Address) (*SessionResponse, error) {
	sess, err := s.prog.Session(ctx, owner)
	if err != nil {
		return nil, err
	}
	return sessionResponse(sess, s.prog.Now().UnixTimestamp), nil
}

func (s *Service) AuthorizeSession(ctx context.Context, in AuthorizeSessionInput) (*SessionResponse, error) {
	msg := chain.AuthorizeSessionMessage(in.Owner, in.SessionKey, in.DurationSecs, in.IssuedAt)
	if err := s.verify(in.Owner, in.IssuedAt, msg, in.Signature); err != nil {
		return nil, err
	}
	sess, err := s.prog.AuthorizeSession(ctx, in.Owner, in.SessionKey, in.DurationSecs, in.IssuedAt)
	if err != nil {
		return nil, err
	}
	metricSessionAuthorizeTotal.Add(1)
	log.Info().
		Str("owner", in.Owner.String()).
		Uint64("epoch", sess.Epoch).
		Int64("expires_at", sess.ExpiresAt).
		Msg("session authorized")
	return sessionResponse(sess, sess.CreatedAt), nil
}

func (s *Service) RevokeSession(ctx context.Context, in RevokeSessionInput) error {
	msg := chain.RevokeSessionMessage(in.Owner, in.IssuedAt)
	if err := s.verify(in.Owner, in.IssuedAt, msg, in.Signature); err != nil {
		return err
	}
	if err := s.prog.RevokeSession(ctx, in.Owner, in.Owner, in.IssuedAt); err != nil {
		return err
	}
	log.Info().Str("owner", in.Owner.String()).Msg("session revoked")
	return nil
}

// Hunt submits a session-key-signed hunt with this service as relayer.
func (s *Service) Hunt(ctx context.Context, in HuntInput) (*HuntResponse, error) {
	metricHuntTotal.Add(1)
	res, err := s.prog.Hunt(ctx, program.HuntRequest{
		Relayer:    s.relayer,
		Player:     in.Player,
		SessionKey: in.SessionKey,
		Signature:  in.Signature,
		MemeID:     in.MemeID,
		NetSize:    in.NetSize,
	})
	if err != nil {
		metricHuntErrorsTotal.Add(1)
		log.Debug().Err(err).Str("player", in.Player.String()).Str("kind", string(program.KindOf(err))).Msg("hunt rejected")
		return nil, err
	}
	if res.Success {
		metricHuntSuccessTotal.Add(1)
	}
	if res.AirdropTriggered {
		metricAirdropTotal.Add(1)
	}
	log.Info().
		Str("hunt_id", res.ID).
		Str("player", res.Player.String()).
		Uint8("meme_id", res.MemeID).
		Uint8("net_size", res.NetSize).
		Bool("success", res.Success).
		Uint64("reward", res.Reward).
		Bool("airdrop", res.AirdropTriggered).
		Uint64("slot", res.Slot).
		Msg("hunt resolved")

	s.publish(ctx, res)
	return huntResponse(res), nil
}

// publish runs after commit; a broker failure never fails the hunt.
func (s *Service) publish(ctx context.Context, res *program.HuntResult) {
	err := s.pub.PublishHunt(ctx, events.HuntEvent{
		ID:               res.ID,
		Player:           res.Player.String(),
		MemeID:           res.MemeID,
		NetSize:          res.NetSize,
		Success:          res.Success,
		Reward:           res.Reward,
		Cost:             res.Cost,
		AirdropTriggered: res.AirdropTriggered,
		AirdropReward:    res.AirdropReward,
		Nonce:            res.Nonce,
		Slot:             res.Slot,
		WindowCount:      res.WindowCount,
		At:               s.now().UTC(),
	})
	if err != nil {
		metricPublishErrorsTotal.Add(1)
		log.Warn().Err(err).Str("hunt_id", res.ID).Msg("publish hunt event failed")
	}
}

func (s *Service) HuntHistory(ctx context.Context, player chain.Address, limit, offset int) (*HuntHistoryResponse, error) {
	if player.IsZero() {
		return nil, ErrInvalidRequest
	}
	limit, offset = store.PageBounds(limit, offset)
	rows, err := s.backend.ListHuntRecords(ctx, player, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]HuntResponse, 0, len(rows))
	for _, r := range rows {
		createdAt := r.CreatedAt
		out = append(out, HuntResponse{
			ID:               r.ID,
			Player:           r.Player,
			MemeID:           r.MemeID,
			NetSize:          r.NetSize,
			Success:          r.Success,
			Reward:           r.Reward,
			Cost:             r.Cost,
			AirdropTriggered: r.AirdropTriggered,
			AirdropReward:    r.AirdropReward,
			Nonce:            r.Nonce,
			Slot:             r.Slot,
			CreatedAt:        &createdAt,
		})
	}
	return &HuntHistoryResponse{Items: out, Limit: limit, Offset: offset}, nil
}

func (s *Service) Room(ctx context.Context, addr chain.Address) (*RoomResponse, error) {
	room, err := s.prog.Room(ctx, addr)
	if err != nil {
		return nil, err
	}
	return roomResponse(room), nil
}

func (s *Service) CreateRoom(ctx context.Context, in CreateRoomInput) (*RoomResponse, error) {
	msg := chain.CreateRoomMessage(in.Creator, in.Mint, in.Source, in.Amount, in.RoomNonce, in.IssuedAt)
	if err := s.verify(in.Creator, in.IssuedAt, msg, in.Signature); err != nil {
		return nil, err
	}
	room, err := s.prog.CreateRoom(ctx, program.CreateRoomRequest{
		Creator: in.Creator,
		Mint:    in.Mint,
		Source:  in.Source,
		Amount:  in.Amount,
		Nonce:   in.RoomNonce,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("room", room.Address.String()).Str("creator", in.Creator.String()).Uint64("amount", in.Amount).Msg("room created")
	return roomResponse(room), nil
}

func (s *Service) SettleRoom(ctx context.Context, in SettleRoomInput) (*RoomResponse, error) {
	msg := chain.SettleRoomMessage(in.Creator, in.Room, in.Destination, in.IssuedAt)
	if err := s.verify(in.Creator, in.IssuedAt, msg, in.Signature); err != nil {
		return nil, err
	}
	room, err := s.prog.SettleRoom(ctx, in.Creator, in.Room, in.Destination)
	if err != nil {
		return nil, err
	}
	log.Info().Str("room", room.Address.String()).Msg("room settled")
	return roomResponse(room), nil
}

// Initialize creates the game config with admin as authority.
func (s *Service) Initialize(ctx context.Context, admin chain.Address, in InitializeInput, defaults program.Options) (*ConfigResponse, error) {
	opts := defaults
	if in.ConcurrentThreshold != nil {
		opts.ConcurrentThreshold = *in.ConcurrentThreshold
	}
	if in.OwnerFeePercent != nil {
		opts.OwnerFeePercent = *in.OwnerFeePercent
	}
	relayer := in.Relayer
	if relayer.IsZero() {
		relayer = s.relayer
	}
	if _, err := s.prog.Initialize(ctx, admin, relayer, opts); err != nil {
		return nil, err
	}
	log.Info().Str("admin", admin.String()).Str("relayer", relayer.String()).Msg("game initialized")
	return s.Config(ctx)
}

func (s *Service) Deposit(ctx context.Context, authority chain.Address, amount uint64) (*PoolResponse, error) {
	if err := s.prog.DepositToPool(ctx, authority, amount); err != nil {
		return nil, err
	}
	log.Info().Str("authority", authority.String()).Uint64("amount", amount).Msg("pool deposit")
	return s.Pool(ctx)
}

func (s *Service) ClaimReward(ctx context.Context, relayer, room chain.Address, in ClaimInput) (*RoomResponse, error) {
	r, err := s.prog.ClaimReward(ctx, relayer, room, in.Recipient, in.Amount)
	if err != nil {
		return nil, err
	}
	metricRoomClaimTotal.Add(1)
	log.Info().Str("room", room.String()).Str("recipient", in.Recipient.String()).Uint64("amount", in.Amount).Msg("room reward claimed")
	return roomResponse(r), nil
}

func (s *Service) Fund(ctx context.Context, in FundInput) (*FundResponse, error) {
	if in.To.IsZero() {
		return nil, ErrInvalidRequest
	}
	if in.Mint == nil || in.Mint.IsZero() {
		if err := s.prog.Fund(ctx, in.To, in.Amount); err != nil {
			return nil, err
		}
		bal, err := s.prog.Balance(ctx, in.To)
		if err != nil {
			return nil, err
		}
		return &FundResponse{Account: in.To, Amount: bal}, nil
	}
	acct, err := s.prog.MintTo(ctx, in.To, *in.Mint, in.Amount)
	if err != nil {
		return nil, err
	}
	ta, err := s.prog.TokenAccount(ctx, acct)
	if err != nil {
		return nil, err
	}
	return &FundResponse{Account: acct, Amount: ta.Amount}, nil
}

func (s *Service) Ledger(ctx context.Context, f store.LedgerFilter, limit, offset int) (*LedgerResponse, error) {
	limit, offset = store.PageBounds(limit, offset)
	rows, err := s.backend.ListLedgerEntries(ctx, f, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]LedgerEntryItem, 0, len(rows))
	for _, e := range rows {
		out = append(out, LedgerEntryItem{
			ID:        e.ID,
			Kind:      e.Kind,
			From:      e.From,
			To:        e.To,
			Authority: e.Authority,
			Mint:      e.Mint,
			Amount:    e.Amount,
			RefType:   e.RefType,
			RefID:     e.RefID,
			CreatedAt: e.CreatedAt,
		})
	}
	return &LedgerResponse{Items: out, Limit: limit, Offset: offset}, nil
}

func sessionResponse(s *store.SessionInfo, now int64) *SessionResponse {
	return &SessionResponse{
		Address:    s.Address,
		Owner:      s.Owner,
		SessionKey: s.SessionKey,
		CreatedAt:  s.CreatedAt,
		ExpiresAt:  s.ExpiresAt,
		Epoch:      s.Epoch,
		Nonce:      s.Nonce,
		Live:       program.IsLive(s, now),
	}
}

func huntResponse(r *program.HuntResult) *HuntResponse {
	return &HuntResponse{
		ID:               r.ID,
		Player:           r.Player,
		MemeID:           r.MemeID,
		NetSize:          r.NetSize,
		Success:          r.Success,
		Reward:           r.Reward,
		Cost:             r.Cost,
		AirdropTriggered: r.AirdropTriggered,
		AirdropReward:    r.AirdropReward,
		Nonce:            r.Nonce,
		Slot:             r.Slot,
		WindowCount:      r.WindowCount,
	}
}

func roomResponse(r *store.Room) *RoomResponse {
	return &RoomResponse{
		Address:         r.Address,
		Creator:         r.Creator,
		TokenMint:       r.TokenMint,
		TokenVault:      r.TokenVault,
		TotalDeposited:  r.TotalDeposited,
		RemainingAmount: r.RemainingAmount,
		IsActive:        r.IsActive,
		RoomNonce:       r.RoomNonce,
	}
}
