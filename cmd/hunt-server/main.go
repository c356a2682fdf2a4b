package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"meme-hunter/internal/app/relay"
	"meme-hunter/internal/chain"
	"meme-hunter/internal/config"
	"meme-hunter/internal/events"
	"meme-hunter/internal/logging"
	"meme-hunter/internal/mcpserver"
	"meme-hunter/internal/notify"
	"meme-hunter/internal/program"
	"meme-hunter/internal/store"
	httptransport "meme-hunter/internal/transport/http"
	"meme-hunter/internal/ws"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg.Server)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer backend.Close()

	genesis := time.Now()
	if cfg.Server.GenesisUnix > 0 {
		genesis = time.Unix(cfg.Server.GenesisUnix, 0)
	}
	clock := chain.NewSlotClock(genesis, cfg.Server.SlotDuration)
	prog := program.New(cfg.Server.ProgramID, backend, clock)
	prog.StartWindowJanitor(ctx, cfg.Server.WindowJanitorInterval, cfg.Server.WindowRetentionSlots)

	notifyCfg, err := notify.ConfigFromServer(cfg.Server)
	if err != nil {
		log.Fatal().Err(err).Msg("notify config invalid")
	}
	notifier := notify.New(notifyCfg)
	notifier.Start(ctx)

	feed := ws.NewServer()
	pub := events.Multi{feed, notifier, openPublisher(ctx, cfg.Server)}
	defer pub.Close()

	svc := relay.NewService(prog, backend, relay.Options{
		Relayer:          cfg.Server.RelayerAddress,
		SignatureMaxSkew: cfg.Server.SignatureMaxSkew,
		Publisher:        pub,
	})
	r := httptransport.NewRouter(svc, httptransport.RouterOptions{
		AdminJWTSecret: cfg.Server.AdminJWTSecret,
		HuntFeed:       http.HandlerFunc(feed.HandleWS),
		MCP:            mcpserver.New(svc).Handler(),
		GameDefaults: program.Options{
			ConcurrentThreshold: cfg.Game.ConcurrentThreshold,
			OwnerFeePercent:     cfg.Game.OwnerFeePercent,
		},
	})
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", cfg.Server.HTTPAddr).
		Str("program_id", cfg.Server.ProgramID.String()).
		Str("relayer", cfg.Server.RelayerAddress.String()).
		Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

// openBackend picks Postgres when a DSN is configured and the in-memory
// ledger otherwise.
func openBackend(ctx context.Context, cfg config.ServerConfig) (store.Backend, error) {
	if cfg.PostgresDSN == "" {
		log.Warn().Msg("POSTGRES_DSN not set; using in-memory ledger")
		return store.NewMemory(), nil
	}
	if cfg.MigrateOnStart {
		if err := store.Migrate(cfg.PostgresDSN, "up"); err != nil {
			return nil, err
		}
		log.Info().Msg("migrations applied")
	}
	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := st.Ping(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func openPublisher(ctx context.Context, cfg config.ServerConfig) events.Publisher {
	if cfg.RedisAddr == "" {
		return events.Nop{}
	}
	client, err := events.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable; hunt events disabled")
		return events.Nop{}
	}
	log.Info().Str("channel", cfg.RedisHuntChannel).Msg("publishing hunt events to redis")
	return events.NewRedisPublisher(client, cfg.RedisHuntChannel)
}
