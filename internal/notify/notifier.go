package notify

import (
	"context"
	"sync"
	"time"

	"meme-hunter/internal/events"
	"meme-hunter/internal/notify/platforms"

	"github.com/rs/zerolog/log"
)

type breakerState struct {
	consecutiveFailures int
	openUntil           time.Time
}

// Notifier is an events.Publisher that turns notable hunts into webhook
// alerts. Delivery is asynchronous; PublishHunt never blocks the caller.
type Notifier struct {
	cfg      Config
	router   Router
	adapters map[string]platforms.Adapter

	dispatchCh chan alertJob
	retryQ     *retryQueue
	done       chan struct{}
	closeOnce  sync.Once

	mu           sync.Mutex
	started      bool
	breakerByKey map[string]breakerState
}

func New(cfg Config) *Notifier {
	client := platforms.NewHTTPClient(cfg.RequestTimeout)
	adapters := map[string]platforms.Adapter{
		"discord": platforms.NewDiscordAdapter(client),
		"feishu":  platforms.NewFeishuAdapter(client),
	}
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = 1024
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.CircuitOpenDuration <= 0 {
		cfg.CircuitOpenDuration = 30 * time.Second
	}

	n := &Notifier{
		cfg:          cfg,
		router:       Router{},
		adapters:     adapters,
		dispatchCh:   make(chan alertJob, cfg.DispatchBuffer),
		done:         make(chan struct{}),
		breakerByKey: map[string]breakerState{},
	}
	n.retryQ = newRetryQueue(n.dispatchCh, n.done)
	return n
}

func (n *Notifier) Start(ctx context.Context) {
	if !n.cfg.Enabled {
		return
	}
	n.mu.Lock()
	if n.started {
		n.mu.Unlock()
		return
	}
	n.started = true
	n.mu.Unlock()

	for i := 0; i < n.cfg.Workers; i++ {
		go n.worker(ctx)
	}
	go func() {
		select {
		case <-ctx.Done():
			n.stop()
		case <-n.done:
		}
	}()
	log.Info().Int("targets", len(n.cfg.Targets)).Int("workers", n.cfg.Workers).Msg("hunt notifier started")
}

func (n *Notifier) PublishHunt(_ context.Context, ev events.HuntEvent) error {
	if !n.cfg.Enabled || len(n.cfg.Targets) == 0 {
		return nil
	}
	for _, alert := range Classify(ev, n.cfg.BigWinMin) {
		formatted, ok := FormatMessage(alert)
		if !ok {
			continue
		}
		for _, target := range n.router.MatchTargets(n.cfg.Targets, alert) {
			n.enqueue(alertJob{Target: target, Alert: alert, Formatted: formatted})
		}
	}
	return nil
}

func (n *Notifier) Close() error {
	n.stop()
	return nil
}

func (n *Notifier) stop() {
	n.closeOnce.Do(func() { close(n.done) })
}

func (n *Notifier) enqueue(job alertJob) bool {
	select {
	case <-n.done:
		metricDroppedTotal.Add(1)
		return false
	default:
	}
	select {
	case n.dispatchCh <- job:
		metricQueuedTotal.Add(1)
		metricQueueLen.Set(int64(len(n.dispatchCh)))
		return true
	default:
		metricDroppedTotal.Add(1)
		log.Warn().Str("kind", job.Alert.Kind).Str("platform", job.Target.Platform).Msg("notify queue full, alert dropped")
		return false
	}
}
