package notify

import (
	"context"
	"errors"
	"time"

	"meme-hunter/internal/notify/platforms"

	"github.com/rs/zerolog/log"
)

var errCircuitOpen = errors.New("circuit_open")

func (n *Notifier) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.done:
			return
		case job := <-n.dispatchCh:
			metricQueueLen.Set(int64(len(n.dispatchCh)))
			n.processJob(ctx, job)
		}
	}
}

func (n *Notifier) processJob(ctx context.Context, job alertJob) {
	adapter := n.adapters[job.Target.Platform]
	if adapter == nil {
		metricDroppedTotal.Add(1)
		return
	}

	if err := n.beforeSend(job.key(), time.Now()); err != nil {
		metricCircuitOpenTotal.Add(1)
		n.retryOrDrop(job, err)
		return
	}

	err := adapter.Send(ctx, job.Target.Endpoint, job.Target.Secret, toPlatformMessage(job.Formatted))
	if err != nil {
		metricFailedTotal.Add(1)
		n.afterFailure(job.key(), time.Now())
		n.retryOrDrop(job, err)
		return
	}

	metricSentTotal.Add(1)
	n.afterSuccess(job.key())
}

func (n *Notifier) retryOrDrop(job alertJob, err error) bool {
	if job.Attempt >= n.cfg.RetryMax {
		metricRetryDroppedTotal.Add(1)
		log.Warn().Err(err).
			Str("kind", job.Alert.Kind).
			Str("platform", job.Target.Platform).
			Int("attempts", job.Attempt+1).
			Msg("alert delivery abandoned")
		return false
	}
	job.Attempt++
	metricRetryTotal.Add(1)
	delay := n.cfg.RetryBase * time.Duration(1<<(job.Attempt-1))
	n.retryQ.Enqueue(job, delay)
	return true
}

func (n *Notifier) beforeSend(key string, now time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	state := n.breakerByKey[key]
	if !state.openUntil.IsZero() && now.Before(state.openUntil) {
		return errCircuitOpen
	}
	return nil
}

func (n *Notifier) afterFailure(key string, now time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	state := n.breakerByKey[key]
	state.consecutiveFailures++
	if state.consecutiveFailures >= n.cfg.FailureThreshold {
		state.openUntil = now.Add(n.cfg.CircuitOpenDuration)
		state.consecutiveFailures = 0
	}
	n.breakerByKey[key] = state
}

func (n *Notifier) afterSuccess(key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.breakerByKey[key] = breakerState{}
}

func toPlatformMessage(msg FormattedMessage) platforms.Message {
	fields := make([]platforms.Field, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, platforms.Field{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return platforms.Message{
		Title:       msg.Title,
		Content:     msg.Content,
		Description: msg.Description,
		Color:       msg.Color,
		Timestamp:   msg.Timestamp,
		Footer:      msg.Footer,
		Fields:      fields,
	}
}
