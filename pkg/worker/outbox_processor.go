package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/repository"
	"github.com/medisuite/hms-api/pkg/messaging"
	"github.com/medisuite/hms-api/pkg/metrics"
)

const (
	defaultBatchSize    = 50
	defaultPollInterval = 5 * time.Second
	eventsChannel       = "hms.events"
)

// OutboxProcessor drains pending outbox events to the message broker.
// Events that fail to publish are marked failed and retried on the
// next poll.
type OutboxProcessor struct {
	repo         repository.OutboxRepository
	broker       messaging.Broker
	metrics      *metrics.Metrics
	batchSize    int
	pollInterval time.Duration
}

func NewOutboxProcessor(repo repository.OutboxRepository, broker messaging.Broker, m *metrics.Metrics) *OutboxProcessor {
	return &OutboxProcessor{
		repo:         repo,
		broker:       broker,
		metrics:      m,
		batchSize:    defaultBatchSize,
		pollInterval: defaultPollInterval,
	}
}

// Run polls until ctx is cancelled.
func (p *OutboxProcessor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				log.Error().Err(err).Msg("outbox batch failed")
			}
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) error {
	events, err := p.repo.GetPendingEvents(ctx, p.batchSize)
	if err != nil {
		return err
	}

	for _, e := range events {
		start := time.Now()
		err := p.publish(ctx, e)
		p.metrics.OutboxProcessingLatency.Observe(time.Since(start).Seconds())

		if err != nil {
			p.metrics.OutboxEventsFailed.Inc()
			msg := err.Error()
			if uerr := p.repo.UpdateStatus(ctx, e.ID, model.OutboxStatusFailed, &msg); uerr != nil {
				log.Error().Err(uerr).Str("event_id", e.ID.String()).Msg("failed to mark outbox event failed")
			}
			continue
		}

		p.metrics.OutboxEventsProcessed.Inc()
		if uerr := p.repo.UpdateStatus(ctx, e.ID, model.OutboxStatusProcessed, nil); uerr != nil {
			log.Error().Err(uerr).Str("event_id", e.ID.String()).Msg("failed to mark outbox event processed")
		}
	}
	return nil
}

func (p *OutboxProcessor) publish(ctx context.Context, e *model.OutboxEvent) error {
	return p.broker.Publish(ctx, eventsChannel, messaging.Message{
		Type:    e.EventType,
		Payload: json.RawMessage(e.Payload),
	})
}
