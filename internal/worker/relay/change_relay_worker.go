package relay

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/domain"
	"github.com/college-transport-tracker/internal/domain/repository"
	"github.com/college-transport-tracker/internal/worker"
)

const defaultRetryDelay = 200 * time.Millisecond

// ChangeRelayWorker ретранслирует уведомления об изменениях коллекции из
// PostgreSQL в Redis Stream, откуда их читают экземпляры API
type ChangeRelayWorker struct {
	*worker.BaseWorker
	feed       repository.ChangeFeed
	streams    repository.StreamRepository
	collection string
	stream     string
	maxRetries int
	retryDelay time.Duration
}

// NewChangeRelayWorker создает воркер для одной коллекции
func NewChangeRelayWorker(
	feed repository.ChangeFeed,
	streams repository.StreamRepository,
	collection string,
	maxRetries int,
	logger *zap.Logger,
) *ChangeRelayWorker {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &ChangeRelayWorker{
		BaseWorker: worker.NewBaseWorker("change-relay:"+collection, logger),
		feed:       feed,
		streams:    streams,
		collection: collection,
		stream:     domain.ChangeStreamName(collection),
		maxRetries: maxRetries,
		retryDelay: defaultRetryDelay,
	}
}

// Start подписывается на изменения и публикует каждое событие в стрим
func (w *ChangeRelayWorker) Start(ctx context.Context) error {
	logger := w.Logger()

	sub, err := w.feed.Subscribe(ctx, w.collection, domain.MaskAll)
	if err != nil {
		return fmt.Errorf("subscribe to %s changes: %w", w.collection, err)
	}
	defer func() {
		if err := sub.Close(); err != nil {
			logger.Error("Failed to close change subscription", zap.Error(err))
		}
	}()

	logger.Info("Relaying changes",
		zap.String("collection", w.collection),
		zap.String("stream", w.stream),
		zap.Int("max_retries", w.maxRetries))

	events := sub.Events()
	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case event, ok := <-events:
			if !ok {
				return fmt.Errorf("change subscription for %s closed", w.collection)
			}
			if err := w.publish(ctx, event); err != nil {
				logger.Error("Dropping change event",
					zap.String("type", string(event.Type)),
					zap.String("record_id", event.RecordID),
					zap.Error(err))
			}
		}
	}
}

// publish пытается опубликовать событие 1+maxRetries раз
func (w *ChangeRelayWorker) publish(ctx context.Context, event domain.ChangeEvent) error {
	var err error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(w.retryDelay * time.Duration(attempt)):
			case <-w.StopChan():
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err = w.streams.PublishToStream(ctx, w.stream, event); err == nil {
			w.Logger().Debug("Change event relayed",
				zap.String("type", string(event.Type)),
				zap.String("record_id", event.RecordID),
				zap.Int("attempt", attempt+1))
			return nil
		}

		w.Logger().Warn("Failed to publish change event",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return fmt.Errorf("publish to %s after %d attempts: %w", w.stream, w.maxRetries+1, err)
}
