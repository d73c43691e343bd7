package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/domain"
	"github.com/college-transport-tracker/internal/domain/repository"
)

const groupDestroyTimeout = 5 * time.Second

// StreamChangeFeed reads change events relayed into Redis Streams. Every
// subscription gets its own consumer group, so each API instance sees every
// event; the group is destroyed on Close.
type StreamChangeFeed struct {
	streams     repository.StreamRepository
	groupPrefix string
	logger      *zap.Logger
	seq         atomic.Uint64
}

func NewStreamChangeFeed(streams repository.StreamRepository, groupPrefix string, logger *zap.Logger) *StreamChangeFeed {
	return &StreamChangeFeed{
		streams:     streams,
		groupPrefix: groupPrefix,
		logger:      logger,
	}
}

var _ repository.ChangeFeed = (*StreamChangeFeed)(nil)

func (f *StreamChangeFeed) groupName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return fmt.Sprintf("%s:%s:%d:%d", f.groupPrefix, host, os.Getpid(), f.seq.Add(1))
}

func (f *StreamChangeFeed) Subscribe(ctx context.Context, collection string, mask domain.ChangeMask) (repository.Subscription, error) {
	stream := domain.ChangeStreamName(collection)
	group := f.groupName()

	if err := f.streams.CreateConsumerGroup(ctx, stream, group); err != nil {
		return nil, fmt.Errorf("create consumer group for %s: %w", stream, err)
	}

	consumeCtx, cancel := context.WithCancel(context.Background())
	msgs, err := f.streams.ConsumeStream(consumeCtx, stream, group, group)
	if err != nil {
		cancel()
		f.destroyGroup(stream, group)
		return nil, fmt.Errorf("consume %s: %w", stream, err)
	}

	sub := &streamSubscription{
		feed:       f,
		stream:     stream,
		group:      group,
		collection: collection,
		mask:       mask,
		logger:     f.logger.With(zap.String("stream", stream), zap.String("group", group)),
		cancel:     cancel,
		events:     make(chan domain.ChangeEvent, 32),
		done:       make(chan struct{}),
	}
	go sub.run(consumeCtx, msgs)

	sub.logger.Info("Subscribed to change stream")
	return sub, nil
}

func (f *StreamChangeFeed) destroyGroup(stream, group string) error {
	ctx, cancel := context.WithTimeout(context.Background(), groupDestroyTimeout)
	defer cancel()
	return f.streams.DestroyConsumerGroup(ctx, stream, group)
}

type streamSubscription struct {
	feed       *StreamChangeFeed
	stream     string
	group      string
	collection string
	mask       domain.ChangeMask
	logger     *zap.Logger

	cancel context.CancelFunc
	events chan domain.ChangeEvent
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func (s *streamSubscription) Events() <-chan domain.ChangeEvent {
	return s.events
}

func (s *streamSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
		s.closeErr = s.feed.destroyGroup(s.stream, s.group)
		s.logger.Info("Change subscription released")
	})
	return s.closeErr
}

func (s *streamSubscription) run(ctx context.Context, msgs <-chan domain.StreamMessage) {
	defer close(s.done)
	defer close(s.events)

	for msg := range msgs {
		ev, ok := s.decode(msg)

		// the group is private, a message is never redelivered elsewhere
		ackCtx, cancel := context.WithTimeout(context.Background(), groupDestroyTimeout)
		if err := s.feed.streams.AckMessage(ackCtx, s.stream, s.group, msg.ID); err != nil {
			s.logger.Warn("Failed to ack change message", zap.String("message_id", msg.ID), zap.Error(err))
		}
		cancel()

		if !ok {
			continue
		}

		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (s *streamSubscription) decode(msg domain.StreamMessage) (domain.ChangeEvent, bool) {
	var ev domain.ChangeEvent
	if err := json.Unmarshal([]byte(msg.Data), &ev); err != nil {
		s.logger.Warn("Skipping malformed change message",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return domain.ChangeEvent{}, false
	}
	if ev.Collection != "" && ev.Collection != s.collection {
		return domain.ChangeEvent{}, false
	}
	if !s.mask.Matches(ev.Type) {
		return domain.ChangeEvent{}, false
	}
	ev.Collection = s.collection
	return ev, true
}
