package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/college-transport-tracker/internal/domain"
	"github.com/college-transport-tracker/internal/domain/repository"
)

// listenerPingInterval keeps idle LISTEN connections from being dropped silently.
const listenerPingInterval = 90 * time.Second

// ChannelName is the NOTIFY channel the migration trigger publishes to.
func ChannelName(collection string) string {
	return collection + "_changes"
}

// ChangeListener turns PostgreSQL NOTIFY messages into change events. Every
// subscription owns its own pq.Listener connection.
type ChangeListener struct {
	dsn          string
	minReconnect time.Duration
	maxReconnect time.Duration
	logger       *zap.Logger
}

func NewChangeListener(dsn string, minReconnect, maxReconnect time.Duration, logger *zap.Logger) *ChangeListener {
	return &ChangeListener{
		dsn:          dsn,
		minReconnect: minReconnect,
		maxReconnect: maxReconnect,
		logger:       logger,
	}
}

var _ repository.ChangeFeed = (*ChangeListener)(nil)

func (l *ChangeListener) Subscribe(ctx context.Context, collection string, mask domain.ChangeMask) (repository.Subscription, error) {
	channel := ChannelName(collection)
	logger := l.logger.With(zap.String("channel", channel))

	listener := pq.NewListener(l.dsn, l.minReconnect, l.maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			logger.Debug("Change listener connected")
		case pq.ListenerEventDisconnected:
			logger.Warn("Change listener disconnected", zap.Error(err))
		case pq.ListenerEventReconnected:
			logger.Info("Change listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Warn("Change listener connection attempt failed", zap.Error(err))
		}
	})

	if err := listener.Listen(channel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("listen on %s: %w", channel, err)
	}

	sub := &pgSubscription{
		listener:   listener,
		collection: collection,
		mask:       mask,
		logger:     logger,
		events:     make(chan domain.ChangeEvent, 32),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go sub.run()

	logger.Info("Subscribed to change notifications")
	return sub, nil
}

type pgSubscription struct {
	listener   *pq.Listener
	collection string
	mask       domain.ChangeMask
	logger     *zap.Logger

	events chan domain.ChangeEvent
	stop   chan struct{}
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func (s *pgSubscription) Events() <-chan domain.ChangeEvent {
	return s.events
}

// Close stops delivery, releases the LISTEN connection and closes Events.
func (s *pgSubscription) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
		s.closeErr = s.listener.Close()
		s.logger.Info("Change subscription released")
	})
	return s.closeErr
}

func (s *pgSubscription) run() {
	defer close(s.done)
	defer close(s.events)

	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case n, ok := <-s.listener.Notify:
			if !ok {
				return
			}
			ev, ok := s.decode(n)
			if !ok || !s.mask.Matches(ev.Type) {
				continue
			}
			select {
			case s.events <- ev:
			case <-s.stop:
				return
			}
		case <-ticker.C:
			go func() {
				if err := s.listener.Ping(); err != nil {
					s.logger.Debug("Change listener ping failed", zap.Error(err))
				}
			}()
		}
	}
}

// decode maps a notification to an event. A nil notification follows a
// reconnect and becomes a resync.
func (s *pgSubscription) decode(n *pq.Notification) (domain.ChangeEvent, bool) {
	if n == nil {
		return domain.ChangeEvent{
			Type:       domain.ChangeResync,
			Collection: s.collection,
			OccurredAt: time.Now().UTC(),
		}, true
	}

	ev, err := DecodeNotification(n.Extra)
	if err != nil {
		s.logger.Warn("Skipping malformed change notification",
			zap.String("payload", n.Extra),
			zap.Error(err))
		return domain.ChangeEvent{}, false
	}
	if ev.Collection == "" {
		ev.Collection = s.collection
	}
	return ev, true
}

// DecodeNotification parses the JSON payload written by the change trigger.
func DecodeNotification(payload string) (domain.ChangeEvent, error) {
	var ev domain.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return domain.ChangeEvent{}, fmt.Errorf("decode change payload: %w", err)
	}
	switch ev.Type {
	case domain.ChangeInsert, domain.ChangeUpdate, domain.ChangeDelete:
	default:
		return domain.ChangeEvent{}, fmt.Errorf("unknown change type %q", ev.Type)
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	return ev, nil
}
