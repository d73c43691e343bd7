package repository

import (
	"context"

	"github.com/college-transport-tracker/internal/domain"
)

// ChangeFeed - подписка на уведомления об изменениях коллекции
type ChangeFeed interface {
	// Subscribe открывает подписку на изменения collection, отфильтрованные mask
	Subscribe(ctx context.Context, collection string, mask domain.ChangeMask) (Subscription, error)
}

// Subscription delivers events until Close. Close is idempotent, the events
// channel is closed once the subscription has released its resources.
type Subscription interface {
	Events() <-chan domain.ChangeEvent
	Close() error
}
