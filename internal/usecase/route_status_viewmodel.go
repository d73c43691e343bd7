package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/college-transport-tracker/internal/domain"
	"github.com/college-transport-tracker/internal/domain/repository"
	apperrors "github.com/college-transport-tracker/internal/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrViewModelDisposed = errors.New("route status view model is disposed")
	ErrViewModelStarted  = errors.New("route status view model is already started")
	ErrNoChangeFeed      = errors.New("route status view model has no change feed")
)

// Snapshot - отображаемое состояние view model
type Snapshot struct {
	Statuses []domain.RouteStatus
	// Sequence is the number of the refresh that produced Statuses, 0 when
	// the state was restored from cache.
	Sequence  uint64
	UpdatedAt time.Time
	Loaded    bool
}

// Notice - человекочитаемое уведомление об ошибке для слоя отображения
type Notice struct {
	Code    string    `json:"code"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Update carries either a new snapshot or a notice.
type Update struct {
	Snapshot *Snapshot
	Notice   *Notice
}

// RouteStatusViewModel keeps the list of route statuses current.
//
// Every refresh takes a sequence number when it starts; its result is applied
// only if no refresh that started later has been applied already. Change
// notifications are handled by a single goroutine, one at a time, and
// notifications that queue up while a refresh runs are folded into the next one.
type RouteStatusViewModel struct {
	routeRepo      repository.RouteRepository
	locationRepo   repository.LocationRepository
	feed           repository.ChangeFeed
	cache          repository.RouteStatusCache
	logger         *zap.Logger
	cacheTTL       time.Duration
	refreshTimeout time.Duration
	now            func() time.Time

	seq atomic.Uint64

	mu        sync.RWMutex
	snapshot  Snapshot
	watchers  map[uint64]chan Update
	watcherID uint64
	closed    bool

	cacheMu   sync.Mutex
	cachedSeq uint64

	lifecycleMu sync.Mutex
	sub         repository.Subscription
	cancel      context.CancelFunc
	done        chan struct{}
	disposed    bool
	disposeOnce sync.Once
	disposeErr  error
}

// NewRouteStatusViewModel creates a view model. cache may be nil.
func NewRouteStatusViewModel(
	routeRepo repository.RouteRepository,
	locationRepo repository.LocationRepository,
	feed repository.ChangeFeed,
	cache repository.RouteStatusCache,
	logger *zap.Logger,
	cacheTTL time.Duration,
	refreshTimeout time.Duration,
) *RouteStatusViewModel {
	return &RouteStatusViewModel{
		routeRepo:      routeRepo,
		locationRepo:   locationRepo,
		feed:           feed,
		cache:          cache,
		logger:         logger,
		cacheTTL:       cacheTTL,
		refreshTimeout: refreshTimeout,
		now:            time.Now,
		watchers:       make(map[uint64]chan Update),
	}
}

// Start subscribes to vehicle location changes and runs the initial refresh.
// A failed initial refresh is reported to watchers, not returned.
func (vm *RouteStatusViewModel) Start(ctx context.Context) error {
	vm.lifecycleMu.Lock()
	defer vm.lifecycleMu.Unlock()

	if vm.disposed {
		return ErrViewModelDisposed
	}
	if vm.sub != nil {
		return ErrViewModelStarted
	}
	if vm.feed == nil {
		return ErrNoChangeFeed
	}

	vm.warmFromCache(ctx)

	sub, err := vm.feed.Subscribe(ctx, domain.CollectionVehicleLocations, domain.MaskAll)
	if err != nil {
		return fmt.Errorf("subscribe to %s changes: %w", domain.CollectionVehicleLocations, err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	vm.sub = sub
	vm.cancel = cancel
	vm.done = make(chan struct{})

	go vm.listen(loopCtx, sub.Events(), vm.done)

	vm.logger.Info("Route status view model started",
		zap.String("collection", domain.CollectionVehicleLocations))

	if _, err := vm.Refresh(ctx); err != nil {
		vm.logger.Warn("Initial route status refresh failed", zap.Error(err))
	}

	return nil
}

// Refresh re-fetches routes and locations and rebuilds the statuses. On
// failure the displayed state is left untouched and a FetchFailure is returned.
// The returned snapshot is the displayed state after this refresh, which may
// belong to a newer refresh.
func (vm *RouteStatusViewModel) Refresh(ctx context.Context) (*Snapshot, error) {
	seq := vm.seq.Add(1)

	routes, err := vm.routeRepo.ListActive(ctx)
	if err != nil {
		return nil, vm.fetchFailed(seq, domain.CollectionRoutes, err)
	}

	locations, err := vm.locationRepo.ListNewestFirst(ctx)
	if err != nil {
		return nil, vm.fetchFailed(seq, domain.CollectionVehicleLocations, err)
	}

	statuses := BuildRouteStatuses(routes, locations)

	if vm.apply(seq, statuses) {
		vm.logger.Debug("Route statuses refreshed",
			zap.Uint64("sequence", seq),
			zap.Int("routes", len(statuses)),
			zap.Int("locations", len(locations)))
		vm.storeInCache(ctx, seq, statuses)
	} else {
		vm.logger.Debug("Discarding superseded refresh result", zap.Uint64("sequence", seq))
	}

	snap := vm.Snapshot()
	return &snap, nil
}

// Snapshot returns a copy of the displayed state.
func (vm *RouteStatusViewModel) Snapshot() Snapshot {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.snapshotLocked()
}

// Watch registers an observer. The channel holds at most one pending update,
// a slow reader only sees the latest one. The current snapshot, if loaded,
// is delivered first. The channel is closed by cancel or Dispose.
func (vm *RouteStatusViewModel) Watch() (<-chan Update, func()) {
	ch := make(chan Update, 1)

	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		close(ch)
		return ch, func() {}
	}

	id := vm.watcherID
	vm.watcherID++
	vm.watchers[id] = ch
	if vm.snapshot.Loaded {
		snap := vm.snapshotLocked()
		ch <- Update{Snapshot: &snap}
	}
	vm.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			vm.mu.Lock()
			defer vm.mu.Unlock()
			if c, ok := vm.watchers[id]; ok {
				delete(vm.watchers, id)
				close(c)
			}
		})
	}

	return ch, cancel
}

// Dispose releases the subscription exactly once and stops the listener.
// No notification triggers a refresh after Dispose returns.
func (vm *RouteStatusViewModel) Dispose() error {
	vm.disposeOnce.Do(func() {
		vm.lifecycleMu.Lock()
		vm.disposed = true
		sub, cancel, done := vm.sub, vm.cancel, vm.done
		vm.lifecycleMu.Unlock()

		if cancel != nil {
			cancel()
		}
		if sub != nil {
			if err := sub.Close(); err != nil {
				vm.logger.Error("Failed to release change subscription", zap.Error(err))
				vm.disposeErr = err
			}
		}
		if done != nil {
			<-done
		}

		vm.mu.Lock()
		vm.closed = true
		for id, ch := range vm.watchers {
			delete(vm.watchers, id)
			close(ch)
		}
		vm.mu.Unlock()

		vm.logger.Info("Route status view model disposed")
	})

	return vm.disposeErr
}

func (vm *RouteStatusViewModel) listen(ctx context.Context, events <-chan domain.ChangeEvent, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				vm.logger.Warn("Change feed closed, live updates stopped")
				return
			}

			pending, closed := drainPending(events)
			if ctx.Err() != nil {
				return
			}

			vm.logger.Debug("Change notification received",
				zap.String("type", string(ev.Type)),
				zap.String("record_id", ev.RecordID),
				zap.Int("coalesced", pending))

			rctx, cancel := context.WithTimeout(ctx, vm.refreshTimeout)
			_, err := vm.Refresh(rctx)
			cancel()
			if err != nil {
				vm.logger.Warn("Refresh after change notification failed", zap.Error(err))
			}

			if closed {
				vm.logger.Warn("Change feed closed, live updates stopped")
				return
			}
		}
	}
}

// drainPending consumes notifications already queued; a refresh started after
// them covers them all.
func drainPending(events <-chan domain.ChangeEvent) (n int, closed bool) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return n, true
			}
			n++
		default:
			return n, false
		}
	}
}

func (vm *RouteStatusViewModel) apply(seq uint64, statuses []domain.RouteStatus) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.snapshot.Loaded && seq <= vm.snapshot.Sequence {
		return false
	}

	vm.snapshot = Snapshot{
		Statuses:  statuses,
		Sequence:  seq,
		UpdatedAt: vm.now(),
		Loaded:    true,
	}

	snap := vm.snapshotLocked()
	vm.broadcastLocked(Update{Snapshot: &snap})
	return true
}

func (vm *RouteStatusViewModel) fetchFailed(seq uint64, collection string, err error) error {
	appErr := apperrors.ErrFetchFailure.Wrap(fmt.Errorf("fetch %s: %w", collection, err))

	vm.logger.Error("Failed to fetch route statuses",
		zap.String("collection", collection),
		zap.Uint64("sequence", seq),
		zap.Error(err))

	vm.mu.Lock()
	// a newer successful refresh already superseded this one
	if !vm.snapshot.Loaded || seq > vm.snapshot.Sequence {
		vm.broadcastLocked(Update{Notice: &Notice{
			Code:    apperrors.CodeFetchFailure,
			Title:   "Error loading routes",
			Message: apperrors.ErrFetchFailure.Message,
			At:      vm.now(),
		}})
	}
	vm.mu.Unlock()

	return appErr
}

func (vm *RouteStatusViewModel) broadcastLocked(u Update) {
	for _, ch := range vm.watchers {
		select {
		case ch <- u:
			continue
		default:
		}
		// replace the stale pending update
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}

func (vm *RouteStatusViewModel) snapshotLocked() Snapshot {
	snap := vm.snapshot
	if vm.snapshot.Statuses != nil {
		snap.Statuses = make([]domain.RouteStatus, len(vm.snapshot.Statuses))
		copy(snap.Statuses, vm.snapshot.Statuses)
	}
	return snap
}

func (vm *RouteStatusViewModel) warmFromCache(ctx context.Context) {
	if vm.cache == nil {
		return
	}

	statuses, err := vm.cache.GetRouteStatuses(ctx)
	if err != nil {
		vm.logger.Warn("Failed to read cached route statuses", zap.Error(err))
		return
	}
	if statuses == nil {
		return
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.snapshot.Loaded {
		return
	}
	vm.snapshot = Snapshot{
		Statuses:  statuses,
		UpdatedAt: vm.now(),
		Loaded:    true,
	}
	vm.logger.Info("Route statuses restored from cache", zap.Int("routes", len(statuses)))
}

func (vm *RouteStatusViewModel) storeInCache(ctx context.Context, seq uint64, statuses []domain.RouteStatus) {
	if vm.cache == nil {
		return
	}

	vm.cacheMu.Lock()
	defer vm.cacheMu.Unlock()

	if seq <= vm.cachedSeq {
		return
	}
	if err := vm.cache.SetRouteStatuses(ctx, statuses, vm.cacheTTL); err != nil {
		vm.logger.Warn("Failed to cache route statuses", zap.Error(err))
		return
	}
	vm.cachedSeq = seq
}
