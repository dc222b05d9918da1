// Package syncqueue replays offline write actions against the remote
// store once connectivity returns. Actions drain strictly in insertion
// order, one at a time; a sale that no longer fits current stock is
// skipped with a notification, while any transport failure aborts the
// run and leaves the whole queue in place for the next attempt.
package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"stockflow/backend/internal/domain"
	"stockflow/backend/internal/queue"
)

var ErrDrainInProgress = errors.New("drain already in progress")

// Remote is the write path the queue replays against.
type Remote interface {
	ListProducts(ctx context.Context, companyID string) ([]domain.Product, error)
	ProcessSale(ctx context.Context, req domain.SaleRequest) (string, error)
	AddRestock(ctx context.Context, req domain.RestockRequest) (string, error)
}

// ConflictFunc receives a human-readable message each time an action is
// skipped because current stock cannot cover it.
type ConflictFunc func(message string)

const (
	StateIdle     = "idle"
	StateDraining = "draining"
)

type Manager struct {
	store      queue.Store
	remote     Remote
	onConflict ConflictFunc

	mu       sync.Mutex
	draining bool
}

func New(store queue.Store, remote Remote, onConflict ConflictFunc) *Manager {
	if onConflict == nil {
		onConflict = func(string) {}
	}
	return &Manager{
		store:      store,
		remote:     remote,
		onConflict: onConflict,
	}
}

// Enqueue appends one deferred write to the durable queue. It never
// blocks on a drain in progress.
func (m *Manager) Enqueue(ctx context.Context, action domain.QueuedAction) error {
	switch action.Kind {
	case domain.ActionKindSale:
		if action.Sale == nil {
			return fmt.Errorf("sale action without payload")
		}
	case domain.ActionKindRestock:
		if action.Restock == nil {
			return fmt.Errorf("restock action without payload")
		}
	default:
		return fmt.Errorf("unknown action kind %q", action.Kind)
	}
	return m.store.Append(ctx, action)
}

// Pending returns the queued actions in insertion order without
// consuming them.
func (m *Manager) Pending(ctx context.Context) ([]domain.QueuedAction, error) {
	return m.store.List(ctx)
}

// State reports whether a drain is currently running.
func (m *Manager) State() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draining {
		return StateDraining
	}
	return StateIdle
}

// Drain replays every queued action in FIFO order. Sales are checked
// against freshly-read stock and skipped (with a conflict notification)
// when any line is short; restocks apply unconditionally. Payloads
// missing a company id are stamped with companyID before the write.
//
// The first remote error aborts the run and returns it; the queue is
// retained in full, including actions already applied this run, so a
// retry after a mid-drain failure may re-apply them. That all-or-nothing
// clearing is inherited behavior and is kept deliberately. Only a pass
// that processes every action (applied or skipped) clears the queue.
func (m *Manager) Drain(ctx context.Context, companyID string) error {
	m.mu.Lock()
	if m.draining {
		m.mu.Unlock()
		return ErrDrainInProgress
	}
	m.draining = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.draining = false
		m.mu.Unlock()
	}()

	actions, err := m.store.List(ctx)
	if err != nil {
		return err
	}

	for _, action := range actions {
		switch action.Kind {
		case domain.ActionKindSale:
			if err := m.replaySale(ctx, companyID, *action.Sale); err != nil {
				return err
			}
		case domain.ActionKindRestock:
			if err := m.replayRestock(ctx, companyID, *action.Restock); err != nil {
				return err
			}
		default:
			// Unknown kinds are dropped with a notification rather than
			// wedging the queue forever.
			m.onConflict(fmt.Sprintf("queued action of unknown kind %q dropped", action.Kind))
		}
	}

	return m.store.Clear(ctx)
}

func (m *Manager) replaySale(ctx context.Context, companyID string, req domain.SaleRequest) error {
	if req.CompanyID == "" {
		req.CompanyID = companyID
	}

	products, err := m.remote.ListProducts(ctx, req.CompanyID)
	if err != nil {
		return err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, line := range req.Items {
		product, ok := byID[line.ProductID]
		if !ok || product.Quantity < line.Quantity {
			name := line.ProductID
			if ok {
				name = product.Name
			}
			m.onConflict(fmt.Sprintf("sale for %s skipped: insufficient stock", name))
			return nil
		}
	}

	_, err = m.remote.ProcessSale(ctx, req)
	return err
}

func (m *Manager) replayRestock(ctx context.Context, companyID string, req domain.RestockRequest) error {
	if req.CompanyID == "" {
		req.CompanyID = companyID
	}
	// Restocking only increases inventory, so there is no precondition.
	_, err := m.remote.AddRestock(ctx, req)
	return err
}

// AutoSync consumes connectivity notifications until ctx is cancelled,
// triggering a drain on every offline-to-online transition. Run it in
// its own goroutine; cancelling ctx is the shutdown path, there is no
// implicit process-lifetime subscription.
func (m *Manager) AutoSync(ctx context.Context, companyID string, online <-chan bool) {
	wasOnline := true
	for {
		select {
		case <-ctx.Done():
			return
		case isOnline, ok := <-online:
			if !ok {
				return
			}
			if isOnline && !wasOnline {
				if err := m.Drain(ctx, companyID); err != nil {
					log.Printf("[syncqueue] WARN: drain after reconnect failed: %v", err)
				}
			}
			wasOnline = isOnline
		}
	}
}
