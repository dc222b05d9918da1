// Package queue persists write actions captured while the upstream
// store is unreachable. The contract is deliberately small: append,
// list in insertion order, clear everything. Any list-shaped durable
// storage satisfies it.
package queue

import (
	"context"

	"stockflow/backend/internal/domain"
)

type Store interface {
	// Append adds an action to the tail of the queue. It never blocks
	// on drain state and imposes no size bound.
	Append(ctx context.Context, action domain.QueuedAction) error
	// List returns every queued action in insertion order.
	List(ctx context.Context) ([]domain.QueuedAction, error)
	// Clear removes the entire queue atomically.
	Clear(ctx context.Context) error
}
