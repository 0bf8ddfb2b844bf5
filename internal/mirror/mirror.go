package mirror

import (
	"context"
	"sync"

	"github.com/partnerhub/portal-server/internal/auth"
)

// Table defines the remote table operations a mirror synchronizes against
type Table[T any, C any, P any] interface {
	// List retrieves all rows of the table
	List(ctx context.Context) ([]T, error)

	// Create inserts a new row and returns it
	Create(ctx context.Context, create C) (T, error)

	// Update writes partial fields to a row and returns the new row
	Update(ctx context.Context, id string, patch P) (T, error)

	// Delete deletes a row
	Delete(ctx context.Context, id string) error
}

// Mirror maintains a local list mirror of a remote table.
// Mutations are applied to the local list strictly after the table confirmed
// them; a failed call leaves the list untouched. Every settled mutation emits
// a transient notification.
type Mirror[T any, C any, P any] struct {
	table  Table[T, C, P]
	id     func(item T) string
	label  string
	notify auth.NotifyFunc

	mtx     sync.RWMutex
	items   []T
	loading bool
}

// New creates a new mirror of the given table.
// The id function extracts the row ID of an item; label names the entity in
// notifications. The notify callback may be nil.
func New[T any, C any, P any](table Table[T, C, P], id func(item T) string, label string, notify auth.NotifyFunc) *Mirror[T, C, P] {
	if notify == nil {
		notify = func(auth.Notification) {}
	}
	return &Mirror[T, C, P]{
		table:  table,
		id:     id,
		label:  label,
		notify: notify,
	}
}

// Items returns a snapshot of the mirrored list
func (mirror *Mirror[T, C, P]) Items() []T {
	mirror.mtx.RLock()
	defer mirror.mtx.RUnlock()
	items := make([]T, len(mirror.items))
	copy(items, mirror.items)
	return items
}

// Loading returns whether a refetch is currently in flight
func (mirror *Mirror[T, C, P]) Loading() bool {
	mirror.mtx.RLock()
	defer mirror.mtx.RUnlock()
	return mirror.loading
}

// Refetch replaces the mirrored list with the current state of the table.
// On failure the old list is kept.
func (mirror *Mirror[T, C, P]) Refetch(ctx context.Context) error {
	mirror.mtx.Lock()
	mirror.loading = true
	mirror.mtx.Unlock()

	items, err := mirror.table.List(ctx)

	mirror.mtx.Lock()
	mirror.loading = false
	if err == nil {
		mirror.items = items
	}
	mirror.mtx.Unlock()

	if err != nil {
		mirror.notify(auth.Notification{
			Title:       "Could not load " + mirror.label + " list",
			Description: err.Error(),
			Error:       true,
		})
		return err
	}
	return nil
}

// Create inserts a new row into the table and, once confirmed, prepends it to
// the mirrored list
func (mirror *Mirror[T, C, P]) Create(ctx context.Context, create C) (T, error) {
	item, err := mirror.table.Create(ctx, create)
	if err != nil {
		var zero T
		mirror.notify(auth.Notification{
			Title:       "Could not create " + mirror.label,
			Description: err.Error(),
			Error:       true,
		})
		return zero, err
	}

	mirror.mtx.Lock()
	mirror.items = append([]T{item}, mirror.items...)
	mirror.mtx.Unlock()

	mirror.notify(auth.Notification{
		Title:       "Created " + mirror.label,
		Description: "The " + mirror.label + " has been created.",
	})
	return item, nil
}

// Update writes partial fields to a row and, once confirmed, replaces the
// matching item in the mirrored list
func (mirror *Mirror[T, C, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	item, err := mirror.table.Update(ctx, id, patch)
	if err != nil {
		var zero T
		mirror.notify(auth.Notification{
			Title:       "Could not update " + mirror.label,
			Description: err.Error(),
			Error:       true,
		})
		return zero, err
	}

	mirror.mtx.Lock()
	for i := range mirror.items {
		if mirror.id(mirror.items[i]) == id {
			mirror.items[i] = item
			break
		}
	}
	mirror.mtx.Unlock()

	mirror.notify(auth.Notification{
		Title:       "Updated " + mirror.label,
		Description: "The " + mirror.label + " has been updated.",
	})
	return item, nil
}

// Delete deletes a row and, once confirmed, removes the matching item from
// the mirrored list
func (mirror *Mirror[T, C, P]) Delete(ctx context.Context, id string) error {
	if err := mirror.table.Delete(ctx, id); err != nil {
		mirror.notify(auth.Notification{
			Title:       "Could not delete " + mirror.label,
			Description: err.Error(),
			Error:       true,
		})
		return err
	}

	mirror.mtx.Lock()
	for i := range mirror.items {
		if mirror.id(mirror.items[i]) == id {
			mirror.items = append(mirror.items[:i], mirror.items[i+1:]...)
			break
		}
	}
	mirror.mtx.Unlock()

	mirror.notify(auth.Notification{
		Title:       "Deleted " + mirror.label,
		Description: "The " + mirror.label + " has been deleted.",
	})
	return nil
}
