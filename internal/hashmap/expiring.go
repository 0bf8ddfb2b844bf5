package hashmap

import (
	"sync"
	"time"

	"github.com/partnerhub/portal-server/internal/task"
)

type entry[V any] struct {
	value    V
	inserted time.Time
}

// ExpiringMap provides a thread safe map whose values expire after a fixed
// lifetime. Expired values are only removed once ScheduleCleanupTask was
// called; until then lookups simply treat them as absent.
type ExpiringMap[K comparable, V any] struct {
	mtx         sync.RWMutex
	entries     map[K]*entry[V]
	lifetime    time.Duration
	cleanupTask *task.RepeatingTask
}

// NewExpiring creates a new expiring map whose values exist for the given lifetime
func NewExpiring[K comparable, V any](lifetime time.Duration) *ExpiringMap[K, V] {
	return &ExpiringMap[K, V]{
		entries:  make(map[K]*entry[V]),
		lifetime: lifetime,
	}
}

// ScheduleCleanupTask schedules the task that removes expired values in the given interval.
// Call StopCleanupTask as soon as the map is no longer needed, as the map is
// not garbage collected otherwise.
func (obj *ExpiringMap[K, V]) ScheduleCleanupTask(tick time.Duration) {
	if obj.cleanupTask != nil {
		return
	}
	obj.cleanupTask = task.NewRepeating(func() {
		obj.mtx.Lock()
		defer obj.mtx.Unlock()
		for key, val := range obj.entries {
			if time.Since(val.inserted) > obj.lifetime {
				delete(obj.entries, key)
			}
		}
	}, tick)
	obj.cleanupTask.Start()
}

// StopCleanupTask stops the cleanup task
func (obj *ExpiringMap[K, V]) StopCleanupTask() {
	if obj.cleanupTask == nil {
		return
	}
	obj.cleanupTask.Stop(true)
	obj.cleanupTask = nil
}

// Lookup returns the unexpired value assigned to the given key and whether one was present
func (obj *ExpiringMap[K, V]) Lookup(key K) (V, bool) {
	obj.mtx.RLock()
	defer obj.mtx.RUnlock()
	val, ok := obj.entries[key]
	if !ok || time.Since(val.inserted) > obj.lifetime {
		var zero V
		return zero, false
	}
	return val.value, true
}

// Set sets a key-value pair
func (obj *ExpiringMap[K, V]) Set(key K, value V) {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	obj.entries[key] = &entry[V]{
		value:    value,
		inserted: time.Now(),
	}
}

// Unset deletes the value assigned to the given key
func (obj *ExpiringMap[K, V]) Unset(key K) {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	delete(obj.entries, key)
}

// Clear clears the whole map
func (obj *ExpiringMap[K, V]) Clear() {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	obj.entries = make(map[K]*entry[V])
}
