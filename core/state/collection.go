package state

import "sync"

// Entity is anything the cache can store: it is addressed by an opaque id.
type Entity interface {
	EntityID() string
}

// Collection is one in-memory entity collection.
//
// Items are never mutated in place: every write replaces the backing slice, so
// a slice handed out by All stays consistent for its reader.
type Collection[T Entity] struct {
	mu      sync.RWMutex
	items   []T
	prepend bool
}

// NewCollection returns an empty collection. When prepend is set, Put adds new
// items at the front (newest first), otherwise at the back.
func NewCollection[T Entity](prepend bool) *Collection[T] {
	return &Collection[T]{prepend: prepend}
}

// All returns a copy of the items.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append(make([]T, 0, len(c.items)), c.items...)
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) Find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// FindFunc returns the first item matching fn.
func (c *Collection[T]) FindFunc(fn func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if fn(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Set replaces the whole collection.
func (c *Collection[T]) Set(items []T) {
	cp := append(make([]T, 0, len(items)), items...)
	c.mu.Lock()
	c.items = cp
	c.mu.Unlock()
}

// Put adds item, or replaces the item with the same id in place.
func (c *Collection[T]) Put(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]T, 0, len(c.items)+1)
	if i := c.index(item.EntityID()); i >= 0 {
		next = append(next, c.items...)
		next[i] = item
	} else if c.prepend {
		next = append(append(next, item), c.items...)
	} else {
		next = append(append(next, c.items...), item)
	}
	c.items = next
}

// Update replaces the item with the given id by fn's result.
// fn runs under the write lock, so read-modify-write sequences on one item are serialized.
// It returns ErrNotFound if no item has this id, or fn's error unchanged.
func (c *Collection[T]) Update(id string, fn func(T) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	i := c.index(id)
	if i < 0 {
		return zero, ErrNotFound
	}
	updated, err := fn(c.items[i])
	if err != nil {
		return zero, err
	}
	next := append(make([]T, 0, len(c.items)), c.items...)
	next[i] = updated
	c.items = next
	return updated, nil
}

// Remove deletes the item with the given id and reports whether it existed.
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return false
	}
	next := make([]T, 0, len(c.items)-1)
	next = append(append(next, c.items[:i]...), c.items[i+1:]...)
	c.items = next
	return true
}

func (c *Collection[T]) index(id string) int {
	for i, item := range c.items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}
