package properties

import (
	"sync"
	"sync/atomic"
)

// memoCell publishes a value exactly once. The flag store happens strictly
// after the value write, so a reader that observes the flag also observes the
// complete value; a reader that races with the store sees the cell as empty.
type memoCell[T any] struct {
	mu    sync.Mutex
	flag  atomic.Bool
	value T
}

func (c *memoCell[T]) load() (T, bool) {
	if c.flag.Load() {
		return c.value, true
	}
	var zero T
	return zero, false
}

func (c *memoCell[T]) store(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flag.Load() {
		return
	}
	c.value = v
	c.flag.Store(true)
}

func (c *memoCell[T]) done() bool {
	return c.flag.Load()
}
