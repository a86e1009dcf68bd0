package watch

import "sync"

// Cell holds a single observable value. Listeners run synchronously, in
// registration order, only when Set stores a different value.
type Cell[T comparable] struct {
	mu        sync.RWMutex
	value     T
	nextID    int
	listeners []cellListener[T]
}

type cellListener[T comparable] struct {
	id int
	fn func(value, previous T)
}

func NewCell[T comparable](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.value
}

// Set stores value and reports whether it differed from the current one.
func (c *Cell[T]) Set(value T) bool {
	c.mu.Lock()
	previous := c.value
	if previous == value {
		c.mu.Unlock()

		return false
	}
	c.value = value
	listeners := make([]cellListener[T], len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, l := range listeners {
		l.fn(value, previous)
	}

	return true
}

// Subscribe registers fn and returns a function removing it.
func (c *Cell[T]) Subscribe(fn func(value, previous T)) func() {
	if fn == nil {
		return func() {}
	}

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, cellListener[T]{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, l := range c.listeners {
				if l.id == id {
					c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)

					return
				}
			}
		})
	}
}
