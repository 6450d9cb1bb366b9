package expression

import (
	"container/list"
	"sync"
)

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// lruCache is a bounded, goroutine-safe map evicting the least recently used
// entry. A size of zero disables caching.
type lruCache[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]*list.Element
	order *list.List
	size  int
}

func newLruCache[K comparable, V any](size int) *lruCache[K, V] {
	return &lruCache[K, V]{
		items: make(map[K]*list.Element, size),
		order: list.New(),
		size:  size,
	}
}

func (c *lruCache[K, V]) add(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.size <= 0 {
		return
	}
	if elem, ok := c.items[key]; ok {
		elem.Value = lruEntry[K, V]{key: key, value: value}
		c.order.MoveToBack(elem)
		return
	}
	elem := c.order.PushBack(lruEntry[K, V]{key: key, value: value})
	c.items[key] = elem
	if len(c.items) > c.size {
		front := c.order.Front()
		c.order.Remove(front)
		delete(c.items, front.Value.(lruEntry[K, V]).key)
	}
}

func (c *lruCache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToBack(elem)
	return elem.Value.(lruEntry[K, V]).value, true
}

// removeIf drops every entry satisfying the predicate.
func (c *lruCache[K, V]) removeIf(predicate func(K, V) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, elem := range c.items {
		if predicate(key, elem.Value.(lruEntry[K, V]).value) {
			delete(c.items, key)
			c.order.Remove(elem)
			removed++
		}
	}
	return removed
}

func (c *lruCache[K, V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
