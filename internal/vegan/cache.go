package vegan

import (
	"container/list"
	"sync"
)

type (
	// verdictCache remembers lookup results for the most recently checked
	// ingredients. A size of zero disables caching
	verdictCache struct {
		entries map[string]*list.Element
		lru     *list.List
		size    int
		mu      sync.Mutex
	}

	verdict struct {
		ingredient string
		vegan      bool
	}
)

func newVerdictCache(size int) *verdictCache {
	return &verdictCache{
		entries: map[string]*list.Element{},
		lru:     list.New(),
		size:    size,
	}
}

func (c *verdictCache) get(ingredient string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[ingredient]
	if !ok {
		return false, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*verdict).vegan, true
}

func (c *verdictCache) put(ingredient string, vegan bool) {
	if c.size <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[ingredient]; ok {
		elem.Value.(*verdict).vegan = vegan
		c.lru.MoveToFront(elem)
		return
	}

	c.entries[ingredient] = c.lru.PushFront(&verdict{
		ingredient: ingredient,
		vegan:      vegan,
	})
	if c.lru.Len() > c.size {
		c.evictLast()
	}
}

func (c *verdictCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *verdictCache) evictLast() {
	back := c.lru.Back()
	if back != nil {
		c.lru.Remove(back)
		delete(c.entries, back.Value.(*verdict).ingredient)
	}
}
