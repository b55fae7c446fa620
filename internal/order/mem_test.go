package order_test

import (
	"context"
	"errors"
	"maps"
	"runtime"
	"slices"
	"sync"

	"github.com/kode4food/larder/internal/order"
)

type (
	// memRanger is an in-memory collection with copy-on-commit
	// transactions. It does not serialize transactions itself, so
	// overlapping transactions lose updates unless the caller serializes
	memRanger struct {
		parents   map[string]map[string]int
		failShift error
		mu        sync.Mutex
	}

	memTx struct {
		ranger    *memRanger
		positions map[string]int
	}

	memItem struct {
		id     string
		parent string
		pos    int
	}
)

var errInjected = errors.New("injected failure")

func newMemRanger(parents ...string) *memRanger {
	m := &memRanger{parents: map[string]map[string]int{}}
	for _, p := range parents {
		m.parents[p] = map[string]int{}
	}
	return m
}

func (m *memRanger) Name() string {
	return "mem"
}

func (m *memRanger) Atomic(
	_ context.Context, parentID string, fn func(order.Tx) error,
) error {
	m.mu.Lock()
	cur, ok := m.parents[parentID]
	if !ok {
		m.mu.Unlock()
		return order.ErrNotFound
	}
	tx := &memTx{ranger: m, positions: maps.Clone(cur)}
	m.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.parents[parentID] = tx.positions
	return nil
}

// Positions returns a copy of the positions of a parent keyed by item ID
func (m *memRanger) Positions(parentID string) map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.parents[parentID])
}

// Sorted returns the positions of a parent in ascending order
func (m *memRanger) Sorted(parentID string) []int {
	return slices.Sorted(maps.Values(m.Positions(parentID)))
}

func (t *memTx) Count(context.Context) (int, error) {
	runtime.Gosched()
	return len(t.positions), nil
}

func (t *memTx) Position(_ context.Context, id string) (int, error) {
	pos, ok := t.positions[id]
	if !ok {
		return 0, order.ErrNotFound
	}
	return pos, nil
}

func (t *memTx) Insert(_ context.Context, item order.Reorderable) error {
	t.positions[item.ItemID()] = item.Position()
	return nil
}

func (t *memTx) SetPosition(_ context.Context, id string, pos int) error {
	runtime.Gosched()
	t.positions[id] = pos
	return nil
}

func (t *memTx) Shift(_ context.Context, r order.Range, exclude string) error {
	if t.ranger.failShift != nil {
		return t.ranger.failShift
	}
	for id, pos := range t.positions {
		if id != exclude && pos >= r.Lo && pos <= r.Hi {
			t.positions[id] = pos + r.Delta
		}
	}
	return nil
}

func (t *memTx) Delete(_ context.Context, id string) error {
	delete(t.positions, id)
	return nil
}

func (i *memItem) ItemID() string      { return i.id }
func (i *memItem) ParentID() string    { return i.parent }
func (i *memItem) Position() int       { return i.pos }
func (i *memItem) SetPosition(pos int) { i.pos = pos }

func dense(n int) []int {
	res := make([]int, n)
	for i := range res {
		res[i] = i + 1
	}
	return res
}
