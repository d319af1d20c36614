package pos

import (
	"sort"
	"sync"
)

// productLocks serializes checkout commits per product. Locks are
// acquired in ascending product-id order so two carts sharing products
// cannot deadlock.
type productLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newProductLocks() *productLocks {
	return &productLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *productLocks) get(id uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// lockAll acquires the locks for every id and returns the matching
// release function
func (l *productLocks) lockAll(ids []uint) func() {
	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	ordered := make([]uint, 0, len(unique))
	for id := range unique {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	held := make([]*sync.Mutex, 0, len(ordered))
	for _, id := range ordered {
		m := l.get(id)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
