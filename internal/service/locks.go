package service

import (
	"context"
	"sync"

	"duedesk-backend/internal/domain"
)

// keyedMutex serializes balance mutations per customer id. Operations on
// different customers proceed in parallel; two mutations on the same
// customer never interleave their read and write phases.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[int64]*lockEntry)}
}

// Lock blocks until the customer's exclusive section is free and returns the
// matching unlock.
func (k *keyedMutex) Lock(id int64) (unlock func()) {
	k.mu.Lock()
	e, ok := k.entries[id]
	if !ok {
		e = &lockEntry{}
		k.entries[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, id)
		}
		k.mu.Unlock()
	}
}

// settlementSlots reserves one in-flight gateway settlement per customer.
// A second attempt queues behind the first; if the caller's context expires
// while queued it gets ErrSettlementInProgress and never reaches the gateway.
type settlementSlots struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

type slot struct {
	sem  chan struct{}
	refs int
}

func newSettlementSlots() *settlementSlots {
	return &settlementSlots{slots: make(map[int64]*slot)}
}

func (s *settlementSlots) Acquire(ctx context.Context, id int64) (release func(), err error) {
	s.mu.Lock()
	sl, ok := s.slots[id]
	if !ok {
		sl = &slot{sem: make(chan struct{}, 1)}
		s.slots[id] = sl
	}
	sl.refs++
	s.mu.Unlock()

	select {
	case sl.sem <- struct{}{}:
		return func() {
			<-sl.sem
			s.drop(id, sl)
		}, nil
	case <-ctx.Done():
		s.drop(id, sl)
		return nil, domain.ErrSettlementInProgress
	}
}

func (s *settlementSlots) drop(id int64, sl *slot) {
	s.mu.Lock()
	sl.refs--
	if sl.refs == 0 {
		delete(s.slots, id)
	}
	s.mu.Unlock()
}
