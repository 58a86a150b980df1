package storage

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"dogcare/internal/care"
)

// memoryStore keeps one immutable profile snapshot per owner in a sync.Map.
// Writers replace the whole value, so a write to one owner never takes a lock
// shared with another owner, and readers always see a complete entry.
type memoryStore struct {
	m      sync.Map // care.OwnerID -> care.Profile
	closed atomic.Bool
}

// NewMemory returns an empty in-process store.
func NewMemory() Store { return &memoryStore{} }

func (s *memoryStore) Upsert(ctx context.Context, owner care.OwnerID, p care.Profile) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	cp := p.Clone()
	cp.Owner = owner
	s.m.Store(owner, cp)
	return nil
}

func (s *memoryStore) Get(ctx context.Context, owner care.OwnerID) (care.Profile, bool, error) {
	if err := s.check(ctx); err != nil {
		return care.Profile{}, false, err
	}
	v, ok := s.m.Load(owner)
	if !ok {
		return care.Profile{}, false, nil
	}
	return v.(care.Profile).Clone(), true, nil
}

func (s *memoryStore) Delete(ctx context.Context, owner care.OwnerID) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	_, ok := s.m.LoadAndDelete(owner)
	return ok, nil
}

func (s *memoryStore) ForEach(ctx context.Context, fn func(owner care.OwnerID, p care.Profile) error) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	var snap []care.Profile
	s.m.Range(func(_, v any) bool {
		snap = append(snap, v.(care.Profile))
		return true
	})
	sort.Slice(snap, func(i, j int) bool { return snap[i].Owner < snap[j].Owner })

	for _, p := range snap {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(p.Owner, p.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (s *memoryStore) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *memoryStore) check(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if ctx != nil {
		return ctx.Err()
	}
	return nil
}
