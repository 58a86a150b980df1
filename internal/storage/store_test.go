package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dogcare/internal/care"
	logx "dogcare/pkg/logx"
)

func openDrivers(t *testing.T) map[string]Store {
	t.Helper()
	out := map[string]Store{}
	for _, cfg := range []Config{
		{Driver: "memory"},
		{Driver: "sqlite"},
		{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "data", "dogcare.db"), BusyTimeout: time.Second},
	} {
		st, err := Open(cfg, logx.Nop())
		if err != nil {
			t.Fatalf("Open(%+v): %v", cfg, err)
		}
		name := cfg.Driver
		if cfg.Path != "" {
			name += "-file"
		}
		out[name] = st
		t.Cleanup(func() { _ = st.Close() })
	}
	return out
}

func sample(name string) care.Profile {
	return care.Profile{
		Name:   name,
		Weight: "12.5",
		Treatments: []care.Treatment{
			{Kind: care.KindVaccination, Date: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), IntervalDays: 365},
			{Kind: care.KindFleaTick, Date: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), IntervalDays: 30},
		},
	}
}

func TestStoreContract(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for name, st := range openDrivers(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			if _, ok, err := st.Get(ctx, 1); err != nil || ok {
				t.Fatalf("Get on empty store = ok=%v err=%v", ok, err)
			}

			if err := st.Upsert(ctx, 1, sample("Рекс")); err != nil {
				t.Fatalf("Upsert: %v", err)
			}
			got, ok, err := st.Get(ctx, 1)
			if err != nil || !ok {
				t.Fatalf("Get = ok=%v err=%v", ok, err)
			}
			if got.Owner != 1 || got.Name != "Рекс" || got.Weight != "12.5" || len(got.Treatments) != 2 {
				t.Fatalf("unexpected profile: %+v", got)
			}
			if got.Treatments[0].Kind != care.KindVaccination || got.Treatments[1].Kind != care.KindFleaTick {
				t.Fatalf("treatment order not preserved: %+v", got.Treatments)
			}
			if !got.Treatments[1].NextDue().Equal(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("NextDue = %v", got.Treatments[1].NextDue())
			}

			// Full replacement, no merge.
			repl := care.Profile{Name: "Бим", Weight: "3"}
			if err := st.Upsert(ctx, 1, repl); err != nil {
				t.Fatalf("Upsert replace: %v", err)
			}
			got, _, _ = st.Get(ctx, 1)
			if got.Name != "Бим" || len(got.Treatments) != 0 {
				t.Fatalf("replace merged old data: %+v", got)
			}

			existed, err := st.Delete(ctx, 1)
			if err != nil || !existed {
				t.Fatalf("Delete = %v, %v", existed, err)
			}
			existed, err = st.Delete(ctx, 1)
			if err != nil || existed {
				t.Fatalf("second Delete = %v, %v", existed, err)
			}
			if _, ok, _ := st.Get(ctx, 1); ok {
				t.Fatalf("profile still present after delete")
			}
		})
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	for name, st := range openDrivers(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			p := sample("Рекс")
			if err := st.Upsert(ctx, 7, p); err != nil {
				t.Fatalf("Upsert: %v", err)
			}
			p.Treatments[0].IntervalDays = 1

			got, _, _ := st.Get(ctx, 7)
			got.Treatments[0].IntervalDays = 2

			again, _, _ := st.Get(ctx, 7)
			if again.Treatments[0].IntervalDays != 365 {
				t.Fatalf("stored profile was mutated through a caller copy: %+v", again.Treatments[0])
			}
		})
	}
}

func TestStoreForEach(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	for name, st := range openDrivers(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			for _, id := range []care.OwnerID{3, 1, 2} {
				if err := st.Upsert(ctx, id, sample("p"+id.String())); err != nil {
					t.Fatalf("Upsert: %v", err)
				}
			}

			var seen []care.OwnerID
			err := st.ForEach(ctx, func(owner care.OwnerID, p care.Profile) error {
				if p.Owner != owner {
					t.Fatalf("owner mismatch: %d vs %d", p.Owner, owner)
				}
				seen = append(seen, owner)
				// Writes during iteration must not deadlock or affect the snapshot.
				return st.Upsert(ctx, owner+100, sample("late"))
			})
			if err != nil {
				t.Fatalf("ForEach: %v", err)
			}
			if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
				t.Fatalf("seen = %v, want [1 2 3]", seen)
			}

			stop := errors.New("stop")
			n := 0
			err = st.ForEach(ctx, func(care.OwnerID, care.Profile) error {
				n++
				return stop
			})
			if !errors.Is(err, stop) || n != 1 {
				t.Fatalf("ForEach stop: err=%v n=%d", err, n)
			}
		})
	}
}

func TestMemoryStoreConcurrentOwners(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(id care.OwnerID) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = st.Upsert(ctx, id, sample("x"))
				_, _, _ = st.Get(ctx, id)
				_ = st.ForEach(ctx, func(care.OwnerID, care.Profile) error { return nil })
			}
		}(care.OwnerID(i))
	}
	wg.Wait()

	n := 0
	_ = st.ForEach(ctx, func(care.OwnerID, care.Profile) error { n++; return nil })
	if n != 32 {
		t.Fatalf("profiles = %d, want 32", n)
	}
}

func TestClosedStore(t *testing.T) {
	t.Parallel()
	st := NewMemory()
	_ = st.Close()
	if err := st.Upsert(context.Background(), 1, care.Profile{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Upsert after Close = %v, want ErrClosed", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
