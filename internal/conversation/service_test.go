package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dogcare/internal/care"
	"dogcare/internal/storage"
	logx "dogcare/pkg/logx"
)

type failingStore struct {
	storage.Store
	fail bool
}

func (f *failingStore) Upsert(ctx context.Context, owner care.OwnerID, p care.Profile) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.Upsert(ctx, owner, p)
}

func TestServiceOnboarding(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := storage.NewMemory()
	svc := New(st, logx.Nop())

	if _, handled, _ := svc.Handle(ctx, 5, "Рекс"); handled {
		t.Fatalf("text without a session must not be handled")
	}

	if got := svc.Begin(ctx, 5); got != PromptName {
		t.Fatalf("Begin = %q", got)
	}
	for _, in := range []string{"Рекс", "12", "От блох и клещей: 01.06.2025"} {
		if _, handled, err := svc.Handle(ctx, 5, in); !handled || err != nil {
			t.Fatalf("Handle(%q) = handled=%v err=%v", in, handled, err)
		}
	}
	if stage, ok := svc.Stage(5); !ok || stage != StageIntervals {
		t.Fatalf("stage = %v, %v", stage, ok)
	}
	reply, handled, err := svc.Handle(ctx, 5, "От блох и клещей: 30")
	if !handled || err != nil || reply == "" {
		t.Fatalf("final Handle = %q handled=%v err=%v", reply, handled, err)
	}
	if _, ok := svc.Stage(5); ok {
		t.Fatalf("session must end after commit")
	}

	p, ok, err := st.Get(ctx, 5)
	if err != nil || !ok || p.Name != "Рекс" || len(p.Treatments) != 1 {
		t.Fatalf("stored profile = %+v ok=%v err=%v", p, ok, err)
	}
}

func TestServiceBeginResetsDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := New(storage.NewMemory(), logx.Nop())

	svc.Begin(ctx, 1)
	_, _, _ = svc.Handle(ctx, 1, "Рекс")
	_, _, _ = svc.Handle(ctx, 1, "12")

	// Restart mid-dialogue: the next text is a name again.
	svc.Begin(ctx, 1)
	if stage, _ := svc.Stage(1); stage != StageName {
		t.Fatalf("stage after Begin = %v", stage)
	}
	reply, _, _ := svc.Handle(ctx, 1, "Бим")
	if reply != PromptWeight {
		t.Fatalf("reply = %q, want weight prompt", reply)
	}
}

func TestServiceCommitFailureKeepsSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := &failingStore{Store: storage.NewMemory(), fail: true}
	svc := New(st, logx.Nop())

	svc.Begin(ctx, 9)
	for _, in := range []string{"Рекс", "12", "От глистов: 01.05.2025"} {
		_, _, _ = svc.Handle(ctx, 9, in)
	}
	reply, handled, err := svc.Handle(ctx, 9, "От глистов: 90")
	if err == nil || !handled || reply != ReplyStoreFailed {
		t.Fatalf("Handle = %q handled=%v err=%v", reply, handled, err)
	}
	if stage, ok := svc.Stage(9); !ok || stage != StageIntervals {
		t.Fatalf("stage = %v, %v; want intervals", stage, ok)
	}

	st.fail = false
	if _, _, err := svc.Handle(ctx, 9, "От глистов: 90"); err != nil {
		t.Fatalf("retry Handle: %v", err)
	}
	if _, ok, _ := st.Get(ctx, 9); !ok {
		t.Fatalf("profile not stored after retry")
	}
}

func TestServiceCancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := New(storage.NewMemory(), logx.Nop())
	if svc.Cancel(3) {
		t.Fatalf("Cancel without session = true")
	}
	svc.Begin(ctx, 3)
	if !svc.Cancel(3) {
		t.Fatalf("Cancel = false")
	}
	if _, handled, _ := svc.Handle(ctx, 3, "x"); handled {
		t.Fatalf("cancelled session still handles input")
	}
}

func TestServiceOwnersAreIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := storage.NewMemory()
	svc := New(st, logx.Nop())

	var wg sync.WaitGroup
	for i := 1; i <= 16; i++ {
		wg.Add(1)
		go func(owner care.OwnerID) {
			defer wg.Done()
			svc.Begin(ctx, owner)
			for _, in := range []string{"pet" + owner.String(), "1", "x: 01.01.2025", "x: 1"} {
				if _, _, err := svc.Handle(ctx, owner, in); err != nil {
					t.Errorf("owner %d: %v", owner, err)
				}
			}
		}(care.OwnerID(i))
	}
	wg.Wait()

	for i := 1; i <= 16; i++ {
		p, ok, _ := st.Get(ctx, care.OwnerID(i))
		if !ok || p.Name != "pet"+care.OwnerID(i).String() {
			t.Fatalf("owner %d profile = %+v ok=%v", i, p, ok)
		}
	}
}
