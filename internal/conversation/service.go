package conversation

import (
	"context"
	"fmt"
	"sync"

	"dogcare/internal/care"
	"dogcare/internal/storage"
	logx "dogcare/pkg/logx"
)

// slot serializes one owner's messages. s == nil means no active session.
type slot struct {
	mu sync.Mutex
	s  *Session
}

type Service struct {
	store storage.Store
	log   logx.Logger

	slots sync.Map // care.OwnerID -> *slot
}

func New(store storage.Store, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{store: store, log: log}
}

func (svc *Service) slot(owner care.OwnerID) *slot {
	if v, ok := svc.slots.Load(owner); ok {
		return v.(*slot)
	}
	v, _ := svc.slots.LoadOrStore(owner, &slot{})
	return v.(*slot)
}

// Begin resets the owner's session to NAME, discarding any draft, and
// returns the greeting.
func (svc *Service) Begin(ctx context.Context, owner care.OwnerID) string {
	sl := svc.slot(owner)
	sl.mu.Lock()
	prev := sl.s
	s := NewSession(owner)
	sl.s = &s
	sl.mu.Unlock()

	if prev != nil {
		svc.log.Debug("session restarted", logx.Int64("owner", int64(owner)), logx.String("prev_stage", prev.Stage.String()))
	} else {
		svc.log.Debug("session started", logx.Int64("owner", int64(owner)))
	}
	return PromptName
}

// Handle feeds text to the owner's active session. handled is false when the
// owner has no session. A storage failure during commit keeps the session in
// its last stage and returns the error together with a reply for the user.
func (svc *Service) Handle(ctx context.Context, owner care.OwnerID, text string) (reply string, handled bool, err error) {
	v, ok := svc.slots.Load(owner)
	if !ok {
		return "", false, nil
	}
	sl := v.(*slot)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.s == nil {
		return "", false, nil
	}

	from := sl.s.Stage
	next, eff := Step(*sl.s, text)
	if eff.Commit != nil {
		if err := svc.store.Upsert(ctx, owner, *eff.Commit); err != nil {
			svc.log.Error("profile commit failed", logx.Int64("owner", int64(owner)), logx.Err(err))
			return ReplyStoreFailed, true, fmt.Errorf("commit profile: %w", err)
		}
		svc.log.Info("profile saved",
			logx.Int64("owner", int64(owner)),
			logx.Int("treatments", len(eff.Commit.Treatments)),
		)
	}
	if eff.Done {
		sl.s = nil
		return eff.Reply, true, nil
	}
	if next.Stage != from {
		svc.log.Debug("session advanced", logx.Int64("owner", int64(owner)), logx.String("stage", next.Stage.String()))
	}
	sl.s = &next
	return eff.Reply, true, nil
}

// Stage reports the owner's current stage, if a session is active.
func (svc *Service) Stage(owner care.OwnerID) (Stage, bool) {
	v, ok := svc.slots.Load(owner)
	if !ok {
		return 0, false
	}
	sl := v.(*slot)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.s == nil {
		return 0, false
	}
	return sl.s.Stage, true
}

// Cancel drops the owner's session and reports whether one was active.
func (svc *Service) Cancel(owner care.OwnerID) bool {
	v, ok := svc.slots.Load(owner)
	if !ok {
		return false
	}
	sl := v.(*slot)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	active := sl.s != nil
	sl.s = nil
	return active
}
