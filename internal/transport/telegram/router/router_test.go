package router

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"dogcare/internal/care"
	"dogcare/internal/conversation"
	"dogcare/internal/storage"
	kit "dogcare/internal/transport"
	logx "dogcare/pkg/logx"
)

type sent struct {
	chat int64
	text string
}

type fakeReplier struct {
	mu  sync.Mutex
	out []sent
}

func (f *fakeReplier) Send(_ context.Context, to kit.ChatTarget, text string) error {
	f.mu.Lock()
	f.out = append(f.out, sent{chat: to.ChatID, text: text})
	f.mu.Unlock()
	return nil
}

func (f *fakeReplier) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.out))
	for _, s := range f.out {
		out = append(out, s.text)
	}
	return out
}

func (f *fakeReplier) last(t *testing.T) string {
	t.Helper()
	ts := f.texts()
	if len(ts) == 0 {
		t.Fatalf("no replies sent")
	}
	return ts[len(ts)-1]
}

func newRouter() (*Router, *conversation.Service, storage.Store, *fakeReplier) {
	st := storage.NewMemory()
	conv := conversation.New(st, logx.Nop())
	rep := &fakeReplier{}
	return New(Config{Workers: 3}, conv, st, rep, logx.Nop()), conv, st, rep
}

func msg(owner int64, text string) kit.Update {
	return kit.Update{Message: &kit.Message{ChatID: owner + 1000, FromID: owner, Text: text}}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, name, args string
		ok             bool
	}{
		{"/start", "start", "", true},
		{"  /PET  ", "pet", "", true},
		{"/help@dogcare_bot", "help", "", true},
		{"/update now please", "update", "now please", true},
		{"/", "", "", false},
		{"/@bot", "", "", false},
		{"Рекс", "", "", false},
		{"От глистов: 01.05.2025", "", "", false},
	}
	for _, tt := range tests {
		name, args, ok := parseCommand(tt.in)
		if name != tt.name || args != tt.args || ok != tt.ok {
			t.Fatalf("parseCommand(%q) = %q, %q, %v; want %q, %q, %v", tt.in, name, args, ok, tt.name, tt.args, tt.ok)
		}
	}
}

func TestOnboardingThroughRouter(t *testing.T) {
	t.Parallel()
	r, _, st, rep := newRouter()
	ctx := context.Background()

	r.handle(ctx, msg(1, "/pet"))
	if got := rep.last(t); got != noPetText {
		t.Fatalf("/pet without profile = %q", got)
	}

	steps := []struct{ in, want string }{
		{"/start", conversation.PromptName},
		{"Рекс", conversation.PromptWeight},
		{"12", conversation.PromptDates},
		{"От блох и клещей: 01.06.2025", conversation.PromptIntervals},
	}
	for _, s := range steps {
		r.handle(ctx, msg(1, s.in))
		if got := rep.last(t); got != s.want {
			t.Fatalf("reply to %q = %q, want %q", s.in, got, s.want)
		}
	}
	r.handle(ctx, msg(1, "От блох и клещей: 30"))
	if got := rep.last(t); !strings.HasPrefix(got, "✅ Готово!") {
		t.Fatalf("summary = %q", got)
	}
	if rep.out[0].chat != 1001 {
		t.Fatalf("reply went to chat %d, want 1001", rep.out[0].chat)
	}

	p, ok, _ := st.Get(ctx, 1)
	if !ok || len(p.Treatments) != 1 {
		t.Fatalf("profile = %+v ok=%v", p, ok)
	}

	r.handle(ctx, msg(1, "/pet"))
	if got := rep.last(t); got != care.FormatProfile(p) {
		t.Fatalf("/pet = %q", got)
	}

	r.handle(ctx, msg(1, "/delete"))
	if got := rep.last(t); got != deletedText {
		t.Fatalf("/delete = %q", got)
	}
	r.handle(ctx, msg(1, "/delete"))
	if got := rep.last(t); got != noDataText {
		t.Fatalf("second /delete = %q", got)
	}
}

func TestCommandsDoNotConsumeStageInput(t *testing.T) {
	t.Parallel()
	r, conv, _, rep := newRouter()
	ctx := context.Background()

	r.handle(ctx, msg(2, "/start"))
	r.handle(ctx, msg(2, "Бим"))

	n := len(rep.texts())
	r.handle(ctx, msg(2, "/unknown"))
	if len(rep.texts()) != n {
		t.Fatalf("unknown command produced a reply")
	}
	r.handle(ctx, msg(2, "/help"))
	if got := rep.last(t); got != helpText {
		t.Fatalf("/help = %q", got)
	}
	if stage, ok := conv.Stage(2); !ok || stage != conversation.StageWeight {
		t.Fatalf("stage = %v, %v; want weight", stage, ok)
	}

	// /update mid-dialogue restarts from the name.
	r.handle(ctx, msg(2, "/update"))
	if stage, _ := conv.Stage(2); stage != conversation.StageName {
		t.Fatalf("stage after /update = %v", stage)
	}
}

func TestTextWithoutSessionIsIgnored(t *testing.T) {
	t.Parallel()
	r, _, _, rep := newRouter()
	r.handle(context.Background(), msg(3, "привет"))
	if len(rep.texts()) != 0 {
		t.Fatalf("unexpected replies: %q", rep.texts())
	}
}

func TestWorkerAffinity(t *testing.T) {
	t.Parallel()
	r, _, _, _ := newRouter()
	for owner := care.OwnerID(-50); owner < 50; owner++ {
		w := r.workerFor(owner)
		if w < 0 || w >= r.cfg.Workers {
			t.Fatalf("worker %d out of range", w)
		}
		if r.workerFor(owner) != w {
			t.Fatalf("owner %d moved between workers", owner)
		}
	}
}

func TestRunKeepsPerOwnerOrder(t *testing.T) {
	t.Parallel()
	r, _, st, rep := newRouter()
	in := make(chan kit.Update, 32)
	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background(), in) }()

	for _, owner := range []int64{10, 11, 12} {
		for _, text := range []string{"/start", "pet", "1", "x: 01.01.2025", "x: 7"} {
			in <- msg(owner, text)
		}
	}
	close(in)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after input closed")
	}

	for _, owner := range []care.OwnerID{10, 11, 12} {
		if _, ok, _ := st.Get(context.Background(), owner); !ok {
			t.Fatalf("owner %d: profile not committed; replies=%q", owner, rep.texts())
		}
	}
	if len(rep.texts()) != 15 {
		t.Fatalf("replies = %d, want 15", len(rep.texts()))
	}
}

func TestCommandsMenu(t *testing.T) {
	t.Parallel()
	cmds := Commands()
	want := []string{"start", "pet", "update", "delete", "help"}
	if len(cmds) != len(want) {
		t.Fatalf("commands = %+v", cmds)
	}
	for i, c := range cmds {
		if c.Command != want[i] || c.Description == "" {
			t.Fatalf("command %d = %+v", i, c)
		}
	}
}
