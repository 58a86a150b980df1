package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	kit "dogcare/internal/transport"
	logx "dogcare/pkg/logx"
)

type fakeAdapter struct {
	mu    sync.Mutex
	errs  []error // returned in order, then nil
	calls int
	sent  []string
}

func (f *fakeAdapter) Start(context.Context, chan<- kit.Update) error { return nil }
func (f *fakeAdapter) Stop(context.Context) error                    { return nil }

func (f *fakeAdapter) SendText(_ context.Context, to kit.ChatTarget, text string, _ *kit.SendOptions) (kit.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return kit.MessageRef{}, err
		}
	}
	f.sent = append(f.sent, text)
	return kit.MessageRef{ChatID: to.ChatID, MessageID: f.calls}, nil
}

func fastConfig() Config {
	return Config{RatePerSec: 1000, RetryMax: 2, RetryBase: time.Millisecond, RetryMaxDelay: 2 * time.Millisecond}
}

func TestSendRetriesTransient(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{errs: []error{errors.New("timeout"), errors.New("502")}}
	s := New(fastConfig(), ad, logx.Nop())

	if err := s.SendMessage(context.Background(), 7, "hi"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if ad.calls != 3 || len(ad.sent) != 1 {
		t.Fatalf("calls=%d sent=%v", ad.calls, ad.sent)
	}
}

func TestSendGivesUp(t *testing.T) {
	t.Parallel()
	boom := errors.New("502")
	ad := &fakeAdapter{errs: []error{boom, boom, boom, boom}}
	s := New(fastConfig(), ad, logx.Nop())

	err := s.SendMessage(context.Background(), 7, "hi")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if ad.calls != 3 {
		t.Fatalf("calls = %d, want 3", ad.calls)
	}
}

func TestSendDoesNotRetryPermanent(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{errs: []error{fmt.Errorf("%w: blocked", kit.ErrUndeliverable)}}
	s := New(fastConfig(), ad, logx.Nop())

	err := s.SendMessage(context.Background(), 7, "hi")
	if !errors.Is(err, kit.ErrUndeliverable) || ad.calls != 1 {
		t.Fatalf("err=%v calls=%d", err, ad.calls)
	}
}

func TestSendHonorsRetryAfter(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{errs: []error{&kit.RetryAfterError{After: 30 * time.Millisecond, Err: errors.New("429")}}}
	s := New(fastConfig(), ad, logx.Nop())

	start := time.Now()
	if err := s.SendMessage(context.Background(), 7, "hi"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if took := time.Since(start); took < 30*time.Millisecond {
		t.Fatalf("retry did not wait for RetryAfter: %v", took)
	}
}

func TestSendAfterStop(t *testing.T) {
	t.Parallel()
	s := New(fastConfig(), &fakeAdapter{}, logx.Nop())
	s.Stop()
	if err := s.SendMessage(context.Background(), 1, "x"); !errors.Is(err, ErrStopped) {
		t.Fatalf("err = %v, want ErrStopped", err)
	}
}

func TestRetryDelayBounds(t *testing.T) {
	t.Parallel()
	cfg := Config{RetryBase: 100 * time.Millisecond, RetryMaxDelay: time.Second}.withDefaults()
	for attempt := 1; attempt <= 10; attempt++ {
		d := retryDelay(cfg, attempt)
		if d <= 0 || d > time.Second {
			t.Fatalf("attempt %d: delay %v out of bounds", attempt, d)
		}
	}
	if d := retryDelay(cfg, 1); d < 70*time.Millisecond || d > 130*time.Millisecond {
		t.Fatalf("first delay %v not within jitter of base", d)
	}
}
