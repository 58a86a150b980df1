package notifier

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"dogcare/internal/care"
	kit "dogcare/internal/transport"
	logx "dogcare/pkg/logx"
)

var ErrStopped = errors.New("notifier stopped")

// Service is safe for concurrent use.
type Service struct {
	mu      sync.Mutex
	cfg     Config
	limiter *rate.Limiter

	log     logx.Logger
	adapter kit.Adapter
	stopped atomic.Bool
}

func New(cfg Config, adapter kit.Adapter, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	cfg = cfg.withDefaults()
	return &Service{
		cfg:     cfg,
		// Burst = rate per second so short spikes are not throttled hard.
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
		log:     log,
		adapter: adapter,
	}
}

// Apply swaps the delivery policy. The limiter keeps its current tokens.
func (s *Service) Apply(cfg Config) {
	cfg = cfg.withDefaults()
	s.mu.Lock()
	s.cfg = cfg
	s.limiter.SetLimit(rate.Limit(cfg.RatePerSec))
	s.limiter.SetBurst(cfg.RatePerSec)
	s.mu.Unlock()
}

// Stop makes further sends fail with ErrStopped.
func (s *Service) Stop() { s.stopped.Store(true) }

// SendMessage delivers text to the owner's private chat.
func (s *Service) SendMessage(ctx context.Context, owner care.OwnerID, text string) error {
	return s.Send(ctx, kit.ChatTarget{ChatID: int64(owner)}, text)
}

// Send delivers text to a chat, retrying transient failures.
func (s *Service) Send(ctx context.Context, to kit.ChatTarget, text string) error {
	if s.stopped.Load() {
		return ErrStopped
	}
	if text == "" {
		return nil
	}
	s.mu.Lock()
	cfg := s.cfg
	lim := s.limiter
	s.mu.Unlock()

	attempts := 1 + cfg.RetryMax
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := lim.Wait(ctx); err != nil {
			return err
		}
		callCtx, cancel := context.WithTimeout(ctx, cfg.SendTimeout)
		_, err := s.adapter.SendText(callCtx, to, text, &kit.SendOptions{DisablePreview: true})
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, kit.ErrUndeliverable) {
			return err
		}
		s.log.Debug("send failed", logx.Int64("chat", to.ChatID), logx.Int("attempt", attempt), logx.Int("max", attempts), logx.Err(err))
		if attempt == attempts {
			break
		}

		delay := retryDelay(cfg, attempt)
		var ra *kit.RetryAfterError
		if errors.As(err, &ra) && ra.After > 0 {
			delay = ra.After
		}
		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
	return fmt.Errorf("send to %d after %d attempts: %w", to.ChatID, attempts, lastErr)
}

// retryDelay is the wait before attempt+1: base * 2^(attempt-1), jittered
// by 0.7..1.3 and capped at RetryMaxDelay.
func retryDelay(cfg Config, attempt int) time.Duration {
	d := cfg.RetryBase
	for i := 1; i < attempt && d < cfg.RetryMaxDelay; i++ {
		d *= 2
	}
	d = time.Duration(float64(d) * (0.7 + rand.Float64()*0.6))
	return min(max(d, 0), cfg.RetryMaxDelay)
}
