// Package router dispatches inbound Telegram messages to the onboarding
// conversation and the profile commands.
//
// Updates are fanned out to a fixed set of workers. An owner always lands on
// the same worker, so one owner's messages are handled in arrival order
// while different owners proceed in parallel.
package router

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync/atomic"
	"time"

	"dogcare/internal/care"
	rtsup "dogcare/internal/runtime/supervisor"
	"dogcare/internal/storage"
	kit "dogcare/internal/transport"
	logx "dogcare/pkg/logx"
)

type Config struct {
	Workers        int           // default 4
	QueueSize      int           // per worker; default 64
	HandlerTimeout time.Duration // default 15s
}

// Conversation is the onboarding dialogue.
type Conversation interface {
	Begin(ctx context.Context, owner care.OwnerID) string
	Handle(ctx context.Context, owner care.OwnerID, text string) (reply string, handled bool, err error)
}

// Replier sends a reply to a chat.
type Replier interface {
	Send(ctx context.Context, to kit.ChatTarget, text string) error
}

type Router struct {
	cfg   Config
	log   logx.Logger
	conv  Conversation
	store storage.Store
	out   Replier

	dropped atomic.Uint64
}

func New(cfg Config, conv Conversation, store storage.Store, out Replier, log logx.Logger) *Router {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 15 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{cfg: cfg, log: log, conv: conv, store: store, out: out}
}

// Dropped reports updates discarded because a worker queue was full.
func (r *Router) Dropped() uint64 { return r.dropped.Load() }

// Run consumes in until ctx is done or in is closed, then drains the worker
// queues and returns.
func (r *Router) Run(ctx context.Context, in <-chan kit.Update) error {
	sup := rtsup.New(context.WithoutCancel(ctx), rtsup.WithLogger(r.log))
	queues := make([]chan kit.Update, r.cfg.Workers)
	for i := range queues {
		q := make(chan kit.Update, r.cfg.QueueSize)
		queues[i] = q
		sup.Go0("router.worker."+strconv.Itoa(i), func(wctx context.Context) {
			for up := range q {
				r.handle(wctx, up)
			}
		})
	}

	defer func() {
		for _, q := range queues {
			close(q)
		}
		_ = sup.Wait(context.Background())
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case up, ok := <-in:
			if !ok {
				return nil
			}
			if up.Message == nil {
				continue
			}
			owner := care.OwnerID(up.Message.FromID)
			select {
			case queues[r.workerFor(owner)] <- up:
			default:
				r.dropped.Add(1)
				r.log.Warn("update dropped (worker queue full)", logx.Int64("owner", int64(owner)))
			}
		}
	}
}

func (r *Router) workerFor(owner care.OwnerID) int {
	h := fnv.New32a()
	var b [8]byte
	for i := range b {
		b[i] = byte(uint64(owner) >> (8 * i))
	}
	h.Write(b[:])
	return int(h.Sum32() % uint32(r.cfg.Workers))
}

func (r *Router) handle(parent context.Context, up kit.Update) {
	m := up.Message
	ctx, cancel := context.WithTimeout(parent, r.cfg.HandlerTimeout)
	defer cancel()

	owner := care.OwnerID(m.FromID)
	log := r.log.With(logx.Int64("owner", int64(owner)), logx.Int64("chat", m.ChatID))

	reply, err := r.dispatch(ctx, owner, m.Text, log)
	if err != nil {
		log.Error("handler failed", logx.Err(err))
	}
	if reply == "" {
		return
	}
	if err := r.out.Send(ctx, kit.ChatTarget{ChatID: m.ChatID}, reply); err != nil {
		log.Warn("reply not delivered", logx.Err(err))
	}
}

// dispatch returns the reply text for one message; "" means no reply.
func (r *Router) dispatch(ctx context.Context, owner care.OwnerID, text string, log logx.Logger) (string, error) {
	if cmd, _, ok := parseCommand(text); ok {
		return r.command(ctx, owner, cmd, log)
	}

	reply, handled, err := r.conv.Handle(ctx, owner, text)
	if !handled {
		log.Debug("text outside a conversation ignored")
		return "", nil
	}
	return reply, err
}

func (r *Router) command(ctx context.Context, owner care.OwnerID, cmd string, log logx.Logger) (string, error) {
	log.Debug("command", logx.String("cmd", cmd))
	switch cmd {
	case "start", "update":
		return r.conv.Begin(ctx, owner), nil

	case "pet":
		p, ok, err := r.store.Get(ctx, owner)
		if err != nil {
			return failureText, err
		}
		if !ok {
			return noPetText, nil
		}
		return care.FormatProfile(p), nil

	case "delete":
		existed, err := r.store.Delete(ctx, owner)
		if err != nil {
			return failureText, err
		}
		if !existed {
			return noDataText, nil
		}
		log.Info("profile deleted")
		return deletedText, nil

	case "help":
		return helpText, nil

	default:
		log.Debug("unknown command ignored", logx.String("cmd", cmd))
		return "", nil
	}
}
