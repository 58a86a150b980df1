package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dogcare/internal/config"
	"dogcare/internal/conversation"
	"dogcare/internal/notifier"
	"dogcare/internal/reminder"
	rtsup "dogcare/internal/runtime/supervisor"
	"dogcare/internal/storage"
	"dogcare/internal/task/scheduler"
	kit "dogcare/internal/transport"
	telegram "dogcare/internal/transport/telegram/adapter"
	"dogcare/internal/transport/telegram/router"
	logx "dogcare/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *config.ConfigManager
	sup  *rtsup.Supervisor

	log   logx.Logger
	logs  *logx.Service
	store storage.Store

	adapter kit.Adapter

	notif  *notifier.Service
	conv   *conversation.Service
	router *router.Router
	sched  *scheduler.Service
	rem    *reminder.Service

	updates chan kit.Update
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLoggingConfig(cfg))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	ad, err := telegram.New(mapTelegramConfig(cfg), log.With(logx.String("comp", "telegram")))
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	sc := mapStorageConfig(cfg)
	store, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	log.Info("storage opened", logx.String("driver", storageDriverName(sc.Driver)))

	notif := notifier.New(mapNotifierConfig(cfg), ad, log.With(logx.String("comp", "notifier")))
	conv := conversation.New(store, log.With(logx.String("comp", "conversation")))
	rt := router.New(mapRouterConfig(cfg), conv, store, notif, log.With(logx.String("comp", "router")))

	sched := scheduler.New(mapSchedulerConfig(cfg), log.With(logx.String("comp", "scheduler")))
	rem := reminder.New(store, notif, log.With(logx.String("comp", "reminder")), reminder.Options{
		Location: sched.Location,
	})
	if err := applyReminderSchedule(sched, mapReminderSchedule(cfg), rem.Run); err != nil {
		_ = store.Close()
		_ = logSvc.Close()
		return nil, fmt.Errorf("reminder schedule: %w", err)
	}

	return &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		log:     log.With(logx.String("comp", "app")),
		logs:    logSvc,
		store:   store,
		adapter: ad,
		notif:   notif,
		conv:    conv,
		router:  rt,
		sched:   sched,
		rem:     rem,
		updates: make(chan kit.Update, 256),
	}, nil
}

func storageDriverName(d string) string {
	if d = strings.TrimSpace(d); d == "" {
		return "memory"
	}
	return d
}

// Store exposes the profile store.
func (a *App) Store() storage.Store { return a.store }

// Scheduler exposes the scheduler for introspection.
func (a *App) Scheduler() *scheduler.Service { return a.sched }

// Done is closed when the app's run context ends, including when a
// supervised goroutine fails.
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		return nil
	}
	return a.sup.Context().Done()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = rtsup.New(ctx, rtsup.WithLogger(a.log.With(logx.String("comp", "supervisor"))), rtsup.WithCancelOnError(true))

	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return cfg.Validate()
	})

	if err := a.adapter.Start(a.sup.Context(), a.updates); err != nil {
		return err
	}
	if mu, ok := a.adapter.(kit.CommandMenuUpdater); ok {
		mctx, cancel := context.WithTimeout(a.sup.Context(), 10*time.Second)
		if err := mu.UpdateMenuCommands(mctx, router.Commands()); err != nil {
			a.log.Warn("menu commands not updated", logx.Err(err))
		}
		cancel()
	}

	a.sup.Go("router", func(c context.Context) error {
		return a.router.Run(c, a.updates)
	})

	if a.sched.Enabled() {
		a.sched.Start(a.sup.Context())
	} else {
		a.log.Info("scheduler disabled; reminders will not be sent")
	}

	sub := a.cfgm.Subscribe(1)
	a.sup.Go("config.reload", func(c context.Context) error {
		defer a.cfgm.Unsubscribe(sub)
		lastApplied := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return nil
			case newCfg, ok := <-sub:
				if !ok {
					return nil
				}
				// Coalesce bursts: only the latest config matters.
			drain:
				for {
					select {
					case next, ok := <-sub:
						if !ok {
							break drain
						}
						newCfg = next
					default:
						break drain
					}
				}
				a.applyConfig(c, lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	a.log.Info("app started")
	return nil
}

// applyConfig pushes a validated config into the live services. Sections
// that need a restart are only reported.
func (a *App) applyConfig(ctx context.Context, oldCfg, newCfg *config.Config) {
	sections, attrs := config.SummarizeConfigChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}
	if restart := config.RestartRequired(sections); len(restart) > 0 {
		a.log.Warn("config changed; restart required for changes to take effect", logx.String("sections", strings.Join(restart, ",")))
	}

	a.logs.Apply(mapLoggingConfig(newCfg))
	a.notif.Apply(mapNotifierConfig(newCfg))

	prevSchedEnabled := a.sched.Enabled()
	a.sched.Apply(mapSchedulerConfig(newCfg))
	if err := applyReminderSchedule(a.sched, mapReminderSchedule(newCfg), a.rem.Run); err != nil {
		a.log.Warn("invalid reminder schedule; keeping previous", logx.Err(err))
	}

	newSchedEnabled := a.sched.Enabled()
	if prevSchedEnabled && !newSchedEnabled {
		a.log.Info("scheduler disabled via config")
		stopCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		a.sched.Stop(stopCtx)
		cancel()
	}
	if !prevSchedEnabled && newSchedEnabled {
		a.log.Info("scheduler enabled via config")
		a.sched.Start(a.sup.Context())
	}

	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))

	// Cancel the run context first so background loops start unwinding.
	a.sup.Cancel()

	// step bounds one shutdown step so a stuck component can't stall the rest.
	step := func(name string, max time.Duration, fn func(context.Context) error) {
		start := time.Now()
		a.log.Debug("stop step begin", logx.String("name", name), logx.Duration("max", max))

		if dl, ok := ctx.Deadline(); ok {
			if rem := time.Until(dl); rem < max {
				max = rem
			}
		}
		if max <= 0 {
			a.log.Warn("stop step skipped; deadline reached", logx.String("name", name))
			return
		}
		stepCtx, cancel := context.WithTimeout(ctx, max)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
			}
			took := time.Since(start)
			if took >= 500*time.Millisecond {
				a.log.Info("stop step end", logx.String("name", name), logx.Duration("took", took))
			} else {
				a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", took))
			}
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)",
				logx.String("name", name),
				logx.Err(stepCtx.Err()),
				logx.Duration("elapsed", time.Since(start)),
			)
			go func() {
				err := <-done
				took := time.Since(start)
				if err != nil {
					a.log.Warn("stop step finished after deadline", logx.String("name", name), logx.Err(err), logx.Duration("took", took))
				} else {
					a.log.Info("stop step finished after deadline", logx.String("name", name), logx.Duration("took", took))
				}
			}()
		}
	}

	// Scheduler first so no sweep starts while outbound delivery shuts down.
	step("scheduler", 3*time.Second, func(c context.Context) error { a.sched.Stop(c); return nil })
	step("adapter", 2*time.Second, func(c context.Context) error { return a.adapter.Stop(c) })
	// Router workers drain their queues before returning.
	step("supervisor", 3*time.Second, func(c context.Context) error {
		err := a.sup.Wait(c)
		if err != nil {
			for _, g := range a.sup.Snapshot() {
				if g.Active > 0 {
					a.log.Warn("goroutine still running", logx.String("name", g.Name), logx.Int("active", g.Active))
				}
			}
		}
		return err
	})
	step("notifier", time.Second, func(context.Context) error { a.notif.Stop(); return nil })
	step("storage", time.Second, func(context.Context) error { return a.store.Close() })

	if err := a.sup.Err(); err != nil {
		a.log.Warn("supervised goroutine failed", logx.Err(err))
	}
	a.log.Info("stopped", logx.Uint64("dropped_updates", a.router.Dropped()))
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return nil
}
