package reminder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"dogcare/internal/care"
	"dogcare/internal/storage"
	logx "dogcare/pkg/logx"
)

// Sender delivers one text message to an owner.
type Sender interface {
	SendMessage(ctx context.Context, owner care.OwnerID, text string) error
}

type Options struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// Location returns the zone that defines "today". Defaults to time.Local.
	Location func() *time.Location
}

type Service struct {
	store  storage.Store
	sender Sender
	log    logx.Logger
	now    func() time.Time
	loc    func() *time.Location
}

// Report summarizes one sweep.
type Report struct {
	ID       string
	Day      time.Time // civil date, UTC midnight
	Profiles int
	Due      int // due treatments across all owners
	Sent     int // owners successfully alerted
	Failures map[care.OwnerID]error
	// Err is set when the store could not be iterated.
	Err  error
	Took time.Duration
}

// Failed lists owners whose delivery failed, ascending.
func (r Report) Failed() []care.OwnerID {
	out := make([]care.OwnerID, 0, len(r.Failures))
	for o := range r.Failures {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Error joins the store error and all delivery failures, or returns nil.
func (r Report) Error() error {
	var errs []error
	if r.Err != nil {
		errs = append(errs, r.Err)
	}
	for _, o := range r.Failed() {
		errs = append(errs, fmt.Errorf("owner %s: %w", o, r.Failures[o]))
	}
	return errors.Join(errs...)
}

func New(store storage.Store, sender Sender, log logx.Logger, opts Options) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = func() *time.Location { return time.Local }
	}
	return &Service{store: store, sender: sender, log: log, now: opts.Now, loc: opts.Location}
}

type alert struct {
	owner care.OwnerID
	text  string
	due   int
}

// Sweep alerts every owner with at least one treatment due on today's civil
// date. Each owner gets one message with one line per due treatment.
// A delivery failure for one owner does not stop the sweep.
func (s *Service) Sweep(ctx context.Context, today time.Time) Report {
	start := time.Now()
	rep := Report{ID: uuid.NewString(), Day: care.Civil(today), Failures: map[care.OwnerID]error{}}
	log := s.log.With(logx.String("sweep", rep.ID), logx.String("day", care.FormatDate(rep.Day)))

	var alerts []alert
	err := s.store.ForEach(ctx, func(owner care.OwnerID, p care.Profile) error {
		rep.Profiles++
		due := p.DueOn(today)
		if len(due) == 0 {
			return nil
		}
		lines := make([]string, 0, len(due))
		for _, t := range due {
			lines = append(lines, care.FormatReminder(t))
		}
		alerts = append(alerts, alert{owner: owner, text: strings.Join(lines, "\n"), due: len(due)})
		return nil
	})
	if err != nil {
		rep.Err = fmt.Errorf("iterate profiles: %w", err)
		log.Error("sweep aborted", logx.Err(err))
	}

	for _, a := range alerts {
		rep.Due += a.due
		if err := s.sender.SendMessage(ctx, a.owner, a.text); err != nil {
			rep.Failures[a.owner] = err
			log.Warn("reminder not delivered", logx.Int64("owner", int64(a.owner)), logx.Err(err))
			continue
		}
		rep.Sent++
	}
	rep.Took = time.Since(start)
	return rep
}

// Run is the scheduled entry point: it sweeps for today in the configured
// location and returns the joined delivery errors, if any.
func (s *Service) Run(ctx context.Context) error {
	today := s.now().In(s.loc())
	rep := s.Sweep(ctx, today)
	s.log.Info("reminder sweep done",
		logx.String("sweep", rep.ID),
		logx.String("day", care.FormatDate(rep.Day)),
		logx.Int("profiles", rep.Profiles),
		logx.Int("due", rep.Due),
		logx.Int("sent", rep.Sent),
		logx.Int("failed", len(rep.Failures)),
		logx.Duration("took", rep.Took),
	)
	return rep.Error()
}
