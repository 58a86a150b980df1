package conversation

import (
	"errors"
	"strings"
	"time"

	"dogcare/internal/care"
)

type Stage int

const (
	StageName Stage = iota + 1
	StageWeight
	StageDates
	StageIntervals
)

func (s Stage) String() string {
	switch s {
	case StageName:
		return "name"
	case StageWeight:
		return "weight"
	case StageDates:
		return "dates"
	case StageIntervals:
		return "intervals"
	default:
		return "unknown"
	}
}

// Session is the draft collected so far for one owner.
type Session struct {
	Owner  care.OwnerID
	Stage  Stage
	Name   string
	Weight string
	Dates  care.Spec[time.Time]
}

// NewSession returns a fresh session waiting for the pet name.
func NewSession(owner care.OwnerID) Session {
	return Session{Owner: owner, Stage: StageName}
}

// Effect is what the caller must do after a transition.
type Effect struct {
	Reply string
	// Commit is set when the dialogue finished and the profile must be stored.
	Commit *care.Profile
	// Done means the session ends once Commit is persisted.
	Done bool
}

// Step applies one inbound text to s. It never mutates s; the returned
// session is the next state. Invalid input leaves the returned session
// equal to s.
func Step(s Session, text string) (Session, Effect) {
	switch s.Stage {
	case StageName:
		s.Name = strings.TrimSpace(text)
		s.Stage = StageWeight
		return s, Effect{Reply: PromptWeight}

	case StageWeight:
		s.Weight = strings.TrimSpace(text)
		s.Stage = StageDates
		return s, Effect{Reply: PromptDates}

	case StageDates:
		dates, err := care.ParseDates(text)
		if err != nil {
			return s, Effect{Reply: ReplyBadDate}
		}
		s.Dates = dates
		s.Stage = StageIntervals
		return s, Effect{Reply: PromptIntervals}

	case StageIntervals:
		intervals, err := care.ParseIntervals(text)
		if err != nil {
			return s, Effect{Reply: ReplyBadInterval}
		}
		treatments, err := care.BuildTreatments(s.Dates, intervals)
		if errors.Is(err, care.ErrNonPositiveInterval) {
			return s, Effect{Reply: ReplyNonPositive}
		}
		if err != nil {
			return s, Effect{Reply: ReplyBadInterval}
		}
		p := care.Profile{Owner: s.Owner, Name: s.Name, Weight: s.Weight, Treatments: treatments}
		return s, Effect{Reply: care.FormatSummary(p), Commit: &p, Done: true}

	default:
		s = NewSession(s.Owner)
		return s, Effect{Reply: PromptName}
	}
}
