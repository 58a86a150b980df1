package care

import (
	"strconv"
	"time"
)

// OwnerID is the platform user identity a profile belongs to.
type OwnerID int64

func (o OwnerID) String() string { return strconv.FormatInt(int64(o), 10) }

// Treatment is one recurring treatment: when it was last done and how often
// it repeats. IntervalDays is always > 0 for stored treatments.
type Treatment struct {
	Kind         Kind
	Date         time.Time
	IntervalDays int
}

// NextDue returns the civil date the treatment is due again.
func (t Treatment) NextDue() time.Time { return AddDays(t.Date, t.IntervalDays) }

// DueOn reports whether the treatment falls due exactly on day.
func (t Treatment) DueOn(day time.Time) bool { return t.NextDue().Equal(Civil(day)) }

// Profile is a pet's data as committed by the onboarding conversation.
// Treatments are ordered and hold at most one entry per kind.
type Profile struct {
	Owner      OwnerID
	Name       string
	Weight     string
	Treatments []Treatment
}

// Clone returns a copy that shares no memory with p.
func (p Profile) Clone() Profile {
	cp := p
	if p.Treatments != nil {
		cp.Treatments = append([]Treatment(nil), p.Treatments...)
	}
	return cp
}

func (p Profile) Treatment(k Kind) (Treatment, bool) {
	for _, t := range p.Treatments {
		if t.Kind == k {
			return t, true
		}
	}
	return Treatment{}, false
}

// DueOn returns the treatments due exactly on day, in profile order.
func (p Profile) DueOn(day time.Time) []Treatment {
	var out []Treatment
	for _, t := range p.Treatments {
		if t.DueOn(day) {
			out = append(out, t)
		}
	}
	return out
}
