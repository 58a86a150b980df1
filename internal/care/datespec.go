package care

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrBadDate             = errors.New("bad date format")
	ErrBadInterval         = errors.New("bad interval format")
	ErrNonPositiveInterval = errors.New("interval must be positive")
)

// Spec is an insertion-ordered kind -> value mapping produced by the parser.
// A kind repeated in the input keeps its first position and its last value.
// The zero value is an empty Spec.
type Spec[V any] struct {
	order  []Kind
	values map[Kind]V
}

func (s Spec[V]) Len() int { return len(s.order) }

// Kinds returns the kinds in first-appearance order.
func (s Spec[V]) Kinds() []Kind { return append([]Kind(nil), s.order...) }

func (s Spec[V]) Get(k Kind) (V, bool) {
	v, ok := s.values[k]
	return v, ok
}

func (s Spec[V]) Clone() Spec[V] {
	out := Spec[V]{order: s.Kinds(), values: make(map[Kind]V, len(s.values))}
	for k, v := range s.values {
		out.values[k] = v
	}
	return out
}

func (s *Spec[V]) set(k Kind, v V) {
	if s.values == nil {
		s.values = map[Kind]V{}
	}
	if _, ok := s.values[k]; !ok {
		s.order = append(s.order, k)
	}
	s.values[k] = v
}

// ParseDates parses "kind: dd.mm.yyyy" lines. Lines without a colon are
// skipped. The first unparsable date fails the whole batch with ErrBadDate.
func ParseDates(text string) (Spec[time.Time], error) {
	return parseLines(text, ErrBadDate, ParseDate)
}

// ParseIntervals parses "kind: N" lines where N is a signed integer number of
// days. The first unparsable value fails the whole batch with ErrBadInterval.
// Sign is not checked here; see BuildTreatments.
func ParseIntervals(text string) (Spec[int], error) {
	return parseLines(text, ErrBadInterval, strconv.Atoi)
}

func parseLines[V any](text string, bad error, parse func(string) (V, error)) (Spec[V], error) {
	var out Spec[V]
	for i, line := range strings.Split(text, "\n") {
		key, raw, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		v, err := parse(raw)
		if err != nil {
			return Spec[V]{}, fmt.Errorf("line %d %q: %w", i+1, raw, bad)
		}
		out.set(KindOf(key), v)
	}
	return out, nil
}

// BuildTreatments pairs every dated kind with its interval. Kinds without an
// interval are dropped; intervals for undated kinds are ignored. A matching
// interval that is not positive fails with ErrNonPositiveInterval.
func BuildTreatments(dates Spec[time.Time], intervals Spec[int]) ([]Treatment, error) {
	out := make([]Treatment, 0, dates.Len())
	for _, k := range dates.order {
		days, ok := intervals.Get(k)
		if !ok {
			continue
		}
		if days <= 0 {
			return nil, fmt.Errorf("%s: %d: %w", k, days, ErrNonPositiveInterval)
		}
		out = append(out, Treatment{Kind: k, Date: dates.values[k], IntervalDays: days})
	}
	return out, nil
}
