package care

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind identifies a treatment category by its canonical key: the user-entered
// label, trimmed and lowercased. Any key is valid; the constants below are the
// kinds the bot knows how to label.
type Kind string

const (
	KindFleaTick    Kind = "от блох и клещей"
	KindDeworming   Kind = "от глистов"
	KindVaccination Kind = "комплексная вакцинация"
)

var knownLabels = map[Kind]string{
	KindFleaTick:    "От блох и клещей",
	KindDeworming:   "От глистов",
	KindVaccination: "Комплексная вакцинация",
}

// KnownKinds returns the well-known kinds in prompt order.
func KnownKinds() []Kind {
	return []Kind{KindFleaTick, KindDeworming, KindVaccination}
}

// KindOf normalizes a raw label into a Kind.
func KindOf(raw string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(raw)))
}

// Known reports whether k is one of the well-known kinds.
func (k Kind) Known() bool {
	_, ok := knownLabels[k]
	return ok
}

// Label returns the display label. Custom kinds are title-cased word by word.
func (k Kind) Label() string {
	if l, ok := knownLabels[k]; ok {
		return l
	}
	// Casers are stateful; build one per call.
	return cases.Title(language.Russian).String(string(k))
}

func (k Kind) String() string { return string(k) }
