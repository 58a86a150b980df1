package care

import (
	"strings"
	"testing"
	"time"
)

func TestKindLabel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kind Kind
		want string
	}{
		{KindFleaTick, "От блох и клещей"},
		{KindDeworming, "От глистов"},
		{KindVaccination, "Комплексная вакцинация"},
		{KindOf("  от клещей и комаров "), "От Клещей И Комаров"},
	}
	for _, tt := range tests {
		if got := tt.kind.Label(); got != tt.want {
			t.Fatalf("Label(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
	if KindOf("Мой вариант").Known() {
		t.Fatalf("custom kind reported as known")
	}
	if !KindOf("ОТ ГЛИСТОВ").Known() {
		t.Fatalf("KindOf must normalize case")
	}
}

func TestTreatmentDueOnExactDay(t *testing.T) {
	t.Parallel()
	tr := Treatment{Kind: KindFleaTick, Date: day(2025, time.June, 1), IntervalDays: 30}

	if !tr.NextDue().Equal(day(2025, time.July, 1)) {
		t.Fatalf("NextDue = %v", tr.NextDue())
	}
	if !tr.DueOn(time.Date(2025, time.July, 1, 9, 0, 0, 0, time.Local)) {
		t.Fatalf("expected due on 2025-07-01")
	}
	if tr.DueOn(day(2025, time.July, 2)) || tr.DueOn(day(2025, time.June, 30)) {
		t.Fatalf("due only on the exact day")
	}
}

func TestTreatmentDueUsesCalendarOfGivenLocation(t *testing.T) {
	t.Parallel()
	tr := Treatment{Date: day(2025, time.June, 1), IntervalDays: 30}
	loc := time.FixedZone("UTC+7", 7*3600)
	// 2025-07-01 06:00 in UTC+7 is still 2025-06-30 in UTC.
	if !tr.DueOn(time.Date(2025, time.July, 1, 6, 0, 0, 0, loc)) {
		t.Fatalf("calendar day must be taken from the given location")
	}
}

func TestProfileCloneDoesNotAlias(t *testing.T) {
	t.Parallel()
	p := Profile{Owner: 1, Name: "Рекс", Treatments: []Treatment{{Kind: KindDeworming, IntervalDays: 90}}}
	cp := p.Clone()
	cp.Treatments[0].IntervalDays = 1
	if p.Treatments[0].IntervalDays != 90 {
		t.Fatalf("clone shares treatments slice")
	}
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()
	p := Profile{
		Name:   "Рекс",
		Weight: "12.5",
		Treatments: []Treatment{
			{Kind: KindFleaTick, Date: day(2025, time.June, 1), IntervalDays: 30},
			{Kind: "мой вариант", Date: day(2025, time.May, 2), IntervalDays: 7},
		},
	}
	want := strings.Join([]string{
		"✅ Готово! Вот информацию о твоем питомце:",
		"🐶 Имя: Рекс",
		"⚖️ Вес: 12.5 кг",
		"📅 Обработки:",
		"От блох и клещей: 01.06.2025 (каждые 30 дней)",
		"Мой Вариант: 02.05.2025 (каждые 7 дней)",
	}, "\n")
	if got := FormatSummary(p); got != want {
		t.Fatalf("FormatSummary =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatReminder(t *testing.T) {
	t.Parallel()
	tr := Treatment{Kind: KindVaccination, Date: day(2024, time.July, 1), IntervalDays: 365}
	want := "🔔 Пора сделать обработку: Комплексная вакцинация (01.07.2025)"
	if got := FormatReminder(tr); got != want {
		t.Fatalf("FormatReminder = %q, want %q", got, want)
	}
}
