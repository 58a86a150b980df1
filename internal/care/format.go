package care

import (
	"fmt"
	"strings"
)

// FormatTreatment renders "<label>: dd.mm.yyyy (каждые N дней)".
func FormatTreatment(t Treatment) string {
	return fmt.Sprintf("%s: %s (каждые %d дней)", t.Kind.Label(), FormatDate(t.Date), t.IntervalDays)
}

// FormatProfile renders the profile card shown by /pet and after onboarding.
func FormatProfile(p Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🐶 Имя: %s\n", p.Name)
	fmt.Fprintf(&b, "⚖️ Вес: %s кг\n", p.Weight)
	b.WriteString("📅 Обработки:")
	for _, t := range p.Treatments {
		b.WriteString("\n")
		b.WriteString(FormatTreatment(t))
	}
	return b.String()
}

// FormatSummary is the confirmation sent when onboarding commits.
func FormatSummary(p Profile) string {
	return "✅ Готово! Вот информацию о твоем питомце:\n" + FormatProfile(p)
}

// FormatReminder renders one due alert line.
func FormatReminder(t Treatment) string {
	return fmt.Sprintf("🔔 Пора сделать обработку: %s (%s)", t.Kind.Label(), FormatDate(t.NextDue()))
}
