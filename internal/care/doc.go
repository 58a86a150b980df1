// Package care holds the pet-care domain model: treatment kinds, treatment
// records, pet profiles, and the line-oriented parser that turns a user's
// free-form "kind: value" message into structured dates and intervals.
//
// Dates are civil dates. They are stored as UTC midnight so that equality and
// day arithmetic never depend on the process timezone.
package care
