// Package reminder finds treatments due today and alerts their owners.
//
// A treatment is due when last date + interval days equals today's civil
// date exactly. Earlier or later days never match, so a sweep that does not
// run on the due day skips that reminder.
package reminder
