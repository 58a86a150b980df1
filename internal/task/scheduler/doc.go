// Package scheduler triggers named jobs on cron schedules (robfig/cron) in a
// configurable timezone.
//
// Jobs run on the cron goroutine with an optional timeout. A run that fires
// while the previous run of the same schedule is still active is skipped.
// Panics in jobs are recovered and logged.
package scheduler
