// Package conversation implements the per-owner onboarding dialogue:
// NAME -> WEIGHT -> DATES -> INTERVALS -> commit.
//
// Step is a pure transition function. Service owns the live sessions and
// commits the finished profile to storage.
package conversation
