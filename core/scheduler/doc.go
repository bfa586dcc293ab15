// Package scheduler assigns workers to calendar days.
//
// Generate draws permutations of the worker set without replacement. Each
// permutation is a priority order: every day 1..31 goes to the first worker in
// that order who is still available on it. Identical results are dropped, so
// a call returns up to count distinct schedules and stops early once every
// permutation has been tried. This is random sampling, not an optimal cover.
//
// Rosters (worker names and availability text, plus an optional month) can
// be loaded from YAML or JSON files.
package scheduler
