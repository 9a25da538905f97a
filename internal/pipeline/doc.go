// Package pipeline defines the six ordered content stages of a course
// generation run and the loop that executes them.
//
// A stage asks the run's ContentGenerator for one artifact kind, turns the
// drafts into validated domain records, and writes them with a single bulk
// insert inside a transaction. The caller's checkpoint hook runs in that same
// transaction, so artifacts and the job's progress are committed together.
// Stages already covered by a persisted checkpoint are skipped, which lets an
// interrupted run resume where it stopped.
package pipeline
