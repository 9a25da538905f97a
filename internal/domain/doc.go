// Package domain holds the course generation entities: courses, their
// generation jobs, the artifacts a run produces, and activity log entries.
// Lifecycle rules live on the entities themselves so every store and service
// applies them the same way.
package domain
