// Package store defines the persistence contracts of the course generation
// pipeline. Implementations live under internal/platform; the pipeline and
// services depend only on these interfaces.
package store
