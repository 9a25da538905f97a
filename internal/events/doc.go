// Package events carries job progress notifications from the pipeline to
// interested readers, such as the server-sent event stream of a job.
//
// The pipeline emits a JobEvent after every persisted state change. Emitting
// is best effort: a slow or absent subscriber never blocks the pipeline, and
// the job record in the store remains the source of truth.
package events
