// Package task runs course generation jobs in the background. The request
// path submits a CourseGenerationTask and returns; a fixed pool of workers
// executes tasks from a bounded queue. On start the runner rebuilds tasks for
// every unfinished job, and a monitor periodically requeues processing jobs
// that stopped reporting progress.
package task
