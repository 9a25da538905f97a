// Package service holds the application use cases of the course generator.
//
// CourseService is the course record manager: it creates draft courses,
// links them to their generation job and publishes them exactly once.
// GenerationService is the request handler behind the HTTP trigger: it
// validates a request, creates the draft course and its pending job in one
// transaction and dispatches the run to the task runner. JobService serves
// the read model clients poll for progress.
//
// Services depend on the store interfaces and never on a concrete database.
package service
