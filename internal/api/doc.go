// Package api serves the course generation HTTP interface: accepting
// generation requests, reading courses and jobs, and streaming job progress
// as server-sent events. Handlers translate HTTP concerns to service calls
// and map service errors to safe client messages.
package api
