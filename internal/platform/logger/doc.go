// Package logger configures the service's structured JSON logger and carries
// request or job scoped loggers through context.Context.
package logger
