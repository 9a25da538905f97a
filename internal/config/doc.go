// Package config loads service settings from COURSEGEN_* environment
// variables and an optional config.yaml, then validates them before any
// component is wired.
package config
