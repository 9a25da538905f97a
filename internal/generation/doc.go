// Package generation defines the content source of the course pipeline.
//
// A ContentGenerator produces one kind of course content per call, as drafts
// that carry no identity; the pipeline turns drafts into validated domain
// records and persists them. TemplateGenerator is a deterministic,
// dependency-free generator used by default and in tests; the Gemini-backed
// generator lives in internal/platform/gemini.
package generation
