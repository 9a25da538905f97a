// Package mocks provides shared test doubles.
//
// MockContentGenerator stands in for a content provider: it serves template
// content, records which stages asked for what, and fails chosen stages on
// demand. MockJWTService replaces token verification in HTTP tests.
//
//	gen := mocks.MockContentGeneratorFailingAt(domain.ArtifactFlashcards, errBoom)
//	resolver := generation.Resolver{Default: gen}
//
// Mocks use function fields or registered errors instead of a mocking
// framework.
package mocks
