// Package gemini implements generation.ContentGenerator on Google's Gemini
// API through the google.golang.org/genai client.
//
// Each artifact kind has its own prompt template under prompts/. Responses
// are requested as JSON and decoded into the generation draft types. Calls
// are retried with exponential backoff and jitter for transient failures;
// blocked content and malformed responses fail immediately.
package gemini
