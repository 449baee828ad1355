// Package gemini implements the generation.Generator interface using
// Google's Gemini API. It produces bid-proposal outlines and section
// prose, handling streaming collection, exponential-backoff retries for
// transient API failures, and structural validation of JSON responses
// with re-prompting on mismatch.
package gemini
