// Package generation provides the boundary between the application core
// and external AI/LLM services for document generation. It abstracts the
// details of LLM API integration (Gemini), allowing the application to
// produce proposal outlines and section prose without coupling to a
// specific external service.
package generation
