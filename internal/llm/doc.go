// Package llm defines the chat-completion contract used by the translator
// and the error classes its retry policy distinguishes. Concrete providers
// live in the openrouter and gemini subpackages.
package llm
