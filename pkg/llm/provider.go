// Package llm abstracts the language model backends used to answer document
// questions and produce summaries. The responder and chat service talk only
// to LLMProvider; the concrete vendor (ollama, gemini) is chosen once in the
// factory from configuration.
package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
// The responder passes WithTemperature on every call; model override is used
// by nothing in this codebase but kept for per-call experimentation.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend. Prompt composition
// happens upstream (pkg/rag/prompt); implementations only transport the text
// and map roles to vendor wire formats.
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model. The RAG pipeline uses this
	// form exclusively, with history already flattened into the prompt.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
