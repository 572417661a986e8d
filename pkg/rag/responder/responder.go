// Package responder answers a user query against their active session:
// retrieve top-K chunks, compose the prompt, invoke the model, record the
// turn.
package responder

import (
	"context"

	"docmind-be/internal/apperror"
	"docmind-be/pkg/embedding"
	"docmind-be/pkg/llm"
	"docmind-be/pkg/rag/prompt"
	"docmind-be/pkg/rag/registry"
)

const (
	DefaultTopK        = 4
	DefaultTemperature = 0.3
)

// Result carries the model's answer and the literal text of every retrieved
// chunk as sources.
type Result struct {
	Answer  string
	Sources []string
}

type Responder struct {
	registry    *registry.Registry
	embedder    embedding.Provider
	llmProvider llm.LLMProvider
	topK        int
	temperature float64
}

func New(reg *registry.Registry, embedder embedding.Provider, llmProvider llm.LLMProvider, topK int, temperature float64) *Responder {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &Responder{
		registry:    reg,
		embedder:    embedder,
		llmProvider: llmProvider,
		topK:        topK,
		temperature: temperature,
	}
}

// Respond requires an active session; the boundary layer is responsible for
// attempting reattachment before calling.
func (r *Responder) Respond(ctx context.Context, userID, query string) (*Result, error) {
	view, ok := r.registry.Snapshot(userID)
	if !ok {
		return nil, apperror.ErrNoActiveSession
	}

	queryVector, err := r.embedder.Generate(ctx, query, embedding.TaskQuery)
	if err != nil {
		return nil, apperror.NewProcessing("query embedding", err)
	}

	documents, err := view.Store.Search(ctx, queryVector, r.topK)
	if err != nil {
		return nil, apperror.NewProcessing("retrieval", err)
	}

	chatPrompt := prompt.NewChatBuilder(view.DisplayName, query, documents, view.History).Build()

	answer, err := r.llmProvider.Generate(ctx, chatPrompt,
		llm.WithTemperature(r.temperature),
	)
	if err != nil {
		return nil, apperror.NewModelInvocation(err)
	}

	// Subsequent calls must see this exchange as prior context.
	if err := r.registry.AppendTurn(userID, query, answer); err != nil {
		return nil, err
	}

	sources := make([]string, len(documents))
	for i, doc := range documents {
		sources[i] = doc.Text
	}

	return &Result{Answer: answer, Sources: sources}, nil
}
