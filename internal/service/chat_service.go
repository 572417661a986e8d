package service

import (
	"context"
	"strings"

	"docmind-be/internal/apperror"
	"docmind-be/internal/dto"
	"docmind-be/internal/pkg/logger"
	"docmind-be/pkg/embedding"
	"docmind-be/pkg/llm"
	"docmind-be/pkg/rag/prompt"
	"docmind-be/pkg/rag/registry"
	"docmind-be/pkg/rag/responder"
)

// IChatService fronts the conversation core: reattach-or-fail before every
// query, then delegate to the responder.
type IChatService interface {
	Query(ctx context.Context, userID, displayName string, request *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error)
	Summarize(ctx context.Context, userID, displayName string) (*dto.SummarizeResponse, error)
	ClearHistory(userID string)
}

type chatService struct {
	registry    *registry.Registry
	responder   *responder.Responder
	embedder    embedding.Provider
	llmProvider llm.LLMProvider
	temperature float64
	topK        int
	log         logger.ILogger
}

func NewChatService(
	reg *registry.Registry,
	resp *responder.Responder,
	embedder embedding.Provider,
	llmProvider llm.LLMProvider,
	topK int,
	temperature float64,
	log logger.ILogger,
) IChatService {
	return &chatService{
		registry:    reg,
		responder:   resp,
		embedder:    embedder,
		llmProvider: llmProvider,
		temperature: temperature,
		topK:        topK,
		log:         log,
	}
}

// ensureSession reattaches the user's session from the durable store when the
// in-memory one is gone (restart, eviction). Fails with NoActiveSession when
// there is nothing to reattach to.
func (s *chatService) ensureSession(ctx context.Context, userID, displayName string) error {
	if s.registry.HasActiveSession(userID) {
		return nil
	}

	store, found, err := s.registry.IndexStoreHandle(ctx, userID)
	if err != nil {
		return apperror.NewProcessing("index lookup", err)
	}
	if !found {
		return apperror.ErrNoActiveSession
	}

	s.log.Info("chat", "reattached session from durable store", map[string]interface{}{
		"user_id": userID,
	})
	return s.registry.InitializeSession(userID, displayName, store)
}

func (s *chatService) Query(ctx context.Context, userID, displayName string, request *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error) {
	if strings.TrimSpace(request.Query) == "" {
		return nil, apperror.NewClientInput("Empty query")
	}

	if err := s.ensureSession(ctx, userID, displayName); err != nil {
		return nil, err
	}

	result, err := s.responder.Respond(ctx, userID, request.Query)
	if err != nil {
		return nil, err
	}

	return &dto.ChatQueryResponse{
		Answer:  result.Answer,
		Sources: result.Sources,
	}, nil
}

// Summarize produces a standalone summary of the user's document from its
// most representative chunks. It does not become part of the turn history.
func (s *chatService) Summarize(ctx context.Context, userID, displayName string) (*dto.SummarizeResponse, error) {
	if err := s.ensureSession(ctx, userID, displayName); err != nil {
		return nil, err
	}

	view, ok := s.registry.Snapshot(userID)
	if !ok {
		return nil, apperror.ErrNoActiveSession
	}

	queryVector, err := s.embedder.Generate(ctx, "What is this document about?", embedding.TaskQuery)
	if err != nil {
		return nil, apperror.NewProcessing("query embedding", err)
	}

	documents, err := view.Store.Search(ctx, queryVector, s.topK*2)
	if err != nil {
		return nil, apperror.NewProcessing("retrieval", err)
	}

	var content strings.Builder
	for _, doc := range documents {
		content.WriteString(doc.Text)
		content.WriteString("\n\n")
	}

	summaryPrompt := prompt.NewSummaryBuilder(content.String()).Build()
	summary, err := s.llmProvider.Generate(ctx, summaryPrompt, llm.WithTemperature(s.temperature))
	if err != nil {
		return nil, apperror.NewModelInvocation(err)
	}

	return &dto.SummarizeResponse{Summary: summary}, nil
}

func (s *chatService) ClearHistory(userID string) {
	s.registry.ClearHistory(userID)
}
