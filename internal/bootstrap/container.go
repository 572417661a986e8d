package bootstrap

import (
	"fmt"
	"time"

	"docmind-be/internal/config"
	"docmind-be/internal/controller"
	"docmind-be/internal/pkg/logger"
	"docmind-be/internal/service"
	"docmind-be/pkg/chunker"
	"docmind-be/pkg/database"
	"docmind-be/pkg/embedding"
	"docmind-be/pkg/llm/factory"
	"docmind-be/pkg/rag/registry"
	"docmind-be/pkg/rag/responder"
	"docmind-be/pkg/vectorstore"
	badgerstore "docmind-be/pkg/vectorstore/badger"
	pgvectorstore "docmind-be/pkg/vectorstore/pgvector"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController

	// Exposed for graceful shutdown in main.go
	Logger          logger.ILogger
	DocumentService service.IDocumentService
	Stores          vectorstore.Provider
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. AI providers
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		return nil, err
	}

	// 3. Vector store backend
	stores, err := newStoreProvider(cfg)
	if err != nil {
		return nil, err
	}

	// 4. Ingestion and conversation plumbing
	ch, err := chunker.New(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	reg := registry.New(stores, time.Duration(cfg.Chat.SessionTTLMinutes)*time.Minute)
	resp := responder.New(reg, embedder, llmProvider, cfg.Ai.TopK, cfg.Ai.Temperature)

	// 5. Services
	documentService, err := service.NewDocumentService(ch, embedder, stores, reg, cfg.Ingest.EmbedWorkers, sysLogger)
	if err != nil {
		return nil, err
	}
	chatService := service.NewChatService(reg, resp, embedder, llmProvider, cfg.Ai.TopK, cfg.Ai.Temperature, sysLogger)

	// 6. Controllers
	return &Container{
		DocumentController: controller.NewDocumentController(documentService),
		ChatController:     controller.NewChatController(chatService),
		Logger:             sysLogger,
		DocumentService:    documentService,
		Stores:             stores,
	}, nil
}

func newEmbedder(cfg *config.Config) (embedding.Provider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "gemini":
		return embedding.NewGeminiProvider(cfg.Keys.GoogleGemini), nil
	case "ollama":
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}

func newStoreProvider(cfg *config.Config) (vectorstore.Provider, error) {
	switch cfg.Ingest.VectorStoreProvider {
	case "badger":
		return badgerstore.NewProvider(cfg.Ingest.VectorStorePath)
	case "pgvector":
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to pgvector backend: %w", err)
		}
		return pgvectorstore.NewProvider(db)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", cfg.Ingest.VectorStoreProvider)
	}
}
