package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"docmind-be/internal/apperror"
	"docmind-be/internal/dto"
	"docmind-be/internal/pkg/logger"
	"docmind-be/pkg/chunker"
	"docmind-be/pkg/embedding"
	"docmind-be/pkg/extractor"
	"docmind-be/pkg/rag/registry"
	"docmind-be/pkg/vectorstore"
)

// IDocumentService is the ingestion pipeline: one uploaded file becomes the
// user's (replaced) index plus a fresh conversation session.
type IDocumentService interface {
	Upload(ctx context.Context, userID, displayName, filename string, file io.Reader) (*dto.UploadDocumentResponse, error)
	DeleteDocuments(ctx context.Context, userID string) error
	Release()
}

type documentService struct {
	chunker  *chunker.Chunker
	embedder embedding.Provider
	stores   vectorstore.Provider
	registry *registry.Registry
	pool     *ants.Pool
	log      logger.ILogger
}

func NewDocumentService(
	ch *chunker.Chunker,
	embedder embedding.Provider,
	stores vectorstore.Provider,
	reg *registry.Registry,
	embedWorkers int,
	log logger.ILogger,
) (IDocumentService, error) {
	if embedWorkers < 1 {
		embedWorkers = 1
	}
	pool, err := ants.NewPool(embedWorkers)
	if err != nil {
		return nil, err
	}
	return &documentService{
		chunker:  ch,
		embedder: embedder,
		stores:   stores,
		registry: reg,
		pool:     pool,
		log:      log,
	}, nil
}

func (s *documentService) Release() {
	s.pool.Release()
}

func (s *documentService) Upload(ctx context.Context, userID, displayName, filename string, file io.Reader) (*dto.UploadDocumentResponse, error) {
	// Input validation happens before any I/O or temporary resource exists.
	ext := strings.ToLower(filepath.Ext(filename))
	ex, ok := extractor.ForExtension(ext)
	if !ok {
		return nil, apperror.NewClientInput(
			"Unsupported file type %q. Supported types: %s",
			ext, strings.Join(extractor.SupportedExtensions(), ", "),
		)
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, apperror.NewProcessing("reading upload", err)
	}
	if len(content) == 0 {
		return nil, apperror.NewClientInput("Empty file uploaded")
	}

	// The temporary file is exclusively owned by this call: uniquely named,
	// removed on every exit path.
	tempPath := filepath.Join(os.TempDir(), "docmind-"+uuid.NewString()+ext)
	if err := os.WriteFile(tempPath, content, 0o600); err != nil {
		return nil, apperror.NewProcessing("staging upload", err)
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			s.log.Warn("ingest", "failed to clean up temp file", map[string]interface{}{
				"path":  tempPath,
				"error": err.Error(),
			})
		}
	}()

	segments, err := ex.Extract(tempPath)
	if err != nil {
		return nil, apperror.NewProcessing("extraction", err)
	}

	chunks, err := s.chunker.Split(segments)
	if err != nil {
		if errors.Is(err, chunker.ErrNoContent) {
			return nil, apperror.NewClientInput("No content could be extracted from the document")
		}
		return nil, apperror.NewProcessing("chunking", err)
	}

	entries, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, apperror.NewProcessing("embedding", err)
	}

	// Replace, never append: re-ingestion drops the prior collection.
	store, err := s.stores.Replace(ctx, userID)
	if err != nil {
		return nil, apperror.NewProcessing("index creation", err)
	}
	if err := store.Add(ctx, entries); err != nil {
		return nil, apperror.NewProcessing("index population", err)
	}

	if err := s.registry.InitializeSession(userID, displayName, store); err != nil {
		return nil, err
	}

	s.log.Info("ingest", "document processed", map[string]interface{}{
		"user_id":  userID,
		"filename": filename,
		"chunks":   len(chunks),
	})

	return &dto.UploadDocumentResponse{
		Status:  "success",
		Message: fmt.Sprintf("Processed %s successfully", filename),
		Chunks:  len(chunks),
	}, nil
}

// embedChunks fans chunk embedding out over the worker pool. Entry order
// matches chunk order; the first failure cancels the remaining work.
func (s *documentService) embedChunks(ctx context.Context, chunks []chunker.Chunk) ([]vectorstore.Entry, error) {
	entries := make([]vectorstore.Entry, len(chunks))

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for i, ch := range chunks {
		i, ch := i, ch
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			if cctx.Err() != nil {
				return
			}
			vec, err := s.embedder.Generate(cctx, ch.Text, embedding.TaskDocument)
			if err != nil {
				fail(err)
				return
			}
			entries[i] = vectorstore.Entry{
				Text:      ch.Text,
				Source:    ch.Source,
				Embedding: vec,
			}
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return entries, nil
}

// DeleteDocuments drops the user's durable collection and detaches their
// session.
func (s *documentService) DeleteDocuments(ctx context.Context, userID string) error {
	if err := s.stores.Drop(ctx, userID); err != nil {
		return apperror.NewProcessing("index removal", err)
	}
	s.registry.Detach(userID)

	s.log.Info("ingest", "user documents removed", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}
