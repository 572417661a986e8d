package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmind-be/internal/apperror"
	"docmind-be/pkg/chunker"
	"docmind-be/pkg/rag/registry"
	"docmind-be/pkg/vectorstore"
)

// Shared in-memory fakes for the service tests.

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type memStore struct {
	entries  []vectorstore.Entry
	lastTopK int
}

func (m *memStore) Add(ctx context.Context, entries []vectorstore.Entry) error {
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memStore) Search(ctx context.Context, vector []float32, topK int) ([]vectorstore.Document, error) {
	m.lastTopK = topK
	docs := make([]vectorstore.Document, 0, len(m.entries))
	for _, e := range m.entries {
		docs = append(docs, vectorstore.Document{Text: e.Text, Source: e.Source, Score: 1})
		if len(docs) == topK {
			break
		}
	}
	return docs, nil
}

func (m *memStore) Count(ctx context.Context) (int, error) { return len(m.entries), nil }

type memProvider struct {
	stores       map[string]*memStore
	replaceCalls int
	dropCalls    int
	replaceErr   error
}

func newMemProvider() *memProvider {
	return &memProvider{stores: map[string]*memStore{}}
}

func (m *memProvider) Open(ctx context.Context, userID string) (vectorstore.Store, bool, error) {
	s, ok := m.stores[userID]
	if !ok {
		return nil, false, nil
	}
	return s, true, nil
}

func (m *memProvider) Replace(ctx context.Context, userID string) (vectorstore.Store, error) {
	m.replaceCalls++
	if m.replaceErr != nil {
		return nil, m.replaceErr
	}
	s := &memStore{}
	m.stores[userID] = s
	return s, nil
}

func (m *memProvider) Drop(ctx context.Context, userID string) error {
	m.dropCalls++
	delete(m.stores, userID)
	return nil
}

func (m *memProvider) Close() error { return nil }

type stubEmbedder struct {
	err   error
	calls int
}

func (s *stubEmbedder) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func newDocumentFixture(t *testing.T) (IDocumentService, *memProvider, *registry.Registry) {
	t.Helper()
	ch, err := chunker.New(chunker.DefaultChunkSize, chunker.DefaultOverlap)
	require.NoError(t, err)

	provider := newMemProvider()
	reg := registry.New(provider, 0)

	svc, err := NewDocumentService(ch, &stubEmbedder{}, provider, reg, 2, nopLogger{})
	require.NoError(t, err)
	t.Cleanup(svc.Release)
	return svc, provider, reg
}

func TestUploadUnsupportedExtension(t *testing.T) {
	svc, provider, reg := newDocumentFixture(t)

	_, err := svc.Upload(context.Background(), "alice", "Alice", "malware.exe", strings.NewReader("content"))

	var cerr *apperror.ClientInputError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, ".exe")
	assert.Contains(t, cerr.Message, ".pdf")

	// Rejected before any resource was touched.
	assert.Equal(t, 0, provider.replaceCalls)
	assert.False(t, reg.HasActiveSession("alice"))
}

func TestUploadEmptyFile(t *testing.T) {
	svc, provider, _ := newDocumentFixture(t)

	_, err := svc.Upload(context.Background(), "alice", "Alice", "empty.txt", strings.NewReader(""))

	var cerr *apperror.ClientInputError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 0, provider.replaceCalls)
}

func TestUploadWhitespaceOnlyFile(t *testing.T) {
	svc, provider, _ := newDocumentFixture(t)

	_, err := svc.Upload(context.Background(), "alice", "Alice", "blank.txt", strings.NewReader("   \n\n  "))

	var cerr *apperror.ClientInputError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 0, provider.replaceCalls)
}

func TestUploadHappyPath(t *testing.T) {
	svc, provider, reg := newDocumentFixture(t)

	res, err := svc.Upload(context.Background(), "alice", "Alice", "notes.txt",
		strings.NewReader("The project launches in March.\n\nBudget was approved last quarter."))
	require.NoError(t, err)

	assert.Equal(t, "success", res.Status)
	assert.Contains(t, res.Message, "notes.txt")
	assert.Equal(t, 1, res.Chunks)

	// Index populated and session activated in one pass.
	store := provider.stores["alice"]
	require.NotNil(t, store)
	assert.Len(t, store.entries, res.Chunks)
	assert.True(t, reg.HasActiveSession("alice"))

	view, ok := reg.Snapshot("alice")
	require.True(t, ok)
	assert.Equal(t, "Alice", view.DisplayName)
	assert.Empty(t, view.History)
}

func TestUploadReplacesPreviousIndexAndHistory(t *testing.T) {
	svc, provider, reg := newDocumentFixture(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "alice", "Alice", "first.txt", strings.NewReader("first document content"))
	require.NoError(t, err)
	require.NoError(t, reg.AppendTurn("alice", "q", "a"))
	firstStore := provider.stores["alice"]

	_, err = svc.Upload(ctx, "alice", "Alice", "second.txt", strings.NewReader("second document content"))
	require.NoError(t, err)

	secondStore := provider.stores["alice"]
	assert.NotSame(t, firstStore, secondStore)
	assert.Equal(t, 2, provider.replaceCalls)

	view, ok := reg.Snapshot("alice")
	require.True(t, ok)
	assert.Empty(t, view.History, "history must reset on re-upload")
	for _, e := range secondStore.entries {
		assert.NotContains(t, e.Text, "first document")
	}
}

func TestUploadEmbeddingFailure(t *testing.T) {
	ch, err := chunker.New(chunker.DefaultChunkSize, chunker.DefaultOverlap)
	require.NoError(t, err)
	provider := newMemProvider()
	reg := registry.New(provider, 0)

	svc, err := NewDocumentService(ch, &stubEmbedder{err: errors.New("embedding backend down")}, provider, reg, 2, nopLogger{})
	require.NoError(t, err)
	defer svc.Release()

	_, err = svc.Upload(context.Background(), "alice", "Alice", "notes.txt", strings.NewReader("some content"))

	var perr *apperror.ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "embedding", perr.Stage)

	// The old collection must survive a failed re-ingestion.
	assert.Equal(t, 0, provider.replaceCalls)
	assert.False(t, reg.HasActiveSession("alice"))
}

func TestUploadIndexCreationFailure(t *testing.T) {
	ch, err := chunker.New(chunker.DefaultChunkSize, chunker.DefaultOverlap)
	require.NoError(t, err)
	provider := newMemProvider()
	provider.replaceErr = errors.New("disk full")
	reg := registry.New(provider, 0)

	svc, err := NewDocumentService(ch, &stubEmbedder{}, provider, reg, 2, nopLogger{})
	require.NoError(t, err)
	defer svc.Release()

	_, err = svc.Upload(context.Background(), "alice", "Alice", "notes.txt", strings.NewReader("some content"))

	var perr *apperror.ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "index creation", perr.Stage)
	assert.False(t, reg.HasActiveSession("alice"))
}

func TestUploadEmbedsEveryChunk(t *testing.T) {
	ch, err := chunker.New(50, 10)
	require.NoError(t, err)
	provider := newMemProvider()
	reg := registry.New(provider, 0)
	embedder := &stubEmbedder{}

	svc, err := NewDocumentService(ch, embedder, provider, reg, 4, nopLogger{})
	require.NoError(t, err)
	defer svc.Release()

	text := strings.Repeat("every chunk needs its own vector before indexing ", 10)
	res, err := svc.Upload(context.Background(), "alice", "Alice", "long.txt", strings.NewReader(text))
	require.NoError(t, err)

	assert.Greater(t, res.Chunks, 1)
	assert.Equal(t, res.Chunks, embedder.calls)
	assert.Len(t, provider.stores["alice"].entries, res.Chunks)
}

// stagedFiles lists the upload staging files currently present in the
// system temp directory.
func stagedFiles(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "docmind-*"))
	require.NoError(t, err)
	return matches
}

func TestUploadCleansUpTempFileOnSuccess(t *testing.T) {
	svc, _, _ := newDocumentFixture(t)
	before := stagedFiles(t)

	_, err := svc.Upload(context.Background(), "alice", "Alice", "notes.txt",
		strings.NewReader("document content to ingest"))
	require.NoError(t, err)

	assert.ElementsMatch(t, before, stagedFiles(t), "staging file must not outlive the upload")
}

func TestUploadCleansUpTempFileOnExtractionFailure(t *testing.T) {
	svc, provider, _ := newDocumentFixture(t)
	before := stagedFiles(t)

	// Valid extension, invalid content: the staging file is written but
	// extraction fails.
	_, err := svc.Upload(context.Background(), "alice", "Alice", "broken.pdf",
		strings.NewReader("not a pdf at all"))

	var perr *apperror.ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "extraction", perr.Stage)
	assert.Equal(t, 0, provider.replaceCalls)
	assert.ElementsMatch(t, before, stagedFiles(t), "staging file must be removed on failure")
}

func TestDeleteDocuments(t *testing.T) {
	svc, provider, reg := newDocumentFixture(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "alice", "Alice", "notes.txt", strings.NewReader("document content"))
	require.NoError(t, err)
	require.True(t, reg.HasActiveSession("alice"))

	require.NoError(t, svc.DeleteDocuments(ctx, "alice"))

	assert.Equal(t, 1, provider.dropCalls)
	assert.False(t, reg.HasActiveSession("alice"))
	_, found, err := provider.Open(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, found)
}
