package responder

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmind-be/internal/apperror"
	"docmind-be/pkg/embedding"
	"docmind-be/pkg/llm"
	"docmind-be/pkg/rag/registry"
	"docmind-be/pkg/vectorstore"
)

type fakeEmbedder struct {
	err   error
	tasks []string
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, taskType)
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeLLM struct {
	err     error
	answers []string
	calls   int
	prompts []string
	opts    llm.Options
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	for _, opt := range options {
		opt(&f.opts)
	}
	f.prompts = append(f.prompts, prompt)
	answer := f.answers[f.calls%len(f.answers)]
	f.calls++
	return answer, nil
}

type fakeSearchStore struct {
	documents []vectorstore.Document
	err       error
	lastTopK  int
}

func (f *fakeSearchStore) Add(ctx context.Context, entries []vectorstore.Entry) error { return nil }
func (f *fakeSearchStore) Search(ctx context.Context, vector []float32, topK int) ([]vectorstore.Document, error) {
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.documents, nil
}
func (f *fakeSearchStore) Count(ctx context.Context) (int, error) { return len(f.documents), nil }

type staticProvider struct{}

func (staticProvider) Open(ctx context.Context, userID string) (vectorstore.Store, bool, error) {
	return nil, false, nil
}
func (staticProvider) Replace(ctx context.Context, userID string) (vectorstore.Store, error) {
	return nil, errors.New("not used")
}
func (staticProvider) Drop(ctx context.Context, userID string) error { return nil }
func (staticProvider) Close() error                                  { return nil }

func setupSession(t *testing.T, store vectorstore.Store) *registry.Registry {
	t.Helper()
	reg := registry.New(staticProvider{}, 0)
	require.NoError(t, reg.InitializeSession("alice", "Alice", store))
	return reg
}

func TestRespondNoActiveSession(t *testing.T) {
	reg := registry.New(staticProvider{}, 0)
	r := New(reg, &fakeEmbedder{}, &fakeLLM{answers: []string{"hi"}}, 4, 0.3)

	_, err := r.Respond(context.Background(), "alice", "anything")
	assert.ErrorIs(t, err, apperror.ErrNoActiveSession)
}

func TestRespondHappyPath(t *testing.T) {
	store := &fakeSearchStore{documents: []vectorstore.Document{
		{Text: "chunk one", Source: "page 1", Score: 0.9},
		{Text: "chunk two", Source: "page 2", Score: 0.7},
	}}
	embedder := &fakeEmbedder{}
	model := &fakeLLM{answers: []string{"The answer."}}
	reg := setupSession(t, store)
	r := New(reg, embedder, model, 4, 0.3)

	res, err := r.Respond(context.Background(), "alice", "what is this?")
	require.NoError(t, err)

	assert.Equal(t, "The answer.", res.Answer)
	assert.Equal(t, []string{"chunk one", "chunk two"}, res.Sources)
	assert.Equal(t, []string{embedding.TaskQuery}, embedder.tasks)
	assert.Equal(t, 4, store.lastTopK)
	assert.InDelta(t, 0.3, model.opts.Temperature, 1e-9)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "chunk one")
	assert.Contains(t, model.prompts[0], "what is this?")
	assert.Contains(t, model.prompts[0], "Alice")
}

func TestRespondRecordsTurn(t *testing.T) {
	store := &fakeSearchStore{}
	reg := setupSession(t, store)
	r := New(reg, &fakeEmbedder{}, &fakeLLM{answers: []string{"first answer", "second answer"}}, 4, 0.3)

	_, err := r.Respond(context.Background(), "alice", "first question")
	require.NoError(t, err)

	view, ok := reg.Snapshot("alice")
	require.True(t, ok)
	require.Len(t, view.History, 1)
	assert.Equal(t, "first question", view.History[0].Question)
	assert.Equal(t, "first answer", view.History[0].Answer)
}

func TestRespondHistoryFlowsIntoNextPrompt(t *testing.T) {
	store := &fakeSearchStore{}
	model := &fakeLLM{answers: []string{"answer one", "answer two"}}
	reg := setupSession(t, store)
	r := New(reg, &fakeEmbedder{}, model, 4, 0.3)

	_, err := r.Respond(context.Background(), "alice", "question one")
	require.NoError(t, err)
	_, err = r.Respond(context.Background(), "alice", "question two")
	require.NoError(t, err)

	require.Len(t, model.prompts, 2)
	assert.NotContains(t, model.prompts[0], "Human: question one")
	assert.Contains(t, model.prompts[1], "Human: question one")
	assert.Contains(t, model.prompts[1], "Assistant: answer one")
}

func TestRespondEmbeddingFailure(t *testing.T) {
	reg := setupSession(t, &fakeSearchStore{})
	r := New(reg, &fakeEmbedder{err: errors.New("embed backend down")}, &fakeLLM{answers: []string{"x"}}, 4, 0.3)

	_, err := r.Respond(context.Background(), "alice", "q")
	var perr *apperror.ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "query embedding", perr.Stage)
}

func TestRespondRetrievalFailure(t *testing.T) {
	store := &fakeSearchStore{err: errors.New("index corrupt")}
	reg := setupSession(t, store)
	r := New(reg, &fakeEmbedder{}, &fakeLLM{answers: []string{"x"}}, 4, 0.3)

	_, err := r.Respond(context.Background(), "alice", "q")
	var perr *apperror.ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "retrieval", perr.Stage)
}

func TestRespondModelFailureLeavesHistoryUntouched(t *testing.T) {
	store := &fakeSearchStore{}
	reg := setupSession(t, store)
	r := New(reg, &fakeEmbedder{}, &fakeLLM{err: fmt.Errorf("model timeout")}, 4, 0.3)

	_, err := r.Respond(context.Background(), "alice", "q")
	var merr *apperror.ModelInvocationError
	require.ErrorAs(t, err, &merr)

	view, ok := reg.Snapshot("alice")
	require.True(t, ok)
	assert.Empty(t, view.History)
}

func TestNewDefaults(t *testing.T) {
	r := New(nil, nil, nil, 0, 0)
	assert.Equal(t, DefaultTopK, r.topK)
	assert.InDelta(t, DefaultTemperature, r.temperature, 1e-9)
}
