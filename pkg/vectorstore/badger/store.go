// Package badgerstore persists each user's collection as a BadgerDB database
// in its own subdirectory of the configured root path.
package badgerstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"docmind-be/pkg/vectorstore"
)

const chunkKeyPrefix = "chunk:"

// Provider opens one Badger database per user. Handles are cached so a
// session and a concurrent re-ingestion resolve to the same *badger.DB;
// Badger locks its directory, so a second open of the same path would fail.
type Provider struct {
	root string

	mu   sync.Mutex
	open map[string]*badger.DB
}

var _ vectorstore.Provider = (*Provider)(nil)

func NewProvider(root string) (*Provider, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create vector store root: %w", err)
	}
	return &Provider{
		root: root,
		open: make(map[string]*badger.DB),
	}, nil
}

func (p *Provider) userPath(userID string) string {
	return filepath.Join(p.root, vectorstore.CollectionName(userID))
}

func (p *Provider) openDB(userID string) (*badger.DB, error) {
	if db, ok := p.open[userID]; ok {
		return db, nil
	}

	opts := badger.DefaultOptions(p.userPath(userID))
	opts.Compression = options.None
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open collection for user %s: %w", userID, err)
	}
	p.open[userID] = db
	return db, nil
}

func (p *Provider) Open(ctx context.Context, userID string) (vectorstore.Store, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.open[userID]; !ok {
		if _, err := os.Stat(p.userPath(userID)); os.IsNotExist(err) {
			return nil, false, nil
		} else if err != nil {
			return nil, false, err
		}
	}

	db, err := p.openDB(userID)
	if err != nil {
		return nil, false, err
	}
	return &store{db: db}, true, nil
}

func (p *Provider) Replace(ctx context.Context, userID string) (vectorstore.Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if db, ok := p.open[userID]; ok {
		delete(p.open, userID)
		if err := db.Close(); err != nil {
			return nil, fmt.Errorf("close stale collection: %w", err)
		}
	}
	if err := os.RemoveAll(p.userPath(userID)); err != nil {
		return nil, fmt.Errorf("remove stale collection: %w", err)
	}

	db, err := p.openDB(userID)
	if err != nil {
		return nil, err
	}
	return &store{db: db}, nil
}

func (p *Provider) Drop(ctx context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if db, ok := p.open[userID]; ok {
		delete(p.open, userID)
		if err := db.Close(); err != nil {
			return err
		}
	}
	return os.RemoveAll(p.userPath(userID))
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for userID, db := range p.open {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.open, userID)
	}
	return firstErr
}

// chunkRecord is the stored value; embeddings are kept normalized so search
// can use a plain dot product.
type chunkRecord struct {
	Text   string    `json:"text"`
	Source string    `json:"source"`
	Vector []float32 `json:"vector"`
}

type store struct {
	db *badger.DB
}

func chunkKey(index int) []byte {
	key := make([]byte, len(chunkKeyPrefix)+8)
	copy(key, chunkKeyPrefix)
	binary.BigEndian.PutUint64(key[len(chunkKeyPrefix):], uint64(index))
	return key
}

func (s *store) Add(ctx context.Context, entries []vectorstore.Entry) error {
	base, err := s.Count(ctx)
	if err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i, entry := range entries {
		value, err := json.Marshal(chunkRecord{
			Text:   entry.Text,
			Source: entry.Source,
			Vector: entry.Embedding,
		})
		if err != nil {
			return fmt.Errorf("encode chunk %d: %w", base+i, err)
		}
		if err := wb.Set(chunkKey(base+i), value); err != nil {
			return fmt.Errorf("stage chunk %d: %w", base+i, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("persist chunks: %w", err)
	}
	return nil
}

func (s *store) Search(ctx context.Context, vector []float32, topK int) ([]vectorstore.Document, error) {
	if topK <= 0 {
		topK = 4
	}

	var scored []vectorstore.Document
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec chunkRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode chunk: %w", err)
			}
			scored = append(scored, vectorstore.Document{
				Text:   rec.Text,
				Source: rec.Source,
				Score:  dot(rec.Vector, vector),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored, nil
}

func (s *store) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// dot computes cosine similarity for unit-length vectors.
func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
