// Package pgvectorstore backs the per-user index with Postgres + pgvector.
// Every user's collection is a slice of the document_embeddings table keyed
// by a derived collection name.
package pgvectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"docmind-be/pkg/vectorstore"
)

type DocumentEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Collection     string          `gorm:"type:text;not null;index"`
	Document       string          `gorm:"type:text"`
	Source         string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 and nomic-embed-text are 768-dimensional
	ChunkIndex     int             `gorm:"default:0"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (DocumentEmbedding) TableName() string {
	return "document_embeddings"
}

type Provider struct {
	db *gorm.DB
}

var _ vectorstore.Provider = (*Provider)(nil)

func NewProvider(db *gorm.DB) (*Provider, error) {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("enable pgvector extension: %w", err)
	}
	if err := db.AutoMigrate(&DocumentEmbedding{}); err != nil {
		return nil, fmt.Errorf("migrate document_embeddings: %w", err)
	}
	return &Provider{db: db}, nil
}

func (p *Provider) Open(ctx context.Context, userID string) (vectorstore.Store, bool, error) {
	collection := vectorstore.CollectionName(userID)

	var count int64
	err := p.db.WithContext(ctx).
		Model(&DocumentEmbedding{}).
		Where("collection = ?", collection).
		Count(&count).Error
	if err != nil {
		return nil, false, err
	}
	if count == 0 {
		return nil, false, nil
	}
	return &store{db: p.db, collection: collection}, true, nil
}

func (p *Provider) Replace(ctx context.Context, userID string) (vectorstore.Store, error) {
	collection := vectorstore.CollectionName(userID)

	err := p.db.WithContext(ctx).
		Where("collection = ?", collection).
		Delete(&DocumentEmbedding{}).Error
	if err != nil {
		return nil, fmt.Errorf("drop collection %s: %w", collection, err)
	}
	return &store{db: p.db, collection: collection}, nil
}

func (p *Provider) Drop(ctx context.Context, userID string) error {
	collection := vectorstore.CollectionName(userID)
	return p.db.WithContext(ctx).
		Where("collection = ?", collection).
		Delete(&DocumentEmbedding{}).Error
}

func (p *Provider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type store struct {
	db         *gorm.DB
	collection string
}

func (s *store) Add(ctx context.Context, entries []vectorstore.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	var base int64
	err := s.db.WithContext(ctx).
		Model(&DocumentEmbedding{}).
		Where("collection = ?", s.collection).
		Count(&base).Error
	if err != nil {
		return err
	}

	models := make([]DocumentEmbedding, len(entries))
	for i, entry := range entries {
		models[i] = DocumentEmbedding{
			Id:             uuid.New(),
			Collection:     s.collection,
			Document:       entry.Text,
			Source:         entry.Source,
			EmbeddingValue: pgvector.NewVector(entry.Embedding),
			ChunkIndex:     int(base) + i,
		}
	}
	return s.db.WithContext(ctx).CreateInBatches(models, 100).Error
}

func (s *store) Search(ctx context.Context, vector []float32, topK int) ([]vectorstore.Document, error) {
	if topK <= 0 {
		topK = 4
	}

	// Cosine distance in pgvector is 1 - cosine_similarity.
	type row struct {
		Document   string
		Source     string
		Similarity float32
	}
	var rows []row

	queryVector := pgvector.NewVector(vector)
	err := s.db.WithContext(ctx).
		Table("document_embeddings").
		Select("document, source, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("collection = ?", s.collection).
		Order(gorm.Expr("embedding_value <=> ?", queryVector)).
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	docs := make([]vectorstore.Document, len(rows))
	for i, r := range rows {
		docs[i] = vectorstore.Document{
			Text:   r.Document,
			Source: r.Source,
			Score:  r.Similarity,
		}
	}
	return docs, nil
}

func (s *store) Count(ctx context.Context) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&DocumentEmbedding{}).
		Where("collection = ?", s.collection).
		Count(&count).Error
	return int(count), err
}
