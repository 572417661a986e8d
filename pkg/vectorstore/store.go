// Package vectorstore defines the per-user durable index abstraction: a named
// collection of (chunk text, embedding) pairs supporting nearest-neighbor
// search. Backends own durability; sessions only hold non-owning handles.
package vectorstore

import (
	"context"
	"fmt"
	"regexp"
)

// Document is a retrieved chunk with its citation back-reference and
// similarity score.
type Document struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float32 `json:"score"`
}

// Entry is one chunk ready for insertion.
type Entry struct {
	Text      string
	Source    string
	Embedding []float32
}

// Store is the handle to one user's collection.
type Store interface {
	Add(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, vector []float32, topK int) ([]Document, error)
	Count(ctx context.Context) (int, error)
}

// Provider manages the durable per-user collections.
type Provider interface {
	// Open returns the handle for the user's collection. The second return is
	// false when no prior ingestion exists for the user; that is not an error.
	Open(ctx context.Context, userID string) (Store, bool, error)

	// Replace drops any prior collection for the user and returns a fresh,
	// empty handle. Old content must not be retrievable afterwards.
	Replace(ctx context.Context, userID string) (Store, error)

	// Drop permanently removes the user's collection.
	Drop(ctx context.Context, userID string) error

	// Close releases backend resources held by the provider.
	Close() error
}

var safeUserID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// CollectionName derives a stable, collision-free collection name from an
// opaque user identity. IDs already safe for filesystems and SQL pass through
// under the "u-" prefix; anything else is hex encoded under "h-". The two
// prefixes keep the mapping injective.
func CollectionName(userID string) string {
	if safeUserID.MatchString(userID) {
		return "u-" + userID
	}
	return fmt.Sprintf("h-%x", userID)
}
