// Package registry owns the process-wide map from user identity to active
// conversation session. A session is active iff both its turn history and its
// index store handle are present; partial state is treated as no session.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"docmind-be/internal/apperror"
	"docmind-be/pkg/vectorstore"
)

// Turn is one question/answer exchange.
type Turn struct {
	Question string
	Answer   string
}

// session pairs dialogue history with a non-owning index store reference.
// The durable store itself is owned by the vectorstore provider.
type session struct {
	displayName string
	store       vectorstore.Store
	history     []Turn
}

// View is a read-only snapshot of a session handed to the responder. History
// is a copy; mutating it does not touch the registry.
type View struct {
	DisplayName string
	Store       vectorstore.Store
	History     []Turn
}

// Registry is the single conversation registry instance, constructed at
// process start and passed to request handlers.
type Registry struct {
	sessions *cache.Cache
	provider vectorstore.Provider

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a registry. ttl of zero means sessions never expire, matching
// the registry's original no-eviction behavior; a positive ttl bounds the
// in-memory map for long-running multi-tenant deployments.
func New(provider vectorstore.Provider, ttl time.Duration) *Registry {
	expiration := cache.NoExpiration
	purge := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		purge = 10 * time.Minute
	}
	return &Registry{
		sessions: cache.New(expiration, purge),
		provider: provider,
		locks:    make(map[string]*sync.Mutex),
	}
}

// userLock returns the serialization point for one user's session mutations.
// Different users never contend on it.
func (r *Registry) userLock(userID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[userID] = lock
	}
	return lock
}

func (r *Registry) get(userID string) (*session, bool) {
	v, found := r.sessions.Get(userID)
	if !found {
		return nil, false
	}
	s, ok := v.(*session)
	return s, ok
}

// HasActiveSession reports whether both history and store reference exist for
// the user. It never errors and has no side effects; an unknown user is
// simply false.
func (r *Registry) HasActiveSession(userID string) bool {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return r.hasActiveSession(userID)
}

// hasActiveSession is the unlocked check; callers must hold the user's lock.
// Session fields are read and written under that lock, so the check here and
// a concurrent AppendTurn never touch the history slice unguarded.
func (r *Registry) hasActiveSession(userID string) bool {
	s, found := r.get(userID)
	return found && s.store != nil && s.history != nil
}

// InitializeSession installs a fresh session with empty history bound to the
// given store, replacing any prior session for the user in a single swap.
func (r *Registry) InitializeSession(userID, displayName string, store vectorstore.Store) error {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if store == nil {
		return &apperror.SessionInitError{UserID: userID}
	}

	// Build the full session aside, then swap it in as one Set.
	s := &session{
		displayName: displayName,
		store:       store,
		history:     make([]Turn, 0, 8),
	}
	r.sessions.Set(userID, s, cache.DefaultExpiration)

	if !r.hasActiveSession(userID) {
		return &apperror.SessionInitError{UserID: userID}
	}
	return nil
}

// Snapshot returns a consistent view of the user's session.
func (r *Registry) Snapshot(userID string) (View, bool) {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s, found := r.get(userID)
	if !found || s.store == nil || s.history == nil {
		return View{}, false
	}

	history := make([]Turn, len(s.history))
	copy(history, s.history)
	return View{
		DisplayName: s.displayName,
		Store:       s.store,
		History:     history,
	}, true
}

// AppendTurn records a completed exchange. Appends for one user are strictly
// ordered by the per-user lock.
func (r *Registry) AppendTurn(userID string, question, answer string) error {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s, found := r.get(userID)
	if !found || s.store == nil || s.history == nil {
		return apperror.ErrNoActiveSession
	}
	s.history = append(s.history, Turn{Question: question, Answer: answer})
	return nil
}

// ClearHistory resets the session's history to empty. Missing session is a
// no-op, not an error.
func (r *Registry) ClearHistory(userID string) {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s, found := r.get(userID)
	if !found {
		return
	}
	s.history = s.history[:0]
}

// Detach removes the in-memory session only; the durable index store is
// untouched and reattachment remains possible.
func (r *Registry) Detach(userID string) {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	r.sessions.Delete(userID)
}

// IndexStoreHandle looks up the durable store for the user, independent of
// any in-memory session. It backs reattachment after restart or eviction.
func (r *Registry) IndexStoreHandle(ctx context.Context, userID string) (vectorstore.Store, bool, error) {
	return r.provider.Open(ctx, userID)
}
