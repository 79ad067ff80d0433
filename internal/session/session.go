// Package session scopes each uploaded dataset to one exclusively
// owned session: an id, the live dataset, and the compressed original
// upload bytes. The registry replaces the global dataframe slots of a
// shared-state design with explicit per-session lifecycles: create on
// upload, replace wholesale on re-upload, tear down on delete or TTL
// expiry.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/datadeck-io/datadeck/internal/dataset"
	"github.com/datadeck-io/datadeck/internal/models"
)

// ErrNotFound is returned for session ids that do not exist or have
// already been evicted.
var ErrNotFound = errors.New("session not found")

// Session owns one dataset. All dataset access goes through Do, which
// serializes interactions on the session: views are synchronous single
// passes, and the one mutation the core performs (the text-to-temporal
// fallback) happens under the same lock.
type Session struct {
	ID string

	mu         sync.Mutex
	name       string
	ds         *dataset.Dataset
	source     []byte // snappy-compressed original upload, nil for database loads
	createdAt  time.Time
	lastAccess time.Time
}

// Name returns the upload filename or source table of the session.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Do runs fn with exclusive access to the session's dataset and marks
// the session as recently used.
func (s *Session) Do(fn func(d *dataset.Dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
	return fn(s.ds)
}

// Replace swaps in a freshly parsed dataset. Callers parse first and
// only call Replace on success, so a failed re-upload never touches
// the prior dataset.
func (s *Session) Replace(name string, ds *dataset.Dataset, source []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.ds = ds
	s.source = compress(source)
	s.lastAccess = time.Now()
}

// Source returns the original upload bytes, decompressed. ok is false
// for sessions loaded from a database, which have no source file.
func (s *Session) Source() (data []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return nil, false, nil
	}
	data, err = snappy.Decode(nil, s.source)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// LastAccess returns the time of the most recent interaction.
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

func (s *Session) info() models.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SessionInfo{
		ID:         s.ID,
		Name:       s.name,
		Rows:       s.ds.RowCount(),
		Columns:    s.ds.ColumnCount(),
		CreatedAt:  s.createdAt,
		LastAccess: s.lastAccess,
	}
}

func compress(source []byte) []byte {
	if source == nil {
		return nil
	}
	return snappy.Encode(nil, source)
}

// Registry tracks the live sessions. The registry lock guards only the
// map; per-session state stays behind each session's own lock, so one
// session's long computation never blocks another's.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewRegistry builds an empty registry. Sessions idle for longer than
// ttl are removed by the janitor sweep; a zero ttl disables expiry.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a new session owning the given dataset. source
// holds the original upload bytes and may be nil for database loads.
func (r *Registry) Create(name string, ds *dataset.Dataset, source []byte) *Session {
	now := time.Now()
	s := &Session{
		ID:         uuid.NewString(),
		name:       name,
		ds:         ds,
		source:     compress(source),
		createdAt:  now,
		lastAccess: now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete tears down a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

// List describes the live sessions, oldest first.
func (r *Registry) List() []models.SessionInfo {
	r.mu.RLock()
	infos := make([]models.SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		infos = append(infos, s.info())
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// sweep drops sessions idle past the TTL and reports how many were
// removed. It only evicts; it never recomputes anything.
func (r *Registry) sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if now.Sub(s.LastAccess()) > r.ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
