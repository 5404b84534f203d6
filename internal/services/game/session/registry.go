// Package session holds live sect sessions.
//
// A Registry maps session ids to handles. Each Handle serializes every
// operation on its sect behind its own mutex, so sessions proceed
// independently while a single session stays single-threaded. The sect
// pointer never leaves Do; callers return projections, which are copies.
package session

import (
	"errors"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	apperrors "github.com/louisbranch/sect.ascension/internal/platform/errors"
	"github.com/louisbranch/sect.ascension/internal/platform/id"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/catalog"
	"github.com/louisbranch/sect.ascension/internal/services/game/domain/sect"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = apperrors.New(apperrors.CodeSectNotFound, "session not found")

// Handle owns one sect.
type Handle struct {
	id string
	mu sync.Mutex
	s  *sect.Sect
}

// ID returns the session id.
func (h *Handle) ID() string {
	return h.id
}

// Do runs fn with exclusive access to the sect. A handle whose session was
// deleted reports ErrNotFound without calling fn.
func (h *Handle) Do(fn func(*sect.Sect) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.s == nil {
		return notFound(h.id)
	}
	return fn(h.s)
}

func notFound(sid string) error {
	return apperrors.WithMetadata(ErrNotFound.Code, ErrNotFound.Message, map[string]string{"session_id": sid})
}

// Registry is a concurrent map of session handles.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Handle
	catalog  *catalog.Catalog
	config   sect.Config
	log      *logrus.Entry
}

// NewRegistry returns an empty registry that founds sects from cat with cfg.
func NewRegistry(cat *catalog.Catalog, cfg sect.Config, log *logrus.Entry) *Registry {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Registry{
		sessions: make(map[string]*Handle),
		catalog:  cat,
		config:   cfg,
		log:      log,
	}
}

// CreateOptions customize a new session.
type CreateOptions struct {
	Name string
	// Seed overrides the registry seed when non-zero.
	Seed int64
}

// Create founds a new sect and returns its session id.
func (r *Registry) Create(opts CreateOptions) (string, error) {
	sid, err := id.New(id.Session)
	if err != nil {
		return "", err
	}
	cfg := r.config
	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}
	s, err := sect.New(sect.Params{
		ID:      sid,
		Name:    opts.Name,
		Config:  cfg,
		Catalog: r.catalog,
		Logger:  r.log.WithField("session_id", sid),
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInvalidArgument, "create session", err)
	}

	r.mu.Lock()
	r.sessions[sid] = &Handle{id: sid, s: s}
	r.mu.Unlock()
	r.log.WithField("session_id", sid).Info("session created")
	return sid, nil
}

// Get returns the handle for sid.
func (r *Registry) Get(sid string) (*Handle, error) {
	r.mu.RLock()
	h, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return nil, notFound(sid)
	}
	return h, nil
}

// Do runs fn against the session sid.
func (r *Registry) Do(sid string, fn func(*sect.Sect) error) error {
	h, err := r.Get(sid)
	if err != nil {
		return err
	}
	return h.Do(fn)
}

// Delete drops a session. It waits for an in-flight operation on it.
func (r *Registry) Delete(sid string) error {
	r.mu.Lock()
	h, ok := r.sessions[sid]
	delete(r.sessions, sid)
	r.mu.Unlock()
	if !ok {
		return notFound(sid)
	}
	h.mu.Lock()
	h.s = nil
	h.mu.Unlock()
	r.log.WithField("session_id", sid).Info("session deleted")
	return nil
}

// IDs lists live session ids in order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for sid := range r.sessions {
		ids = append(ids, sid)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IsNotFound reports whether err names a missing session.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
