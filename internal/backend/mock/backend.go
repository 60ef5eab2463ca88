// Package mock is the disconnected-mode stand-in: one stateful backend
// implementing all three capability contracts against named in-memory
// collections. Every operation waits a fixed simulated latency before
// touching state so caller loading paths stay exercised offline.
package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FairForge/backplane/internal/provider"
)

// DefaultLatency is the simulated round-trip applied to every operation.
const DefaultLatency = 120 * time.Millisecond

type storedFile struct {
	desc provider.FileDescriptor
	data []byte
}

var (
	_ provider.Auth     = (*Backend)(nil)
	_ provider.Database = (*Backend)(nil)
	_ provider.Storage  = (*Backend)(nil)
)

// Backend holds the fixture store. Collections live for the process session
// and reset only with it.
type Backend struct {
	logger  *zap.Logger
	latency time.Duration

	mu      sync.Mutex
	users   map[string]*provider.User // email -> user
	session *provider.Session
	current *provider.User
	docs    map[string]map[string]*provider.Document // dbID/collectionID -> id -> doc
	files   map[string]map[string]*storedFile        // bucketID -> id -> file
}

// Option configures a Backend.
type Option func(*Backend)

// WithLatency overrides the simulated latency (tests use ~0).
func WithLatency(d time.Duration) Option {
	return func(b *Backend) { b.latency = d }
}

// WithUser seeds a fixture account.
func WithUser(u provider.User) Option {
	return func(b *Backend) {
		cp := u
		if cp.ID == "" {
			cp.ID = uuid.New().String()
		}
		b.users[strings.ToLower(u.Email)] = &cp
	}
}

// WithDocument seeds a fixture document.
func WithDocument(dbID, collectionID string, doc provider.Document) Option {
	return func(b *Backend) {
		key := collectionKey(dbID, collectionID)
		if b.docs[key] == nil {
			b.docs[key] = make(map[string]*provider.Document)
		}
		cp := cloneDocument(doc)
		b.docs[key][doc.ID] = &cp
	}
}

// NewBackend creates the mock triad.
func NewBackend(logger *zap.Logger, opts ...Option) *Backend {
	b := &Backend{
		logger:  logger,
		latency: DefaultLatency,
		users:   make(map[string]*provider.User),
		docs:    make(map[string]map[string]*provider.Document),
		files:   make(map[string]map[string]*storedFile),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// wait simulates backend latency while honoring cancellation.
func (b *Backend) wait(ctx context.Context) error {
	if b.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(b.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func collectionKey(dbID, collectionID string) string {
	return dbID + "/" + collectionID
}

func cloneDocument(doc provider.Document) provider.Document {
	cp := doc
	cp.Data = make(map[string]any, len(doc.Data))
	for k, v := range doc.Data {
		cp.Data[k] = v
	}
	return cp
}
