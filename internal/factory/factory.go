// Package factory owns provider selection and lifetime: it resolves the
// configuration snapshot exactly once, constructs each required adapter at
// most once, and hands out the same cached instances for the rest of the
// process. Application code goes through the three accessors and never
// imports a concrete backend.
package factory

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/FairForge/backplane/internal/backend/alpha"
	"github.com/FairForge/backplane/internal/backend/beta"
	"github.com/FairForge/backplane/internal/backend/gamma"
	"github.com/FairForge/backplane/internal/backend/mock"
	"github.com/FairForge/backplane/internal/config"
	"github.com/FairForge/backplane/internal/provider"
)

// Factory resolves lazily on first accessor call. Concurrent first callers
// all wait on the same resolution; there is no re-resolution API — changing
// configuration requires a fresh process.
type Factory struct {
	cfg      *config.Config
	logger   *zap.Logger
	mockOpts []mock.Option

	once   sync.Once
	err    error
	builds atomic.Int64

	auth     provider.Auth
	database provider.Database
	storage  provider.Storage

	// shared underlying handles, constructed at most once
	alphaClient *alpha.Client
	betaClient  *beta.Client
	mockBackend *mock.Backend
}

// Option configures a Factory before resolution.
type Option func(*Factory)

// WithMockOptions forwards fixture and latency options to the mock backend
// when mock mode (or a mock selector) is active.
func WithMockOptions(opts ...mock.Option) Option {
	return func(f *Factory) { f.mockOpts = append(f.mockOpts, opts...) }
}

// New creates an unresolved factory. Nothing is constructed until the first
// accessor call.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *Factory {
	f := &Factory{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Auth returns the auth provider, or nil when the configured selector has no
// matching adapter (capability unavailable).
func (f *Factory) Auth() (provider.Auth, error) {
	f.once.Do(f.resolve)
	return f.auth, f.err
}

// Database returns the database provider, or nil when unavailable.
func (f *Factory) Database() (provider.Database, error) {
	f.once.Do(f.resolve)
	return f.database, f.err
}

// Storage returns the storage provider, or nil when unavailable.
func (f *Factory) Storage() (provider.Storage, error) {
	f.once.Do(f.resolve)
	return f.storage, f.err
}

// Builds reports how many underlying client handles have been constructed.
// Diagnostic; the count never grows after resolution.
func (f *Factory) Builds() int64 {
	return f.builds.Load()
}

// resolve runs exactly once. The real-vs-mock decision happens here and
// nowhere else.
func (f *Factory) resolve() {
	if err := f.cfg.Validate(); err != nil {
		f.err = err
		return
	}

	if f.cfg.MockMode {
		m := f.mock()
		f.auth, f.database, f.storage = m, m, m
		f.logger.Info("providers resolved", zap.String("mode", "mock"))
		return
	}

	f.auth = f.resolveAuth(f.cfg.Auth.Backend)
	f.database = f.resolveDatabase(f.cfg.Database.Backend)
	f.storage = f.resolveStorage(f.cfg.Storage.Backend)

	f.logger.Info("providers resolved",
		zap.String("auth", f.cfg.Auth.Backend),
		zap.String("database", f.cfg.Database.Backend),
		zap.String("storage", f.cfg.Storage.Backend),
		zap.Int64("handles", f.builds.Load()))
}

func (f *Factory) resolveAuth(selector string) provider.Auth {
	switch selector {
	case config.BackendAlpha:
		return alpha.NewAuth(f.alpha())
	case config.BackendBeta:
		return beta.NewAuth(f.beta())
	case config.BackendMock:
		return f.mock()
	default:
		f.warnUnmatched("auth", selector)
		return nil
	}
}

func (f *Factory) resolveDatabase(selector string) provider.Database {
	switch selector {
	case config.BackendAlpha:
		return alpha.NewDatabase(f.alpha())
	case config.BackendBeta:
		return beta.NewDatabase(f.beta())
	case config.BackendMock:
		return f.mock()
	default:
		f.warnUnmatched("database", selector)
		return nil
	}
}

func (f *Factory) resolveStorage(selector string) provider.Storage {
	switch selector {
	case config.BackendAlpha:
		return alpha.NewStorage(f.alpha())
	case config.BackendGamma:
		f.builds.Add(1)
		return gamma.NewStorage(f.cfg.Gamma.ProxyURL, f.cfg.Gamma.PublicURLBase, f.logger)
	case config.BackendMock:
		return f.mock()
	default:
		f.warnUnmatched("storage", selector)
		return nil
	}
}

// alpha returns the shared service handle, constructing it on first use so
// capabilities pointing at the same deployment share one session setup.
func (f *Factory) alpha() *alpha.Client {
	if f.alphaClient == nil {
		f.builds.Add(1)
		f.alphaClient = alpha.NewClient(f.cfg.Alpha.Endpoint, f.cfg.Alpha.ProjectID, f.logger)
	}
	return f.alphaClient
}

func (f *Factory) beta() *beta.Client {
	if f.betaClient == nil {
		f.builds.Add(1)
		f.betaClient = beta.NewClient(f.cfg.Beta.Endpoint, f.cfg.Beta.ProjectID, f.cfg.Beta.APIKey, f.logger)
	}
	return f.betaClient
}

func (f *Factory) mock() *mock.Backend {
	if f.mockBackend == nil {
		f.builds.Add(1)
		f.mockBackend = mock.NewBackend(f.logger, f.mockOpts...)
	}
	return f.mockBackend
}

func (f *Factory) warnUnmatched(capability, selector string) {
	f.logger.Warn("no adapter for selector, capability unavailable",
		zap.String("capability", capability),
		zap.String("selector", selector))
}
