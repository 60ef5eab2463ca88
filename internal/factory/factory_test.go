package factory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FairForge/backplane/internal/backend/mock"
	"github.com/FairForge/backplane/internal/config"
	"github.com/FairForge/backplane/internal/provider"
)

func mockConfig() *config.Config {
	cfg := config.Default()
	cfg.MockMode = true
	return cfg
}

func alphaConfig() *config.Config {
	cfg := config.Default()
	cfg.Auth.Backend = config.BackendAlpha
	cfg.Database.Backend = config.BackendAlpha
	cfg.Storage.Backend = config.BackendAlpha
	cfg.Alpha.Endpoint = "https://alpha.example.test"
	cfg.Alpha.ProjectID = "proj-1"
	return cfg
}

func TestFactory_MockMode(t *testing.T) {
	f := New(mockConfig(), zap.NewNop(),
		WithMockOptions(mock.WithLatency(time.Millisecond),
			mock.WithUser(provider.User{Email: "admin@org.test"})))

	auth, err := f.Auth()
	require.NoError(t, err)
	db, err := f.Database()
	require.NoError(t, err)
	storage, err := f.Storage()
	require.NoError(t, err)

	t.Run("OneBackendServesAllThree", func(t *testing.T) {
		assert.Equal(t, int64(1), f.Builds())
		assert.Same(t, auth, db)
		assert.Same(t, db, storage)
	})

	t.Run("FixtureLoginWorks", func(t *testing.T) {
		_, err := auth.Login(context.Background(), "admin@org.test", "any-password")
		assert.NoError(t, err)

		_, err = auth.Login(context.Background(), "ghost@org.test", "any-password")
		assert.ErrorIs(t, err, provider.ErrUnauthenticated)
	})
}

func TestFactory_CachedInstances(t *testing.T) {
	f := New(alphaConfig(), zap.NewNop())

	auth1, err := f.Auth()
	require.NoError(t, err)
	auth2, err := f.Auth()
	require.NoError(t, err)
	assert.Same(t, auth1, auth2)

	db1, err := f.Database()
	require.NoError(t, err)
	db2, err := f.Database()
	require.NoError(t, err)
	assert.Same(t, db1, db2)

	s1, err := f.Storage()
	require.NoError(t, err)
	s2, err := f.Storage()
	require.NoError(t, err)
	assert.Same(t, s1, s2)
}

func TestFactory_SharedHandle(t *testing.T) {
	// All three capabilities on the same deployment share one client handle.
	f := New(alphaConfig(), zap.NewNop())

	_, err := f.Auth()
	require.NoError(t, err)
	_, err = f.Database()
	require.NoError(t, err)
	_, err = f.Storage()
	require.NoError(t, err)

	assert.Equal(t, int64(1), f.Builds())
}

func TestFactory_ConcurrentFirstCalls(t *testing.T) {
	f := New(alphaConfig(), zap.NewNop())

	const callers = 50
	results := make([]provider.Auth, callers)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			auth, err := f.Auth()
			assert.NoError(t, err)
			results[i] = auth
		}(i)
	}
	start.Done()
	done.Wait()

	assert.Equal(t, int64(1), f.Builds(), "exactly one underlying construction")
	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestFactory_UnmatchedSelector(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.Backend = "legacy-ldap"
	cfg.Database.Backend = ""
	cfg.Storage.Backend = ""

	f := New(cfg, zap.NewNop())

	auth, err := f.Auth()
	require.NoError(t, err)
	assert.Nil(t, auth, "unavailable capability is nil, not an error")

	db, err := f.Database()
	require.NoError(t, err)
	assert.Nil(t, db)
}

func TestFactory_MixedBackends(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.Backend = config.BackendBeta
	cfg.Database.Backend = config.BackendBeta
	cfg.Storage.Backend = config.BackendGamma
	cfg.Beta.Endpoint = "https://beta.example.test"
	cfg.Beta.ProjectID = "proj-1"
	cfg.Beta.APIKey = "key-1"
	cfg.Gamma.ProxyURL = "https://signer.example.test"
	cfg.Gamma.Bucket = "docs"
	cfg.Gamma.PublicURLBase = "https://cdn.example.test"

	f := New(cfg, zap.NewNop())

	auth, err := f.Auth()
	require.NoError(t, err)
	require.NotNil(t, auth)

	db, err := f.Database()
	require.NoError(t, err)
	require.NotNil(t, db)

	storage, err := f.Storage()
	require.NoError(t, err)
	require.NotNil(t, storage)

	// one shared beta handle plus the gamma adapter
	assert.Equal(t, int64(2), f.Builds())
}

func TestFactory_ConfigurationErrorSurfacesAtResolution(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.Backend = config.BackendAlpha
	// endpoint intentionally missing

	f := New(cfg, zap.NewNop())

	_, err := f.Auth()
	require.Error(t, err)
	var ce *provider.ConfigurationError
	assert.ErrorAs(t, err, &ce)
}
