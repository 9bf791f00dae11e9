package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HealthMate/internal/cli/auth"
	fsrepo "HealthMate/internal/cli/repo/fs"
	reposqlite "HealthMate/internal/cli/repo/sqlite"
	"HealthMate/internal/cli/route"
	"HealthMate/internal/cli/session"
	"HealthMate/internal/config"
)

// helper: временный конфиг клиента для тестов
func tempCfg(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return &config.Config{
		BackendURL:     backend,
		StoreURL:       backend,
		ClientDBPath:   filepath.Join(dir, "HealthMate", "client.sqlite"),
		TokenFile:      filepath.Join(dir, "HealthMate", "token"),
		TokenTTL:       time.Hour,
		RequestTimeout: 5 * time.Second,
		UploadTimeout:  5 * time.Second,
		LogLevel:       "error",
	}
}

func TestNewApp_NoCredentialNoNetwork(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	app, done, err := NewApp(context.Background(), tempCfg(t, ts.URL))
	require.NoError(t, err)
	defer func() { require.NoError(t, done()) }()

	assert.Equal(t, session.Unauthenticated, app.Gate.State().Status)
	assert.Zero(t, hits.Load())
	assert.Equal(t, route.Decision{Action: route.Redirect, Location: route.LoginPath}, app.Guard.Navigate("/upload"))
}

func TestNewApp_StoredCookieAuthenticates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`{"_id":"u1","name":"Ali","email":"ali@example.com"}`))
	}))
	defer ts.Close()

	cfg := tempCfg(t, ts.URL)
	require.NoError(t, fsrepo.NewCookieStore(cfg.TokenFile).Save(auth.NewCredential("tok-1", time.Hour, time.Now())))

	app, done, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = done() }()

	id, err := app.Auth.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "Ali", id.Name)
	assert.Equal(t, route.Decision{Action: route.Render}, app.Guard.Navigate("/reports/r1"))
	assert.Equal(t, route.Decision{Action: route.Redirect, Location: route.HomePath}, app.Guard.Navigate("/login"))
}

func TestNewApp_MirrorWithoutCookieStaysSignedOut(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"_id":"u1","name":"Ali"}`))
	}))
	defer ts.Close()

	cfg := tempCfg(t, ts.URL)
	// cookie истёк и удалён, в localStorage токен остался
	local, err := reposqlite.Open(cfg.ClientDBPath)
	require.NoError(t, err)
	require.NoError(t, local.Save(auth.Credential{Token: "opaque-token"}))
	require.NoError(t, local.Close())

	app, done, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = done() }()

	assert.Equal(t, session.Unauthenticated, app.Gate.State().Status)
	assert.Zero(t, hits.Load(), "session is not restored from the local mirror")
}

func TestNewApp_BackendDownDegradesToSignedOut(t *testing.T) {
	cfg := tempCfg(t, "http://127.0.0.1:1")
	require.NoError(t, fsrepo.NewCookieStore(cfg.TokenFile).Save(auth.NewCredential("tok-1", time.Hour, time.Now())))

	app, done, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = done() }()

	assert.Equal(t, session.Unauthenticated, app.Gate.State().Status)
	// токен не удаляется при сетевой ошибке
	_, err = os.Stat(cfg.TokenFile)
	assert.NoError(t, err)
}

func TestNewApp_Errors(t *testing.T) {
	_, _, err := NewApp(context.Background(), nil)
	assert.Error(t, err)

	cfg := tempCfg(t, "http://localhost")
	cfg.ClientDBPath = ""
	_, _, err = NewApp(context.Background(), cfg)
	assert.Error(t, err)
}
