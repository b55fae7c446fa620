package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	"github.com/kode4food/larder/internal/account"
	"github.com/kode4food/larder/internal/archive"
	"github.com/kode4food/larder/internal/config"
	"github.com/kode4food/larder/internal/mail"
	"github.com/kode4food/larder/internal/order"
	"github.com/kode4food/larder/internal/server"
	"github.com/kode4food/larder/internal/store"
	"github.com/kode4food/larder/internal/tokens"
)

// TestEnv holds all the components needed for API testing
type TestEnv struct {
	Server    *server.Server
	Router    *gin.Engine
	Store     *store.Store
	Tokens    *tokens.Store
	Sequencer *order.Sequencer
	Accounts  *account.Service
	Archive   *archive.Archive
	Redis     *miniredis.Miniredis
	Vegan     *MockVegan
	Outbox    *mail.Outbox
	Config    *config.Config
	Cleanup   func()
}

// NewTestConfig creates a default configuration with debug logging enabled
func NewTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.LogLevel = "debug"
	cfg.PublicBaseURL = "http://larder.test"
	return cfg
}

// NewTestEnv creates a fully wired API environment backed by a temporary
// SQLite database, an in-memory Redis, an in-memory archive bucket, a mock
// vegan lookup and a recording mailer
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return NewTestEnvWithConfig(t, NewTestConfig())
}

// NewTestEnvWithConfig is NewTestEnv with a caller supplied configuration
func NewTestEnvWithConfig(t *testing.T, cfg *config.Config) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	cfg.DBDriver = store.DriverSQLite
	cfg.DBDSN = filepath.Join(t.TempDir(), "larder.db")
	st, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	cfg.Redis.Addr = mr.Addr()

	client, err := tokens.Connect(ctx, &redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	tok := tokens.NewStore(client, cfg.Redis.Prefix).
		WithTTL(tokens.ConfirmEmail, cfg.ConfirmTokenTTL).
		WithTTL(tokens.ResetPassword, cfg.ResetTokenTTL)

	arc := archive.New(memblob.OpenBucket(nil), cfg.ArchivePrefix)
	outbox := &mail.Outbox{}
	veg := NewMockVegan()
	seq := order.NewSequencer(cfg.ZeroPolicy)
	accounts := account.NewService(st, tok, outbox, cfg.PublicBaseURL)

	srv := server.NewServer(server.Deps{
		Store:     st,
		Tokens:    tok,
		Sequencer: seq,
		Accounts:  accounts,
		Vegan:     veg,
		Archive:   arc,
	})

	cleanup := func() {
		_ = arc.Close()
		_ = client.Close()
		mr.Close()
		_ = st.Close()
	}

	return &TestEnv{
		Server:    srv,
		Router:    srv.SetupRoutes(),
		Store:     st,
		Tokens:    tok,
		Sequencer: seq,
		Accounts:  accounts,
		Archive:   arc,
		Redis:     mr,
		Vegan:     veg,
		Outbox:    outbox,
		Config:    cfg,
		Cleanup:   cleanup,
	}
}

// WithTestEnv creates a test environment, runs fn, and cleans up
func WithTestEnv(t *testing.T, fn func(*TestEnv)) {
	t.Helper()
	env := NewTestEnv(t)
	defer env.Cleanup()
	fn(env)
}

// Do sends a request to the router. A non-nil body is encoded as JSON
// unless it is already a string or byte slice. A non-empty token is sent
// as a bearer token
func (e *TestEnv) Do(
	method, path string, body any, token string,
) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// Get sends a GET request
func (e *TestEnv) Get(path, token string) *httptest.ResponseRecorder {
	return e.Do(http.MethodGet, path, nil, token)
}
