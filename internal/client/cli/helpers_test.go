package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/config"
	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/client/services"
	"github.com/dmitrijs2005/vimesta/internal/client/transport"
	"github.com/dmitrijs2005/vimesta/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

var alice = &models.User{ID: "u1", FirstName: "Alice", PhoneNumber: "+919876543210", AccountType: "free", StorageUsed: 1536}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// buffer is a goroutine-safe bytes.Buffer; upload handlers print from the
// drain goroutine.
type buffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (b *buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// stubTransport completes every upload unless fail names the file. With a
// gate set, each upload signals started and then blocks until the gate
// is closed.
type stubTransport struct {
	fail    string
	gate    chan struct{}
	started chan string
}

func (s *stubTransport) Upload(ctx context.Context, req transport.Request, progress transport.ProgressFunc) (*models.UploadResult, error) {
	if s.gate != nil {
		s.started <- req.File.Name()
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, transport.ErrCancelled
		}
	}
	if req.File.Name() == s.fail {
		return nil, &transport.StatusError{Code: 500}
	}
	progress(100)
	return &models.UploadResult{File: &models.File{ID: "id-" + req.File.Name()}}, nil
}

type testApp struct {
	*App
	out *buffer
	srv *httptest.Server
}

type appOption func(*config.Config)

// newTestApp builds an App against a fake backend. loggedIn seeds a stored
// session before the App restores it.
func newTestApp(t *testing.T, r chi.Router, input string, loggedIn bool, opts ...appOption) *testApp {
	t.Helper()
	return newTestAppWith(t, r, &stubTransport{fail: "broken.txt"}, input, loggedIn, opts...)
}

func newTestAppWith(t *testing.T, r chi.Router, tr transport.Transport, input string, loggedIn bool, opts ...appOption) *testApp {
	t.Helper()
	ctx := context.Background()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.APIURL = srv.URL + "/api"
	cfg.DownloadDir = t.TempDir()
	cfg.DropPollInterval = 5 * time.Millisecond
	for _, o := range opts {
		o(cfg)
	}

	db, err := client.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)

	if loggedIn {
		require.NoError(t, services.NewSessionStore(db).Save(ctx, &models.Session{Token: "opaque-token", User: alice}))
	}

	api, err := client.NewHTTPClient(cfg.APIURL)
	require.NoError(t, err)

	out := &buffer{}
	a := newApp(ctx, cfg, logging.Discard(), strings.NewReader(input), out, db, api, tr)
	t.Cleanup(func() { _ = a.Close() })

	return &testApp{App: a, out: out, srv: srv}
}

func waitUploads(t *testing.T, a *testApp) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.uploads.Wait(ctx))
}
