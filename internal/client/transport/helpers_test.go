package transport

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T, r chi.Router) *client.HTTPClient {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c, err := client.NewHTTPClient(srv.URL+"/api", client.WithToken("tok"))
	require.NoError(t, err)
	return c
}

// progressLog records progress ticks from a transport.
type progressLog struct {
	mu    sync.Mutex
	ticks []int
}

func (p *progressLog) report(pct int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticks = append(p.ticks, pct)
}

func (p *progressLog) values() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.ticks...)
}

func requireNonDecreasing(t *testing.T, ticks []int) {
	t.Helper()
	for i := 1; i < len(ticks); i++ {
		require.LessOrEqual(t, ticks[i-1], ticks[i], "progress went down: %v", ticks)
	}
	for _, v := range ticks {
		require.GreaterOrEqual(t, v, 0)
		require.LessOrEqual(t, v, 100)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// waitGone blocks a handler until the client hangs up, with a ceiling so
// a broken test cannot hang the server on Close.
func waitGone(r *http.Request) {
	select {
	case <-r.Context().Done():
	case <-time.After(5 * time.Second):
	}
}
