package upload

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/client/transport"
	"github.com/stretchr/testify/require"
)

const mb = 1 << 20

type fakeFile struct {
	name string
	size int64
}

func (f fakeFile) Name() string { return f.name }
func (f fakeFile) Size() int64  { return f.size }
func (f fakeFile) Open() (io.ReadSeekCloser, error) {
	return nil, errors.New("fake file has no content")
}

func files(names ...string) []transport.File {
	out := make([]transport.File, 0, len(names))
	for _, n := range names {
		out = append(out, fakeFile{name: n, size: mb})
	}
	return out
}

type uploadFunc func(ctx context.Context, req transport.Request, progress transport.ProgressFunc) (*models.UploadResult, error)

// fakeTransport records calls and the peak number of concurrent uploads.
type fakeTransport struct {
	fn uploadFunc

	mu       sync.Mutex
	calls    []string
	inFlight int
	peak     int
}

func (f *fakeTransport) Upload(ctx context.Context, req transport.Request, progress transport.ProgressFunc) (*models.UploadResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.File.Name())
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.fn != nil {
		return f.fn(ctx, req, progress)
	}
	progress(50)
	progress(100)
	return &models.UploadResult{Key: req.File.Name()}, nil
}

func (f *fakeTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeTransport) Peak() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak
}

// blockOn makes uploads of name wait for ctx and announce their start.
func blockOn(name string, started chan<- struct{}) uploadFunc {
	return func(ctx context.Context, req transport.Request, progress transport.ProgressFunc) (*models.UploadResult, error) {
		if req.File.Name() == name {
			progress(10)
			started <- struct{}{}
			<-ctx.Done()
			return nil, ctx.Err()
		}
		progress(100)
		return &models.UploadResult{Key: req.File.Name()}, nil
	}
}

type event struct {
	kind string
	file string
	msg  string
}

type recorder struct {
	mu       sync.Mutex
	events   []event
	progress map[string][]int
}

func newRecorder() *recorder {
	return &recorder{progress: map[string][]int{}}
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnProgress: func(f transport.File, p int) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.progress[f.Name()] = append(r.progress[f.Name()], p)
		},
		OnComplete: func(f transport.File, res *models.UploadResult) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, event{kind: "complete", file: f.Name()})
		},
		OnError: func(f transport.File, msg string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, event{kind: "error", file: f.Name(), msg: msg})
		},
	}
}

func (r *recorder) Events() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event(nil), r.events...)
}

func (r *recorder) Progress(name string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.progress[name]...)
}

func waitIdle(t *testing.T, m *Manager) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Wait(ctx))
}

func waitStarted(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("upload did not start")
	}
}
