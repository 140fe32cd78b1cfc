package upload

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/client/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CompletesInOrder(t *testing.T) {
	tr := &fakeTransport{}
	rec := newRecorder()
	m := NewManager(tr, WithConstraints(Constraints{MaxSize: 2 << 30}), WithHandlers(rec.handlers()))

	out := m.Submit(files("a.bin", "b.bin", "c.bin"), "")
	require.Len(t, out, 3)
	for _, o := range out {
		require.True(t, o.Accepted)
		require.NotNil(t, o.Task)
	}

	waitIdle(t, m)

	assert.Equal(t, []event{
		{kind: "complete", file: "a.bin"},
		{kind: "complete", file: "b.bin"},
		{kind: "complete", file: "c.bin"},
	}, rec.Events())
	assert.Equal(t, Snapshot{}, m.Status())
	assert.Equal(t, 1, tr.Peak())
	assert.Equal(t, []string{"a.bin", "b.bin", "c.bin"}, tr.Calls())

	for _, o := range out {
		res := o.Task.Result()
		require.True(t, res.OK())
		assert.Equal(t, o.File.Name(), res.Upload.Key)
		assert.Equal(t, StatusCompleted, o.Task.Status())
		assert.Equal(t, []int{50, 100}, rec.Progress(o.File.Name()))
	}
}

func TestManager_OversizeRejected(t *testing.T) {
	tr := &fakeTransport{}
	rec := newRecorder()
	m := NewManager(tr, WithConstraints(Constraints{MaxSize: 2 << 30}), WithHandlers(rec.handlers()))

	out := m.Submit([]transport.File{fakeFile{name: "huge.iso", size: 3 << 30}}, "")

	require.Len(t, out, 1)
	assert.False(t, out[0].Accepted)
	assert.Nil(t, out[0].Task)
	assert.Equal(t, ReasonSizeExceeded, out[0].Reason)
	assert.Equal(t, []event{
		{kind: "error", file: "huge.iso", msg: "File size exceeds maximum limit of 2 GB"},
	}, rec.Events())
	assert.False(t, m.Status().Draining)
	assert.Equal(t, 0, m.Status().QueueLength)

	waitIdle(t, m)
	assert.Empty(t, tr.Calls())
}

func TestManager_MixedSubmission(t *testing.T) {
	tr := &fakeTransport{}
	rec := newRecorder()
	m := NewManager(tr,
		WithConstraints(Constraints{MaxSize: 10 * mb, AllowedExtensions: []string{"jpg"}}),
		WithHandlers(rec.handlers()),
	)

	out := m.Submit([]transport.File{
		fakeFile{name: "a.jpg", size: mb},
		fakeFile{name: "b.txt", size: mb},
	}, "f1")

	require.Len(t, out, 2)
	assert.True(t, out[0].Accepted)
	assert.Equal(t, "f1", out[0].Task.FolderID())
	assert.False(t, out[1].Accepted)
	assert.Equal(t, ReasonExtensionNotAllowed, out[1].Reason)

	waitIdle(t, m)
	assert.Equal(t, []event{
		{kind: "error", file: "b.txt", msg: "File type .txt is not allowed"},
		{kind: "complete", file: "a.jpg"},
	}, rec.Events())
	assert.Equal(t, []string{"a.jpg"}, tr.Calls())
}

func TestManager_CancelCurrent(t *testing.T) {
	started := make(chan struct{}, 1)
	tr := &fakeTransport{fn: blockOn("a.bin", started)}
	rec := newRecorder()
	m := NewManager(tr, WithHandlers(rec.handlers()))

	assert.False(t, m.CancelCurrent())

	out := m.Submit(files("a.bin", "b.bin"), "")
	waitStarted(t, started)

	st := m.Status()
	assert.True(t, st.Draining)
	assert.Equal(t, 2, st.QueueLength)
	assert.Equal(t, "a.bin", st.CurrentFile)
	assert.Equal(t, 10, st.CurrentProgress)

	require.True(t, m.CancelCurrent())
	waitIdle(t, m)

	assert.Equal(t, []event{
		{kind: "error", file: "a.bin", msg: "Upload cancelled"},
		{kind: "complete", file: "b.bin"},
	}, rec.Events())

	first := out[0].Task.Result()
	require.ErrorIs(t, first.Err, transport.ErrCancelled)
	assert.Equal(t, "Upload cancelled", first.Message)
	assert.Equal(t, StatusError, out[0].Task.Status())
	assert.True(t, out[1].Task.Result().OK())
	assert.Equal(t, 1, tr.Peak())
}

func TestManager_CancelAll(t *testing.T) {
	started := make(chan struct{}, 1)
	tr := &fakeTransport{fn: blockOn("a.bin", started)}
	rec := newRecorder()
	m := NewManager(tr, WithHandlers(rec.handlers()))

	out := m.Submit(files("a.bin", "b.bin", "c.bin"), "")
	waitStarted(t, started)

	assert.Equal(t, 2, m.CancelAll())
	waitIdle(t, m)

	assert.Equal(t, []event{
		{kind: "error", file: "a.bin", msg: "Upload cancelled"},
	}, rec.Events())
	assert.Equal(t, []string{"a.bin"}, tr.Calls())
	assert.Equal(t, Snapshot{}, m.Status())

	for _, o := range out[1:] {
		select {
		case <-o.Task.Done():
		default:
			t.Fatalf("%s not resolved", o.File.Name())
		}
		require.ErrorIs(t, o.Task.Result().Err, ErrDiscarded)
		assert.Equal(t, StatusPending, o.Task.Status())
	}
}

func TestManager_CancelAllWhenIdle(t *testing.T) {
	m := NewManager(&fakeTransport{})
	assert.Equal(t, 0, m.CancelAll())
	assert.False(t, m.CancelCurrent())
}

func TestManager_Timeout(t *testing.T) {
	tr := &fakeTransport{fn: func(ctx context.Context, req transport.Request, progress transport.ProgressFunc) (*models.UploadResult, error) {
		if req.File.Name() == "slow.bin" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &models.UploadResult{}, nil
	}}
	rec := newRecorder()
	m := NewManager(tr, WithTimeout(20*time.Millisecond), WithHandlers(rec.handlers()))

	out := m.Submit(files("slow.bin", "fast.bin"), "")
	waitIdle(t, m)

	assert.Equal(t, []event{
		{kind: "error", file: "slow.bin", msg: "Upload timed out"},
		{kind: "complete", file: "fast.bin"},
	}, rec.Events())
	require.ErrorIs(t, out[0].Task.Result().Err, transport.ErrTimeout)
}

func TestManager_NoRetryByDefault(t *testing.T) {
	tr := &fakeTransport{fn: func(context.Context, transport.Request, transport.ProgressFunc) (*models.UploadResult, error) {
		return nil, transport.ErrNetwork
	}}
	rec := newRecorder()
	m := NewManager(tr, WithHandlers(rec.handlers()))

	m.Submit(files("a.bin"), "")
	waitIdle(t, m)

	assert.Equal(t, []string{"a.bin"}, tr.Calls())
	assert.Equal(t, []event{
		{kind: "error", file: "a.bin", msg: "Network error during upload"},
	}, rec.Events())
}

func TestManager_Retries(t *testing.T) {
	var n atomic.Int32
	tr := &fakeTransport{fn: func(_ context.Context, req transport.Request, progress transport.ProgressFunc) (*models.UploadResult, error) {
		if n.Add(1) < 3 {
			progress(40)
			return nil, &transport.StatusError{Code: 503}
		}
		progress(100)
		return &models.UploadResult{Key: req.File.Name()}, nil
	}}
	rec := newRecorder()
	m := NewManager(tr, WithRetries(2, time.Millisecond), WithHandlers(rec.handlers()))

	out := m.Submit(files("a.bin"), "")
	waitIdle(t, m)

	assert.Len(t, tr.Calls(), 3)
	assert.True(t, out[0].Task.Result().OK())
	assert.Equal(t, []int{40, 100}, rec.Progress("a.bin"))
}

func TestManager_RetriesExhausted(t *testing.T) {
	tr := &fakeTransport{fn: func(context.Context, transport.Request, transport.ProgressFunc) (*models.UploadResult, error) {
		return nil, transport.ErrNetwork
	}}
	m := NewManager(tr, WithRetries(2, time.Millisecond))

	out := m.Submit(files("a.bin"), "")
	waitIdle(t, m)

	assert.Len(t, tr.Calls(), 3)
	require.ErrorIs(t, out[0].Task.Result().Err, transport.ErrNetwork)
}

func TestManager_RetrySkipsTerminalErrors(t *testing.T) {
	tests := map[string]error{
		"unauthorized": client.ErrUnauthorized,
		"client error": &transport.StatusError{Code: 413},
		"rejected":     &transport.RejectedError{Reason: "quota"},
	}

	for name, upErr := range tests {
		t.Run(name, func(t *testing.T) {
			tr := &fakeTransport{fn: func(context.Context, transport.Request, transport.ProgressFunc) (*models.UploadResult, error) {
				return nil, upErr
			}}
			m := NewManager(tr, WithRetries(3, time.Millisecond))

			out := m.Submit(files("a.bin"), "")
			waitIdle(t, m)

			assert.Len(t, tr.Calls(), 1)
			require.ErrorIs(t, out[0].Task.Result().Err, upErr)
		})
	}
}

func TestManager_RetryStopsOnCancel(t *testing.T) {
	started := make(chan struct{}, 1)
	tr := &fakeTransport{fn: func(context.Context, transport.Request, transport.ProgressFunc) (*models.UploadResult, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		return nil, transport.ErrNetwork
	}}
	rec := newRecorder()
	m := NewManager(tr, WithRetries(5, time.Hour), WithHandlers(rec.handlers()))

	out := m.Submit(files("a.bin"), "")
	waitStarted(t, started)
	require.Eventually(t, func() bool { return m.CancelCurrent() }, time.Second, time.Millisecond)
	waitIdle(t, m)

	assert.Len(t, tr.Calls(), 1)
	require.ErrorIs(t, out[0].Task.Result().Err, transport.ErrCancelled)
	assert.Equal(t, []event{{kind: "error", file: "a.bin", msg: "Upload cancelled"}}, rec.Events())
}

func TestManager_RecoversPanic(t *testing.T) {
	tr := &fakeTransport{fn: func(_ context.Context, req transport.Request, _ transport.ProgressFunc) (*models.UploadResult, error) {
		if req.File.Name() == "bad.bin" {
			panic("boom")
		}
		return &models.UploadResult{}, nil
	}}
	rec := newRecorder()
	m := NewManager(tr, WithHandlers(rec.handlers()))

	out := m.Submit(files("bad.bin", "good.bin"), "")
	waitIdle(t, m)

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "error", events[0].kind)
	assert.Contains(t, events[0].msg, "boom")
	assert.Equal(t, event{kind: "complete", file: "good.bin"}, events[1])
	require.ErrorIs(t, out[0].Task.Result().Err, ErrTransportPanic)
}

func TestManager_ProgressClamped(t *testing.T) {
	tr := &fakeTransport{fn: func(_ context.Context, _ transport.Request, progress transport.ProgressFunc) (*models.UploadResult, error) {
		for _, p := range []int{-5, 10, 50, 30, 50, 150, 100} {
			progress(p)
		}
		return &models.UploadResult{}, nil
	}}
	rec := newRecorder()
	m := NewManager(tr, WithHandlers(rec.handlers()))

	m.Submit(files("a.bin"), "")
	waitIdle(t, m)

	assert.Equal(t, []int{10, 50, 100}, rec.Progress("a.bin"))
}

func TestManager_LateProgressIgnored(t *testing.T) {
	leaked := make(chan transport.ProgressFunc, 1)
	tr := &fakeTransport{fn: func(_ context.Context, _ transport.Request, progress transport.ProgressFunc) (*models.UploadResult, error) {
		leaked <- progress
		return &models.UploadResult{}, nil
	}}
	rec := newRecorder()
	m := NewManager(tr, WithHandlers(rec.handlers()))

	out := m.Submit(files("a.bin"), "")
	waitIdle(t, m)

	(<-leaked)(70)
	assert.Empty(t, rec.Progress("a.bin"))
	assert.Equal(t, 0, out[0].Task.Progress())
}

func TestManager_HandlersMayCallBack(t *testing.T) {
	tr := &fakeTransport{}
	var m *Manager
	var seen []Snapshot
	m = NewManager(tr, WithHandlers(Handlers{
		OnProgress: func(transport.File, int) { m.Status() },
		OnComplete: func(transport.File, *models.UploadResult) {
			seen = append(seen, m.Status())
			m.CancelCurrent()
		},
	}))

	m.Submit(files("a.bin", "b.bin"), "")
	waitIdle(t, m)

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Draining)
	assert.Equal(t, 1, seen[0].QueueLength)
	assert.Equal(t, 0, seen[1].QueueLength)
}

func TestManager_SubmitWhileDraining(t *testing.T) {
	started := make(chan struct{}, 1)
	tr := &fakeTransport{fn: blockOn("a.bin", started)}
	rec := newRecorder()
	m := NewManager(tr, WithHandlers(rec.handlers()))

	m.Submit(files("a.bin"), "")
	waitStarted(t, started)
	m.Submit(files("b.bin", "c.bin"), "")

	tasks := m.Tasks()
	require.Len(t, tasks, 3)
	assert.Equal(t, StatusUploading, tasks[0].Status)
	assert.Equal(t, StatusPending, tasks[1].Status)
	assert.Equal(t, "c.bin", tasks[2].Name)

	m.CancelCurrent()
	waitIdle(t, m)

	assert.Equal(t, []string{"a.bin", "b.bin", "c.bin"}, tr.Calls())
	assert.Equal(t, 1, tr.Peak())
	assert.Len(t, rec.Events(), 3)
}

func TestManager_WaitHonoursContext(t *testing.T) {
	started := make(chan struct{}, 1)
	m := NewManager(&fakeTransport{fn: blockOn("a.bin", started)})

	m.Submit(files("a.bin"), "")
	waitStarted(t, started)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, m.Wait(ctx), context.DeadlineExceeded)

	m.CancelAll()
	waitIdle(t, m)
}

func TestTask_WaitHonoursContext(t *testing.T) {
	started := make(chan struct{}, 1)
	m := NewManager(&fakeTransport{fn: blockOn("a.bin", started)})

	out := m.Submit(files("a.bin"), "")
	waitStarted(t, started)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := out[0].Task.Wait(ctx)
	require.True(t, errors.Is(err, context.Canceled))

	m.CancelCurrent()
	res, err := out[0].Task.Wait(context.Background())
	require.NoError(t, err)
	require.ErrorIs(t, res.Err, transport.ErrCancelled)
}

func TestManager_RejectionWhileDrainingRunsOnSubmitter(t *testing.T) {
	started := make(chan struct{}, 1)
	tr := &fakeTransport{fn: blockOn("a.bin", started)}
	rec := newRecorder()
	m := NewManager(tr,
		WithConstraints(Constraints{MaxSize: mb}),
		WithHandlers(rec.handlers()),
	)

	m.Submit(files("a.bin"), "")
	waitStarted(t, started)

	out := m.Submit([]transport.File{fakeFile{name: "huge.bin", size: 2 * mb}}, "")
	require.Len(t, out, 1)
	assert.False(t, out[0].Accepted)

	// The rejection is reported before Submit returns, while a.bin is
	// still in flight on the drain goroutine.
	assert.Equal(t, []event{{kind: "error", file: "huge.bin", msg: out[0].Message}}, rec.Events())
	assert.Equal(t, StatusUploading, m.Tasks()[0].Status)

	m.CancelCurrent()
	waitIdle(t, m)
	assert.Len(t, rec.Events(), 2)
}
