package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/client/transport"
	"github.com/dmitrijs2005/vimesta/internal/logging"
	"github.com/sethvargo/go-retry"
)

const DefaultRetryDelay = time.Second

// ErrTransportPanic wraps a panic recovered from a transport.
var ErrTransportPanic = errors.New("transport panicked")

// Outcome reports what Submit did with one input file.
type Outcome struct {
	File     transport.File
	Accepted bool
	// Task is set for accepted files.
	Task    *Task
	Reason  Reason
	Message string
}

// Snapshot is a point-in-time view of the manager.
type Snapshot struct {
	Draining        bool
	QueueLength     int
	CurrentFile     string
	CurrentProgress int
}

// Manager uploads queued files one at a time, in submission order.
type Manager struct {
	transport   transport.Transport
	constraints Constraints
	handlers    Handlers
	log         logging.Logger
	timeout     time.Duration
	retries     int
	retryDelay  time.Duration

	mu       sync.Mutex
	queue    []*Task
	current  *Task
	draining bool
	idle     chan struct{}
}

func NewManager(tr transport.Transport, opts ...Option) *Manager {
	idle := make(chan struct{})
	close(idle)

	m := &Manager{
		transport:   tr,
		constraints: Constraints{MaxSize: DefaultMaxSize},
		log:         logging.Discard(),
		retryDelay:  DefaultRetryDelay,
		idle:        idle,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Submit validates files and queues the accepted ones. Rejected files get
// OnError before Submit returns. One outcome is returned per input.
func (m *Manager) Submit(files []transport.File, folderID string) []Outcome {
	outcomes := make([]Outcome, 0, len(files))

	m.mu.Lock()
	for _, f := range files {
		v := Validate(f, m.constraints)
		if !v.Valid {
			outcomes = append(outcomes, Outcome{File: f, Reason: v.Reason, Message: v.Message})
			continue
		}
		t := newTask(m, f, folderID)
		m.queue = append(m.queue, t)
		outcomes = append(outcomes, Outcome{File: f, Accepted: true, Task: t})
	}

	start := !m.draining && len(m.queue) > 0
	if start {
		m.draining = true
		m.idle = make(chan struct{})
	}
	m.mu.Unlock()

	for _, o := range outcomes {
		if o.Accepted {
			m.log.Debug(context.Background(), "upload queued", "file", o.File.Name(), "task", o.Task.ID())
			continue
		}
		m.log.Info(context.Background(), "upload rejected", "file", o.File.Name(), "reason", o.Reason.String())
		m.emitError(o.File, o.Message)
	}

	if start {
		go m.drain()
	}
	return outcomes
}

func (m *Manager) drain() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.draining = false
			m.current = nil
			close(m.idle)
			m.mu.Unlock()
			return
		}

		t := m.queue[0]
		ctx, cancel := context.WithCancelCause(context.Background())
		next, err := t.status.transition(StatusUploading)
		if err != nil {
			m.log.Error(ctx, "skipping task", "task", t.id, "error", err)
			m.queue = m.queue[1:]
			m.mu.Unlock()
			cancel(nil)
			t.resolve(Result{Err: err, Message: err.Error()})
			continue
		}
		t.status = next
		t.cancel = cancel
		m.current = t
		m.mu.Unlock()

		m.log.Info(ctx, "upload started", "file", t.file.Name(), "size", t.file.Size(), "task", t.id)
		res, upErr := m.run(ctx, t)
		cancel(nil)

		m.mu.Lock()
		result := Result{Upload: res}
		final := StatusCompleted
		if upErr != nil {
			final = StatusError
			result = Result{Err: upErr, Message: transport.Message(upErr)}
		}
		if next, err := t.status.transition(final); err == nil {
			t.status = next
		}
		t.cancel = nil
		if len(m.queue) > 0 && m.queue[0] == t {
			m.queue = m.queue[1:]
		}
		m.current = nil
		m.mu.Unlock()

		if upErr != nil {
			m.log.Warn(ctx, "upload failed", "file", t.file.Name(), "task", t.id, "error", upErr)
			m.emitError(t.file, result.Message)
		} else {
			m.log.Info(ctx, "upload completed", "file", t.file.Name(), "task", t.id)
			if m.handlers.OnComplete != nil {
				m.handlers.OnComplete(t.file, res)
			}
		}
		t.resolve(result)
	}
}

// run performs the upload, retrying when configured.
func (m *Manager) run(ctx context.Context, t *Task) (*models.UploadResult, error) {
	if m.retries == 0 {
		return m.attempt(ctx, t)
	}

	var res *models.UploadResult
	attempt := 0
	b := retry.WithMaxRetries(uint64(m.retries), retry.NewConstant(m.retryDelay))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		r, err := m.attempt(ctx, t)
		if err == nil {
			res = r
			return nil
		}
		if retryable(err) {
			m.log.Warn(ctx, "upload attempt failed", "file", t.file.Name(), "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil && ctx.Err() != nil && !errors.Is(err, transport.ErrCancelled) {
		err = transport.ErrCancelled
	}
	return res, err
}

func (m *Manager) attempt(ctx context.Context, t *Task) (res *models.UploadResult, err error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, m.timeout, transport.ErrTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: %v", ErrTransportPanic, r)
		}
	}()

	req := transport.Request{File: t.file, FolderID: t.folderID}
	res, err = m.transport.Upload(ctx, req, func(p int) { m.progress(t, p) })
	if err != nil && ctx.Err() != nil &&
		!errors.Is(err, transport.ErrCancelled) && !errors.Is(err, transport.ErrTimeout) {
		if errors.Is(context.Cause(ctx), transport.ErrTimeout) {
			err = transport.ErrTimeout
		} else {
			err = transport.ErrCancelled
		}
	}
	return res, err
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, transport.ErrCancelled),
		errors.Is(err, transport.ErrTimeout),
		errors.Is(err, client.ErrUnauthorized):
		return false
	case errors.Is(err, transport.ErrNetwork):
		return true
	}
	var se *transport.StatusError
	return errors.As(err, &se) && se.Code >= 500
}

func (m *Manager) progress(t *Task, p int) {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}

	m.mu.Lock()
	if m.current != t || t.status != StatusUploading || p <= t.progress {
		m.mu.Unlock()
		return
	}
	t.progress = p
	m.mu.Unlock()

	if m.handlers.OnProgress != nil {
		m.handlers.OnProgress(t.file, p)
	}
}

func (m *Manager) emitError(f transport.File, msg string) {
	if m.handlers.OnError != nil {
		m.handlers.OnError(f, msg)
	}
}

// CancelCurrent aborts the in-flight upload. It reports whether there was
// one.
func (m *Manager) CancelCurrent() bool {
	m.mu.Lock()
	var cancel context.CancelCauseFunc
	if m.current != nil {
		cancel = m.current.cancel
	}
	m.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel(transport.ErrCancelled)
	return true
}

// CancelAll aborts the in-flight upload and drops every pending task
// without firing handlers for them. Their futures resolve with
// ErrDiscarded. It returns the number of dropped tasks.
func (m *Manager) CancelAll() int {
	m.mu.Lock()
	var (
		cancel    context.CancelCauseFunc
		discarded []*Task
	)
	if m.current != nil && len(m.queue) > 0 && m.queue[0] == m.current {
		cancel = m.current.cancel
		discarded = m.queue[1:]
		m.queue = m.queue[:1:1]
	} else {
		discarded = m.queue
		m.queue = nil
	}
	m.mu.Unlock()

	if cancel != nil {
		cancel(transport.ErrCancelled)
	}
	for _, t := range discarded {
		t.resolve(Result{Err: ErrDiscarded, Message: "Upload discarded"})
	}
	if len(discarded) > 0 {
		m.log.Info(context.Background(), "pending uploads discarded", "count", len(discarded))
	}
	return len(discarded)
}

func (m *Manager) Status() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{Draining: m.draining, QueueLength: len(m.queue)}
	if m.current != nil {
		s.CurrentFile = m.current.file.Name()
		s.CurrentProgress = m.current.progress
	}
	return s
}

// Tasks lists the queued tasks, the in-flight one first.
func (m *Manager) Tasks() []TaskInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]TaskInfo, 0, len(m.queue))
	for _, t := range m.queue {
		out = append(out, t.info())
	}
	return out
}

// Wait blocks until the manager stops draining or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	m.mu.Lock()
	idle := m.idle
	m.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
