package upload

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/client/transport"
	"github.com/google/uuid"
)

// ErrDiscarded resolves the futures of pending tasks dropped by CancelAll.
var ErrDiscarded = errors.New("upload discarded")

// Result is the outcome of one task.
type Result struct {
	Upload  *models.UploadResult
	Err     error
	Message string
}

func (r Result) OK() bool { return r.Err == nil }

// Task is one accepted file. Its mutable state belongs to the Manager and
// is read through the accessors.
type Task struct {
	m        *Manager
	id       string
	file     transport.File
	folderID string

	status   Status
	progress int
	cancel   context.CancelCauseFunc

	done   chan struct{}
	result Result
}

func newTask(m *Manager, f transport.File, folderID string) *Task {
	return &Task{
		m:        m,
		id:       uuid.NewString(),
		file:     f,
		folderID: folderID,
		done:     make(chan struct{}),
	}
}

func (t *Task) ID() string           { return t.id }
func (t *Task) File() transport.File { return t.file }
func (t *Task) FolderID() string     { return t.folderID }

func (t *Task) Status() Status {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.status
}

func (t *Task) Progress() int {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.progress
}

// Done is closed once the task finished or was discarded.
func (t *Task) Done() <-chan struct{} { return t.done }

// Result blocks until Done is closed and returns the outcome.
func (t *Task) Result() Result {
	<-t.done
	return t.result
}

// Wait is Result bounded by ctx.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (t *Task) resolve(r Result) {
	t.result = r
	close(t.done)
}

// TaskInfo is a point-in-time view of a queued task.
type TaskInfo struct {
	ID       string
	Name     string
	Size     int64
	FolderID string
	Status   Status
	Progress int
}

func (t *Task) info() TaskInfo {
	return TaskInfo{
		ID:       t.id,
		Name:     t.file.Name(),
		Size:     t.file.Size(),
		FolderID: t.folderID,
		Status:   t.status,
		Progress: t.progress,
	}
}
