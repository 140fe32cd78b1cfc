package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"path/filepath"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/models"
)

// File is an upload source. Open may be called more than once; each call
// returns a reader positioned at the start.
type File interface {
	Name() string
	Size() int64
	Open() (io.ReadSeekCloser, error)
}

type Request struct {
	File     File
	FolderID string
}

// ProgressFunc receives upload progress in percent, 0..100.
type ProgressFunc func(percent int)

type Transport interface {
	Upload(ctx context.Context, req Request, progress ProgressFunc) (*models.UploadResult, error)
}

var (
	ErrCancelled       = errors.New("upload cancelled")
	ErrTimeout         = errors.New("upload timed out")
	ErrNetwork         = errors.New("network error during upload")
	ErrInvalidResponse = errors.New("invalid response from server")
)

// StatusError is a non-2xx answer to an upload request.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload failed with status %d", e.Code)
}

// RejectedError is a 2xx answer whose body reports success=false.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	if e.Reason == "" {
		return "upload failed"
	}
	return e.Reason
}

// ChunkError wraps the failure of one chunk. Index is 1-based.
type ChunkError struct {
	Index int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("failed to upload chunk %d: %v", e.Index, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// Message renders err as the text reported to the user for a failed task.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var (
		chunkErr  *ChunkError
		statusErr *StatusError
		rejected  *RejectedError
	)

	switch {
	case errors.As(err, &chunkErr):
		inner := Message(chunkErr.Err)
		if errors.As(chunkErr.Err, &statusErr) || errors.As(chunkErr.Err, &rejected) {
			inner = fmt.Sprintf("Chunk %d upload failed", chunkErr.Index)
		}
		return fmt.Sprintf("Failed to upload chunk %d: %s", chunkErr.Index, inner)
	case errors.Is(err, ErrCancelled):
		return "Upload cancelled"
	case errors.Is(err, ErrTimeout):
		return "Upload timed out"
	case errors.Is(err, client.ErrUnauthorized):
		return "Session expired, please log in again"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Upload failed with status %d", statusErr.Code)
	case errors.As(err, &rejected):
		if rejected.Reason == "" {
			return "Upload failed"
		}
		return rejected.Reason
	case errors.Is(err, ErrInvalidResponse):
		return "Invalid response from server"
	case errors.Is(err, ErrNetwork):
		return "Network error during upload"
	}
	return err.Error()
}

// Percent converts done/total into a whole percentage in 0..100. An empty
// total counts as complete.
func Percent(done, total int64) int {
	if total <= 0 {
		return 100
	}
	p := int(math.Round(float64(done) / float64(total) * 100))
	return max(0, min(100, p))
}

// interrupted maps a finished context to ErrCancelled or ErrTimeout. It
// returns nil while ctx is live.
func interrupted(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	cause := context.Cause(ctx)
	if errors.Is(cause, ErrTimeout) || errors.Is(cause, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrCancelled
}

// failure classifies an error raised while talking to the server.
func failure(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ierr := interrupted(ctx); ierr != nil {
		return ierr
	}

	var (
		apiErr    *client.APIError
		statusErr *StatusError
		rejected  *RejectedError
	)
	switch {
	case errors.As(err, &statusErr), errors.As(err, &rejected):
		return err
	case errors.Is(err, client.ErrUnauthorized),
		errors.Is(err, ErrCancelled), errors.Is(err, ErrTimeout),
		errors.Is(err, ErrNetwork), errors.Is(err, ErrInvalidResponse):
		return err
	case errors.As(err, &apiErr):
		if apiErr.Status >= 200 && apiErr.Status <= 299 {
			return &RejectedError{Reason: apiErr.Message}
		}
		return &StatusError{Code: apiErr.Status}
	case errors.Is(err, client.ErrInvalidResponse):
		return ErrInvalidResponse
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
