package upload

import (
	"time"

	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/client/transport"
	"github.com/dmitrijs2005/vimesta/internal/logging"
)

// Handlers receive queue events. They run on the drain goroutine without
// the manager lock held, so they may call back into the Manager. OnError
// for rejected files runs on the goroutine calling Submit and can overlap
// with handlers running for the task in flight, so handlers must be safe
// for concurrent use. Nil handlers are skipped.
type Handlers struct {
	OnProgress func(f transport.File, percent int)
	OnComplete func(f transport.File, res *models.UploadResult)
	OnError    func(f transport.File, message string)
}

type Option func(*Manager)

func WithConstraints(c Constraints) Option {
	return func(m *Manager) {
		if c.MaxSize <= 0 {
			c.MaxSize = DefaultMaxSize
		}
		m.constraints = c
	}
}

func WithHandlers(h Handlers) Option {
	return func(m *Manager) { m.handlers = h }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithTimeout bounds every upload attempt. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithRetries retries a failed upload up to n more times, waiting delay
// between attempts. Cancellations, timeouts and an expired session are
// never retried.
func WithRetries(n int, delay time.Duration) Option {
	return func(m *Manager) {
		if n < 0 {
			n = 0
		}
		if delay <= 0 {
			delay = DefaultRetryDelay
		}
		m.retries = n
		m.retryDelay = delay
	}
}
