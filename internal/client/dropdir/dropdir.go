// Package dropdir watches a local directory and queues files dropped into
// it for upload.
//
// A file is submitted once its size has been the same on two consecutive
// polls, so files still being copied in are left alone. Each path is
// submitted at most once per Watcher.
package dropdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/vimesta/internal/client/transport"
	"github.com/dmitrijs2005/vimesta/internal/client/upload"
	"github.com/dmitrijs2005/vimesta/internal/filex"
	"github.com/dmitrijs2005/vimesta/internal/logging"
)

const DefaultInterval = 2 * time.Second

// Submitter is the part of upload.Manager the watcher needs.
type Submitter interface {
	Submit(files []transport.File, folderID string) []upload.Outcome
}

type Watcher struct {
	dir      string
	sub      Submitter
	interval time.Duration
	folderID string
	log      logging.Logger

	sizes     map[string]int64
	submitted map[string]struct{}
}

type Option func(*Watcher)

func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithFolder(id string) Option {
	return func(w *Watcher) { w.folderID = id }
}

func WithLogger(l logging.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

func New(dir string, sub Submitter, opts ...Option) *Watcher {
	w := &Watcher{
		dir:       dir,
		sub:       sub,
		interval:  DefaultInterval,
		log:       logging.Discard(),
		sizes:     map[string]int64{},
		submitted: map[string]struct{}{},
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Scan polls the directory once and submits the files that became stable.
// Hidden files and subdirectories are ignored.
func (w *Watcher) Scan(ctx context.Context) ([]upload.Outcome, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("read drop dir: %w", err)
	}

	present := make(map[string]struct{}, len(entries))
	var ready []transport.File

	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		present[path] = struct{}{}

		if _, done := w.submitted[path]; done {
			continue
		}

		f, err := filex.Stat(path)
		if err != nil {
			w.log.Debug(ctx, "skipping drop file", "path", path, "error", err)
			continue
		}

		prev, seen := w.sizes[path]
		w.sizes[path] = f.Size()
		if !seen || prev != f.Size() {
			continue
		}

		ready = append(ready, f)
		w.submitted[path] = struct{}{}
		delete(w.sizes, path)
	}

	for path := range w.sizes {
		if _, ok := present[path]; !ok {
			delete(w.sizes, path)
		}
	}
	// A removed file may be dropped again under the same name.
	for path := range w.submitted {
		if _, ok := present[path]; !ok {
			delete(w.submitted, path)
		}
	}

	if len(ready) == 0 {
		return nil, nil
	}

	sort.Slice(ready, func(i, j int) bool { return ready[i].Name() < ready[j].Name() })
	w.log.Info(ctx, "drop dir files queued", "dir", w.dir, "count", len(ready))
	return w.sub.Submit(ready, w.folderID), nil
}

// Run polls until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.Scan(ctx); err != nil {
				w.log.Warn(ctx, "drop dir scan failed", "dir", w.dir, "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
