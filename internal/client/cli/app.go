package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/config"
	"github.com/dmitrijs2005/vimesta/internal/client/dropdir"
	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/vimesta/internal/client/services"
	"github.com/dmitrijs2005/vimesta/internal/client/transport"
	"github.com/dmitrijs2005/vimesta/internal/client/upload"
	"github.com/dmitrijs2005/vimesta/internal/logging"
	"github.com/google/uuid"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	db      *sql.DB
	api     client.Client
	auth    services.AuthService
	files   services.FileService
	folders services.FolderService
	users   services.UserService
	history services.HistoryService
	uploads *upload.Manager

	mu       sync.Mutex
	mode     Mode
	folderID string
	shown    map[string]int
	watching map[string]context.CancelFunc
}

// NewApp opens the local database, builds the API client and the upload
// transport named in c, and restores a persisted session if there is one.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api, err := client.NewHTTPClient(c.APIURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	tr, err := transport.New(ctx, transport.Options{
		Kind:      c.Transport,
		API:       api,
		Storage:   &http.Client{},
		ChunkSize: c.ChunkSize,
		S3:        c.S3(),
		Minio:     c.Minio(),
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return newApp(ctx, c, log, in, out, db, api, tr), nil
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, in io.Reader, out io.Writer,
	db *sql.DB, api client.Client, tr transport.Transport) *App {

	a := &App{
		config:   c,
		log:      log,
		reader:   bufio.NewReader(in),
		out:      &syncWriter{w: out},
		db:       db,
		api:      api,
		auth:     services.NewAuthService(api, services.NewSessionStore(db), log),
		files:    services.NewFileService(api, &http.Client{}),
		folders:  services.NewFolderService(api),
		users:    services.NewUserService(api),
		history:  services.NewHistoryService(uploads.NewSQLiteRepository(db)),
		shown:    map[string]int{},
		watching: map[string]context.CancelFunc{},
	}

	a.uploads = upload.NewManager(tr,
		upload.WithConstraints(c.Constraints()),
		upload.WithHandlers(a.uploadHandlers()),
		upload.WithLogger(log.With("component", "uploads")),
		upload.WithTimeout(c.UploadTimeout),
		upload.WithRetries(c.UploadRetries, 0),
	)

	if _, err := a.auth.Restore(ctx); err != nil && !services.IsNotAuthenticated(err) {
		log.Warn(ctx, "could not restore session", "error", err)
	}

	return a
}

// Close stops background work and releases the database.
func (a *App) Close() error {
	a.mu.Lock()
	for dir, cancel := range a.watching {
		cancel()
		delete(a.watching, dir)
	}
	a.mu.Unlock()

	a.uploads.CancelAll()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.uploads.Wait(ctx)

	return a.db.Close()
}

// syncWriter serializes writes from the shell and the upload handlers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) isLoggedIn() bool {
	return a.auth.CurrentUser() != nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.auth.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the backend every interval and keeps the
// prompt's online/offline mark current until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	s := ""
	if u := a.auth.CurrentUser(); u != nil {
		s = u.DisplayName() + " "
	}
	if m := a.Mode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// queuedFile tags a submitted file with a key unique to this submission
// and the folder it was queued for. The manager hands the same value back
// to the handlers.
type queuedFile struct {
	transport.File
	key    string
	folder string
}

func tagOf(f transport.File) (key, folder string) {
	if q, ok := f.(*queuedFile); ok {
		return q.key, q.folder
	}
	return f.Name(), ""
}

// Submit queues files for folderID. The drop-folder watcher submits
// through it as well.
func (a *App) Submit(files []transport.File, folderID string) []upload.Outcome {
	tagged := make([]transport.File, len(files))
	for i, f := range files {
		tagged[i] = &queuedFile{File: f, key: uuid.NewString(), folder: folderID}
	}
	return a.uploads.Submit(tagged, folderID)
}

func (a *App) uploadHandlers() upload.Handlers {
	return upload.Handlers{
		OnProgress: func(f transport.File, p int) {
			key, _ := tagOf(f)

			a.mu.Lock()
			last, seen := a.shown[key]
			show := !seen || p == 100 || p-last >= 25
			if show {
				a.shown[key] = p
			}
			a.mu.Unlock()

			if show {
				a.printf("  %s %d%%\n", f.Name(), p)
			}
		},
		OnComplete: func(f transport.File, res *models.UploadResult) {
			a.forget(f)
			a.printf("Uploaded %s\n", f.Name())
			a.record(f, "completed", "", res.RemoteID())
		},
		OnError: func(f transport.File, msg string) {
			a.forget(f)
			a.printf("Failed %s: %s\n", f.Name(), msg)
			a.record(f, "error", msg, "")
		},
	}
}

func (a *App) forget(f transport.File) {
	key, _ := tagOf(f)
	a.mu.Lock()
	delete(a.shown, key)
	a.mu.Unlock()
}

func (a *App) record(f transport.File, status, msg, remoteID string) {
	_, folder := tagOf(f)

	rec := &models.UploadRecord{
		ID:       uuid.NewString(),
		Filename: f.Name(),
		Size:     f.Size(),
		FolderID: folder,
		Status:   status,
		Message:  msg,
		RemoteID: remoteID,
	}
	if err := a.history.Record(context.Background(), rec); err != nil {
		a.log.Warn(context.Background(), "failed to record upload", "file", f.Name(), "error", err)
	}
}

// startWatch begins polling dir for dropped files. Watching the same
// directory twice is a no-op.
func (a *App) startWatch(ctx context.Context, dir string) bool {
	a.mu.Lock()
	if _, ok := a.watching[dir]; ok {
		a.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	a.watching[dir] = cancel
	folder := a.folderID
	a.mu.Unlock()

	w := dropdir.New(dir, a,
		dropdir.WithInterval(a.config.DropPollInterval),
		dropdir.WithFolder(folder),
		dropdir.WithLogger(a.log.With("component", "dropdir")),
	)
	go func() {
		_ = w.Run(ctx)
	}()
	return true
}

func (a *App) stopWatch(dir string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	cancel, ok := a.watching[dir]
	if ok {
		cancel()
		delete(a.watching, dir)
	}
	return ok
}
