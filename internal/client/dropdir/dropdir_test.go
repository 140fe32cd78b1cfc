package dropdir

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vimesta/internal/client/transport"
	"github.com/dmitrijs2005/vimesta/internal/client/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	names   []string
	folders []string
}

func (f *fakeSubmitter) Submit(files []transport.File, folderID string) []upload.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]upload.Outcome, 0, len(files))
	for _, file := range files {
		f.names = append(f.names, file.Name())
		f.folders = append(f.folders, folderID)
		out = append(out, upload.Outcome{File: file, Accepted: true})
	}
	return out
}

func (f *fakeSubmitter) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}

func write(t *testing.T, dir, name, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o600))
}

func TestScan_SubmitsStableFilesOnce(t *testing.T) {
	dir := t.TempDir()
	sub := &fakeSubmitter{}
	w := New(dir, sub, WithFolder("f1"))
	ctx := context.Background()

	write(t, dir, "b.txt", "bb")
	write(t, dir, "a.txt", "a")

	out, err := w.Scan(ctx)
	require.NoError(t, err)
	assert.Empty(t, out, "first sighting only records sizes")

	out, err = w.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"a.txt", "b.txt"}, sub.Names())
	assert.Equal(t, []string{"f1", "f1"}, sub.folders)

	out, err = w.Scan(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Len(t, sub.Names(), 2)
}

func TestScan_WaitsForGrowingFile(t *testing.T) {
	dir := t.TempDir()
	sub := &fakeSubmitter{}
	w := New(dir, sub)
	ctx := context.Background()

	write(t, dir, "video.mp4", "1")
	_, err := w.Scan(ctx)
	require.NoError(t, err)

	write(t, dir, "video.mp4", "12345")
	_, err = w.Scan(ctx)
	require.NoError(t, err)
	assert.Empty(t, sub.Names())

	_, err = w.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"video.mp4"}, sub.Names())
}

func TestScan_IgnoresHiddenAndDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := &fakeSubmitter{}
	w := New(dir, sub)
	ctx := context.Background()

	write(t, dir, ".partial", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))
	write(t, filepath.Join(dir, "nested"), "inner.txt", "x")

	for range 3 {
		_, err := w.Scan(ctx)
		require.NoError(t, err)
	}
	assert.Empty(t, sub.Names())
}

func TestScan_ForgetsRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	sub := &fakeSubmitter{}
	w := New(dir, sub)
	ctx := context.Background()

	write(t, dir, "tmp.txt", "abc")
	_, err := w.Scan(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "tmp.txt")))
	_, err = w.Scan(ctx)
	require.NoError(t, err)
	assert.Empty(t, w.sizes)

	write(t, dir, "tmp.txt", "abc")
	_, err = w.Scan(ctx)
	require.NoError(t, err)
	assert.Empty(t, sub.Names())
}

func TestScan_MissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope"), &fakeSubmitter{})
	_, err := w.Scan(context.Background())
	require.Error(t, err)
}

func TestRun_PollsUntilCancelled(t *testing.T) {
	dir := t.TempDir()
	sub := &fakeSubmitter{}
	w := New(dir, sub, WithInterval(5*time.Millisecond))
	write(t, dir, "a.txt", "a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(sub.Names()) == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestScan_ResubmitsFileDroppedAgain(t *testing.T) {
	dir := t.TempDir()
	sub := &fakeSubmitter{}
	w := New(dir, sub)
	ctx := context.Background()

	scan := func(n int) {
		for i := 0; i < n; i++ {
			_, err := w.Scan(ctx)
			require.NoError(t, err)
		}
	}

	write(t, dir, "photo.jpg", "first")
	scan(2)
	require.Equal(t, []string{"photo.jpg"}, sub.Names())

	require.NoError(t, os.Remove(filepath.Join(dir, "photo.jpg")))
	scan(1)
	assert.Empty(t, w.submitted)
	assert.Empty(t, w.sizes)

	write(t, dir, "photo.jpg", "second")
	scan(3)
	assert.Equal(t, []string{"photo.jpg", "photo.jpg"}, sub.Names())
}
