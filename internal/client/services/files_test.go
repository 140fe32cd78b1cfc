package services

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filesBackend(t *testing.T) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/files/list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"success": true, "count": 1, "files": []map[string]any{
			{"id": "f1", "original_filename": "a.txt", "file_size": 5, "file_type": r.URL.Query().Get("type")},
		}})
	})
	r.Get("/api/files/{id}/download", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "gone" {
			writeJSON(w, 404, map[string]any{"success": false, "error": "Not found"})
			return
		}
		writeJSON(w, 200, map[string]any{"success": true, "download_url": "http://" + r.Host + "/cdn/a", "filename": "../../etc/a.txt"})
	})
	r.Get("/cdn/a", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})
	r.Get("/cdn/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	r.Delete("/api/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"success": true})
	})
	r.Post("/api/files/{id}/share", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"success": true, "share_link": "/share/hash-" + chi.URLParam(r, "id")})
	})
	r.Get("/share/{hash}", func(w http.ResponseWriter, r *http.Request) {
		url := "http://" + r.Host + "/cdn/a"
		if chi.URLParam(r, "hash") == "broken" {
			url = "http://" + r.Host + "/cdn/broken"
		}
		writeJSON(w, 200, map[string]any{"success": true, "file": map[string]any{"filename": "shared.txt", "size": 5, "download_url": url}})
	})
	return r
}

func TestFileService_List(t *testing.T) {
	c, _ := newBackend(t, filesBackend(t))
	svc := NewFileService(c, nil)

	files, err := svc.List(context.Background(), "document")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "document", files[0].FileType)

	_, err = svc.List(context.Background(), "spreadsheets")
	require.ErrorIs(t, err, ErrUnknownFileType)
}

func TestFileService_Download(t *testing.T) {
	c, _ := newBackend(t, filesBackend(t))
	svc := NewFileService(c, nil)
	dir := filepath.Join(t.TempDir(), "downloads")

	path, err := svc.Download(context.Background(), "f1", dir)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", filepath.Base(path))
	assert.Equal(t, dir, filepath.Dir(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	_, err = svc.Download(context.Background(), "gone", dir)
	require.ErrorIs(t, err, client.ErrNotFound)
}

func TestFileService_ShareAndResolve(t *testing.T) {
	c, srv := newBackend(t, filesBackend(t))
	svc := NewFileService(c, nil)
	ctx := context.Background()

	link, err := svc.Share(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/share/hash-f1", link)

	sf, err := svc.ResolveShare(ctx, link)
	require.NoError(t, err)
	assert.Equal(t, "shared.txt", sf.Filename)

	dir := t.TempDir()
	path, err := svc.DownloadShared(ctx, "hash-f1", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shared.txt"), path)

	_, err = svc.DownloadShared(ctx, "broken", dir)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "shared.txt"))
	require.ErrorIs(t, statErr, os.ErrNotExist, "partial download is removed")

	_, err = svc.ResolveShare(ctx, "  ")
	require.Error(t, err)

	require.NoError(t, svc.Delete(ctx, "f1"))
}

func TestShareHash(t *testing.T) {
	assert.Equal(t, "abc", ShareHash("https://vimesta.example/share/abc"))
	assert.Equal(t, "abc", ShareHash("/share/abc?x=1"))
	assert.Equal(t, "abc", ShareHash("abc"))
	assert.Equal(t, "", ShareHash(""))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "a.txt", safeName("../../a.txt"))
	assert.Equal(t, "download", safeName(""))
	assert.Equal(t, "download", safeName("/"))
}

type storageClient struct {
	client.Client
	stats *models.StorageStats
}

func (s *storageClient) Storage(context.Context) (*models.StorageStats, error) { return s.stats, nil }
func (s *storageClient) Profile(context.Context) (*models.User, error) {
	return &models.User{ID: "u1"}, nil
}

func TestUserService(t *testing.T) {
	svc := NewUserService(&storageClient{stats: &models.StorageStats{TotalSize: 1536}})

	st, err := svc.Storage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.5 KB", st.TotalSizeFormatted)

	u, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}
