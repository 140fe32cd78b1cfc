package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/filex"
	"github.com/dmitrijs2005/vimesta/internal/netx"
)

var ErrUnknownFileType = errors.New("unknown file type")

type FileService interface {
	List(ctx context.Context, fileType string) ([]models.File, error)
	Download(ctx context.Context, id, dir string) (string, error)
	Delete(ctx context.Context, id string) error
	Share(ctx context.Context, id string) (string, error)
	ResolveShare(ctx context.Context, link string) (*models.SharedFile, error)
	DownloadShared(ctx context.Context, link, dir string) (string, error)
}

type fileService struct {
	client client.Client
	http   *http.Client
}

// NewFileService builds the service. downloads is the HTTP client used to
// fetch file content from the URLs the backend hands out; nil means the
// default client.
func NewFileService(c client.Client, downloads *http.Client) FileService {
	return &fileService{client: c, http: downloads}
}

func (s *fileService) List(ctx context.Context, fileType string) ([]models.File, error) {
	if fileType != "" && !models.IsFileType(fileType) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFileType, fileType)
	}
	return s.client.ListFiles(ctx, fileType)
}

// Download saves the file into dir and returns the written path.
func (s *fileService) Download(ctx context.Context, id, dir string) (string, error) {
	link, err := s.client.DownloadLink(ctx, id)
	if err != nil {
		return "", fmt.Errorf("download link: %w", err)
	}
	name := link.Filename
	if name == "" {
		name = id
	}
	return s.fetch(ctx, link.URL, name, dir)
}

func (s *fileService) fetch(ctx context.Context, url, name, dir string) (string, error) {
	dir, err := filex.EnsureDir(dir)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, safeName(name))
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o660)
	if err != nil {
		return "", err
	}

	if _, err := netx.Download(ctx, s.http, url, out); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("download %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func safeName(name string) string {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." || name == "" {
		return "download"
	}
	return name
}

func (s *fileService) Delete(ctx context.Context, id string) error {
	return s.client.DeleteFile(ctx, id)
}

// Share makes the file public and returns its absolute link.
func (s *fileService) Share(ctx context.Context, id string) (string, error) {
	link, err := s.client.ShareFile(ctx, id)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link, nil
	}
	return s.client.PublicURL(link), nil
}

// ShareHash extracts the link hash from a share URL, a /share/ path or a
// bare hash.
func ShareHash(link string) string {
	link = strings.TrimSpace(link)
	if i := strings.LastIndex(link, "/share/"); i >= 0 {
		link = link[i+len("/share/"):]
	}
	if i := strings.IndexAny(link, "?#/"); i >= 0 {
		link = link[:i]
	}
	return link
}

func (s *fileService) ResolveShare(ctx context.Context, link string) (*models.SharedFile, error) {
	hash := ShareHash(link)
	if hash == "" {
		return nil, errors.New("share link is empty")
	}
	return s.client.ResolveShare(ctx, hash)
}

func (s *fileService) DownloadShared(ctx context.Context, link, dir string) (string, error) {
	sf, err := s.ResolveShare(ctx, link)
	if err != nil {
		return "", err
	}
	return s.fetch(ctx, sf.DownloadURL, sf.Filename, dir)
}
