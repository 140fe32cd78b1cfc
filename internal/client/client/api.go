package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/vimesta/internal/client/models"
)

func (c *HTTPClient) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.call(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return err
	}
	if out.Status != "" && out.Status != "healthy" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) RequestOTP(ctx context.Context, phone string) error {
	return c.call(ctx, http.MethodPost, "/auth/request-otp", map[string]string{"phone": phone}, nil)
}

func (c *HTTPClient) login(ctx context.Context, path string, in any) (*models.Session, error) {
	var out models.Session
	if err := c.call(ctx, http.MethodPost, path, in, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("login: missing token: %w", ErrInvalidResponse)
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, phone, otp string) (*models.Session, error) {
	return c.login(ctx, "/auth/verify-otp", map[string]string{"phone": phone, "otp": otp})
}

func (c *HTTPClient) TelegramLogin(ctx context.Context, payload models.TelegramLogin) (*models.Session, error) {
	return c.login(ctx, "/auth/telegram", payload)
}

type userEnvelope struct {
	User *models.User `json:"user"`
}

func (c *HTTPClient) VerifySession(ctx context.Context) (*models.User, error) {
	var out userEnvelope
	if err := c.call(ctx, http.MethodGet, "/auth/verify", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *HTTPClient) ListFiles(ctx context.Context, fileType string) ([]models.File, error) {
	path := "/files/list"
	if fileType != "" {
		path += "?type=" + url.QueryEscape(fileType)
	}

	var out struct {
		Files []models.File `json:"files"`
		Count int           `json:"count"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

func (c *HTTPClient) DownloadLink(ctx context.Context, id string) (*models.DownloadLink, error) {
	var out models.DownloadLink
	if err := c.call(ctx, http.MethodGet, "/files/"+url.PathEscape(id)+"/download", nil, &out); err != nil {
		return nil, err
	}
	if out.URL == "" {
		return nil, fmt.Errorf("download link: %w", ErrInvalidResponse)
	}
	return &out, nil
}

func (c *HTTPClient) DeleteFile(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/files/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) ShareFile(ctx context.Context, id string) (string, error) {
	var out struct {
		ShareLink string `json:"share_link"`
	}
	if err := c.call(ctx, http.MethodPost, "/files/"+url.PathEscape(id)+"/share", nil, &out); err != nil {
		return "", err
	}
	if out.ShareLink == "" {
		return "", fmt.Errorf("share link: %w", ErrInvalidResponse)
	}
	return out.ShareLink, nil
}

// ResolveShare looks up a public share. It is served outside /api and does
// not require a session.
func (c *HTTPClient) ResolveShare(ctx context.Context, hash string) (*models.SharedFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PublicURL("/share/"+url.PathEscape(hash)), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.mapError(ctx, err)
	}
	defer resp.Body.Close()

	var out struct {
		envelope
		File *models.SharedFile `json:"file"`
	}
	decodeErr := decodeJSON(resp.Body, &out)

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Message: out.Error}
	}
	if decodeErr != nil || out.File == nil {
		return nil, fmt.Errorf("resolve share: %w", ErrInvalidResponse)
	}
	return out.File, nil
}

func (c *HTTPClient) ListFolders(ctx context.Context, parentID string) ([]models.Folder, error) {
	path := "/folders/list"
	if parentID != "" {
		path += "?parent_id=" + url.QueryEscape(parentID)
	}

	var out struct {
		Folders []models.Folder `json:"folders"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Folders, nil
}

func (c *HTTPClient) CreateFolder(ctx context.Context, name, parentID string) (*models.Folder, error) {
	in := map[string]any{"name": name, "parent_id": nil}
	if parentID != "" {
		in["parent_id"] = parentID
	}

	var out struct {
		Folder *models.Folder `json:"folder"`
	}
	if err := c.call(ctx, http.MethodPost, "/folders/create", in, &out); err != nil {
		return nil, err
	}
	if out.Folder == nil {
		return &models.Folder{Name: name, ParentID: parentID}, nil
	}
	return out.Folder, nil
}

func (c *HTTPClient) DeleteFolder(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/folders/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.User, error) {
	var out userEnvelope
	if err := c.call(ctx, http.MethodGet, "/user/profile", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *HTTPClient) Storage(ctx context.Context) (*models.StorageStats, error) {
	var out struct {
		Storage *models.StorageStats `json:"storage"`
	}
	if err := c.call(ctx, http.MethodGet, "/user/storage", nil, &out); err != nil {
		return nil, err
	}
	if out.Storage == nil {
		return nil, fmt.Errorf("storage: %w", ErrInvalidResponse)
	}
	return out.Storage, nil
}

func (c *HTTPClient) RequestUploadURL(ctx context.Context, in UploadURLRequest) (*UploadTicket, error) {
	var out UploadTicket
	if err := c.call(ctx, http.MethodPost, "/files/upload-url", in, &out); err != nil {
		return nil, err
	}
	if out.URL == "" {
		return nil, fmt.Errorf("upload url: %w", ErrInvalidResponse)
	}
	return &out, nil
}

func (c *HTTPClient) ConfirmUpload(ctx context.Context, in ConfirmRequest) (*models.File, error) {
	var out struct {
		File *models.File `json:"file"`
	}
	if err := c.call(ctx, http.MethodPost, "/files/confirm", in, &out); err != nil {
		return nil, err
	}
	if out.File == nil {
		return nil, fmt.Errorf("confirm upload: %w", ErrInvalidResponse)
	}
	return out.File, nil
}

// IsAuthError reports whether err means the session is gone.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
