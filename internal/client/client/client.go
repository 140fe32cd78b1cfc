package client

import (
	"context"
	"io"
	"net/http"

	"github.com/dmitrijs2005/vimesta/internal/client/models"
)

// Client is the contract of the Vimesta REST backend used by services and
// transports.
type Client interface {
	SetToken(token string)
	Token() string
	// OnUnauthorized registers fn to run after any 401 response.
	OnUnauthorized(fn func())

	// PublicURL resolves paths served outside the API prefix.
	PublicURL(path string) string
	Health(ctx context.Context) error

	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, otp string) (*models.Session, error)
	TelegramLogin(ctx context.Context, payload models.TelegramLogin) (*models.Session, error)
	VerifySession(ctx context.Context) (*models.User, error)

	ListFiles(ctx context.Context, fileType string) ([]models.File, error)
	DownloadLink(ctx context.Context, id string) (*models.DownloadLink, error)
	DeleteFile(ctx context.Context, id string) error
	ShareFile(ctx context.Context, id string) (string, error)
	ResolveShare(ctx context.Context, hash string) (*models.SharedFile, error)

	ListFolders(ctx context.Context, parentID string) ([]models.Folder, error)
	CreateFolder(ctx context.Context, name, parentID string) (*models.Folder, error)
	DeleteFolder(ctx context.Context, id string) error

	Profile(ctx context.Context) (*models.User, error)
	Storage(ctx context.Context) (*models.StorageStats, error)

	RequestUploadURL(ctx context.Context, req UploadURLRequest) (*UploadTicket, error)
	ConfirmUpload(ctx context.Context, req ConfirmRequest) (*models.File, error)

	Requester
}

// Requester gives transports raw access to the API: requests built with
// the base URL and the bearer token, and 401 handling on the way back.
type Requester interface {
	NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error)
	// Do sends req. A 401 response is consumed, the session is
	// invalidated and ErrUnauthorized is returned.
	Do(req *http.Request) (*http.Response, error)
}

type UploadURLRequest struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	FolderID    string `json:"folder_id,omitempty"`
}

// UploadTicket is a presigned object storage URL issued by the backend.
type UploadTicket struct {
	URL string `json:"upload_url"`
	Key string `json:"key"`
}

type ConfirmRequest struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	FolderID string `json:"folder_id,omitempty"`
	Checksum string `json:"checksum,omitempty"`
}
