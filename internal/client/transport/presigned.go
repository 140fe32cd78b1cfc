package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/cryptox"
	"github.com/dmitrijs2005/vimesta/internal/netx"
)

// PresignAPI is the part of the backend the presigned flow needs.
type PresignAPI interface {
	RequestUploadURL(ctx context.Context, req client.UploadURLRequest) (*client.UploadTicket, error)
	ConfirmUpload(ctx context.Context, req client.ConfirmRequest) (*models.File, error)
}

// Presigned asks the backend for a presigned PUT URL, streams the file
// straight to object storage and confirms the upload afterwards.
type Presigned struct {
	api  PresignAPI
	http *http.Client
}

// NewPresigned builds the transport; storage is the client used for the
// PUT to object storage (nil means the default client).
func NewPresigned(api PresignAPI, storage *http.Client) *Presigned {
	return &Presigned{api: api, http: storage}
}

func (p *Presigned) Upload(ctx context.Context, req Request, progress ProgressFunc) (*models.UploadResult, error) {
	name, size := req.File.Name(), req.File.Size()
	ct := contentType(name)

	ticket, err := p.api.RequestUploadURL(ctx, client.UploadURLRequest{
		Filename:    name,
		Size:        size,
		ContentType: ct,
		FolderID:    req.FolderID,
	})
	if err != nil {
		return nil, failure(ctx, err)
	}

	src, err := req.File.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	hasher := cryptox.NewHasher()
	body := io.TeeReader(newProgressReader(src, size, progress), hasher)

	if err := netx.PutPresigned(ctx, p.http, ticket.URL, body, size, ct); err != nil {
		var se *netx.StatusError
		if errors.As(err, &se) && interrupted(ctx) == nil {
			return nil, &StatusError{Code: se.Code}
		}
		return nil, failure(ctx, err)
	}

	file, err := p.api.ConfirmUpload(ctx, client.ConfirmRequest{
		Key:      ticket.Key,
		Filename: name,
		Size:     size,
		FolderID: req.FolderID,
		Checksum: cryptox.Sum(hasher),
	})
	if err != nil {
		return nil, failure(ctx, err)
	}

	return &models.UploadResult{File: file, Key: ticket.Key, Location: stripQuery(ticket.URL)}, nil
}

func stripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
