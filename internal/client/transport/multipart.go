package transport

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/models"
)

const uploadPath = "/files/upload"

// Multipart uploads a file in one multipart/form-data request. The body is
// streamed from the file, so memory use does not depend on its size.
type Multipart struct {
	api client.Requester
}

func NewMultipart(api client.Requester) *Multipart {
	return &Multipart{api: api}
}

func (m *Multipart) Upload(ctx context.Context, req Request, progress ProgressFunc) (*models.UploadResult, error) {
	src, err := req.File.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	done := make(chan struct{})

	go func() {
		defer close(done)
		pw.CloseWithError(writeForm(mw, req, newProgressReader(src, req.File.Size(), progress)))
	}()
	defer func() {
		_ = pr.Close()
		<-done
	}()

	httpReq, err := m.api.NewRequest(ctx, http.MethodPost, uploadPath, pr)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := m.api.Do(httpReq)
	if err != nil {
		return nil, failure(ctx, err)
	}
	defer resp.Body.Close()

	res, err := decodeUpload(resp)
	if err != nil {
		return nil, failure(ctx, err)
	}
	return res, nil
}

func writeForm(mw *multipart.Writer, req Request, body io.Reader) error {
	part, err := mw.CreateFormFile("file", req.File.Name())
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	if req.FolderID != "" {
		if err := mw.WriteField("folder_id", req.FolderID); err != nil {
			return err
		}
	}
	return mw.Close()
}

type uploadResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	File    *models.File `json:"file"`
}

// decodeUpload turns an upload answer into a result: non-2xx is a
// StatusError, an unparsable body ErrInvalidResponse and success=false a
// RejectedError.
func decodeUpload(resp *http.Response) (*models.UploadResult, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out uploadResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, ErrInvalidResponse
	}
	if !out.Success {
		return nil, &RejectedError{Reason: out.Error}
	}
	return &models.UploadResult{File: out.File}, nil
}
