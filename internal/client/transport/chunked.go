package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/cryptox"
	"github.com/google/uuid"
)

const (
	chunkPath        = "/files/upload-chunk"
	DefaultChunkSize = 10 << 20
)

// Chunked uploads a file as a sequence of fixed-size chunks. Each chunk
// is acknowledged before the next one is sent. All chunks of one file
// share an upload_id; the last one carries the checksum of the whole file.
type Chunked struct {
	api       client.Requester
	chunkSize int64
	newID     func() string
}

func NewChunked(api client.Requester, chunkSize int64) *Chunked {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Chunked{api: api, chunkSize: chunkSize, newID: uuid.NewString}
}

// Chunks returns how many chunks a file of size bytes is split into. An
// empty file is sent as one empty chunk.
func (c *Chunked) Chunks(size int64) int {
	if size <= 0 {
		return 1
	}
	return int((size + c.chunkSize - 1) / c.chunkSize)
}

func (c *Chunked) Upload(ctx context.Context, req Request, progress ProgressFunc) (*models.UploadResult, error) {
	if progress == nil {
		progress = func(int) {}
	}

	src, err := req.File.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	size := req.File.Size()
	total := c.Chunks(size)
	uploadID := c.newID()
	hasher := cryptox.NewHasher()
	buf := make([]byte, min(c.chunkSize, max(size, 0)))

	result := &models.UploadResult{}

	for i := 0; i < total; i++ {
		want := min(c.chunkSize, size-int64(i)*c.chunkSize)
		chunk := buf[:max(want, 0)]
		if _, err := io.ReadFull(src, chunk); err != nil {
			return nil, fmt.Errorf("read %s: %w", req.File.Name(), err)
		}
		hasher.Write(chunk)

		fields := map[string]string{
			"filename":     req.File.Name(),
			"chunk_index":  strconv.Itoa(i),
			"total_chunks": strconv.Itoa(total),
			"upload_id":    uploadID,
		}
		if req.FolderID != "" {
			fields["folder_id"] = req.FolderID
		}
		if i == total-1 {
			fields["checksum"] = cryptox.Sum(hasher)
			fields["checksum_algorithm"] = cryptox.ChecksumAlgorithm
		}

		res, err := c.send(ctx, req.File.Name(), fields, chunk)
		if err != nil {
			err = failure(ctx, err)
			if errors.Is(err, ErrCancelled) || errors.Is(err, ErrTimeout) || errors.Is(err, client.ErrUnauthorized) {
				return nil, err
			}
			return nil, &ChunkError{Index: i + 1, Err: err}
		}
		if res != nil && res.File != nil {
			result = res
		}

		progress(Percent(int64(i+1), int64(total)))
	}

	return result, nil
}

func (c *Chunked) send(ctx context.Context, name string, fields map[string]string, chunk []byte) (*models.UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("chunk", name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(chunk); err != nil {
		return nil, err
	}
	for _, k := range []string{"filename", "chunk_index", "total_chunks", "folder_id", "upload_id", "checksum", "checksum_algorithm"} {
		if v, ok := fields[k]; ok {
			if err := mw.WriteField(k, v); err != nil {
				return nil, err
			}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	httpReq, err := c.api.NewRequest(ctx, http.MethodPost, chunkPath, &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.api.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	res, err := decodeUpload(resp)
	if errors.Is(err, ErrInvalidResponse) {
		// Intermediate chunks may be acknowledged without a JSON body.
		return nil, nil
	}
	return res, err
}
