package transport

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dmitrijs2005/vimesta/internal/client/models"
)

type MinioConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// MinioPutAPI is the slice of *minio.Client used by the transport.
type MinioPutAPI interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Minio writes files into a MinIO bucket, using the client's progress hook.
type Minio struct {
	api    MinioPutAPI
	bucket string
	prefix string
}

func NewMinio(api MinioPutAPI, bucket, prefix string) *Minio {
	return &Minio{api: api, bucket: bucket, prefix: prefix}
}

// NewMinioClient connects to MinIO and makes sure the bucket exists.
func NewMinioClient(ctx context.Context, cfg MinioConfig) (*minio.Client, error) {
	c, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := c.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := c.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return c, nil
}

func (t *Minio) Upload(ctx context.Context, req Request, progress ProgressFunc) (*models.UploadResult, error) {
	name, size := req.File.Name(), req.File.Size()
	key := objectKey(t.prefix, req.FolderID, name)

	src, err := req.File.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	meta := map[string]string{"original-filename": name}
	if req.FolderID != "" {
		meta["folder-id"] = req.FolderID
	}

	_, err = t.api.PutObject(ctx, t.bucket, key, src, size, minio.PutObjectOptions{
		ContentType:  contentType(name),
		UserMetadata: meta,
		Progress:     newProgressCounter(size, progress),
	})
	if err != nil {
		if ierr := interrupted(ctx); ierr != nil {
			return nil, ierr
		}
		if code := minio.ToErrorResponse(err).StatusCode; code != 0 {
			return nil, &StatusError{Code: code}
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	return &models.UploadResult{Key: key, Location: fmt.Sprintf("%s/%s", t.bucket, key)}, nil
}
