package transport

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
)

const (
	KindMultipart = "multipart"
	KindChunked   = "chunked"
	KindPresigned = "presigned"
	KindS3        = "s3"
	KindMinio     = "minio"
)

var Kinds = []string{KindMultipart, KindChunked, KindPresigned, KindS3, KindMinio}

// Options carries everything the factory may need; only the fields of the
// selected kind are used.
type Options struct {
	Kind      string
	API       client.Client
	Storage   *http.Client
	ChunkSize int64
	S3        S3Config
	Minio     MinioConfig
}

// New builds the transport named by opts.Kind. An empty kind selects
// multipart.
func New(ctx context.Context, opts Options) (Transport, error) {
	switch opts.Kind {
	case "", KindMultipart:
		return NewMultipart(opts.API), nil
	case KindChunked:
		return NewChunked(opts.API, opts.ChunkSize), nil
	case KindPresigned:
		return NewPresigned(opts.API, opts.Storage), nil
	case KindS3:
		if opts.S3.Bucket == "" {
			return nil, fmt.Errorf("s3 transport: bucket is required")
		}
		c, err := NewS3Client(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		return NewS3(c, opts.S3.Bucket, opts.S3.Prefix), nil
	case KindMinio:
		if opts.Minio.Endpoint == "" || opts.Minio.Bucket == "" {
			return nil, fmt.Errorf("minio transport: endpoint and bucket are required")
		}
		c, err := NewMinioClient(ctx, opts.Minio)
		if err != nil {
			return nil, err
		}
		return NewMinio(c, opts.Minio.Bucket, opts.Minio.Prefix), nil
	}
	return nil, fmt.Errorf("unknown transport %q, want one of %v", opts.Kind, Kinds)
}

// Valid reports whether kind names a known transport.
func Valid(kind string) bool {
	return kind == "" || slices.Contains(Kinds, kind)
}
