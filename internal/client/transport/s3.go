package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/vimesta/internal/client/models"
)

type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// PutObjectAPI is the slice of the S3 client used by the transport.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 writes files directly into an S3-compatible bucket.
type S3 struct {
	api    PutObjectAPI
	bucket string
	prefix string
}

func NewS3(api PutObjectAPI, bucket, prefix string) *S3 {
	return &S3{api: api, bucket: bucket, prefix: prefix}
}

// NewS3Client builds an SDK client from cfg. With a custom endpoint,
// path-style addressing is used so MinIO and similar servers work.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (t *S3) Upload(ctx context.Context, req Request, progress ProgressFunc) (*models.UploadResult, error) {
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

	_, err = t.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(t.bucket),
		Key:           aws.String(key),
		Body:          newSeekProgressReader(src, size, progress),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType(name)),
		Metadata:      meta,
	})
	if err != nil {
		if ierr := interrupted(ctx); ierr != nil {
			return nil, ierr
		}
		var re *awshttp.ResponseError
		if errors.As(err, &re) {
			return nil, &StatusError{Code: re.HTTPStatusCode()}
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	return &models.UploadResult{Key: key, Location: fmt.Sprintf("s3://%s/%s", t.bucket, key)}, nil
}
