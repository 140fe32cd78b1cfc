package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/vimesta/internal/timex"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported config file format")

// fileConfig is the on-disk shape. Pointers tell "absent" from "zero" so a
// file only overrides what it mentions. Durations accept "3s" or integer
// nanoseconds.
type fileConfig struct {
	APIURL      *string `json:"api_url" yaml:"api_url"`
	DBPath      *string `json:"db_path" yaml:"db_path"`
	DownloadDir *string `json:"download_dir" yaml:"download_dir"`

	MaxFileSize       *int64          `json:"max_file_size" yaml:"max_file_size"`
	AllowedExtensions []string        `json:"allowed_extensions" yaml:"allowed_extensions"`
	Transport         *string         `json:"transport" yaml:"transport"`
	ChunkSize         *int64          `json:"chunk_size" yaml:"chunk_size"`
	UploadTimeout     *timex.Duration `json:"upload_timeout" yaml:"upload_timeout"`
	UploadRetries     *int            `json:"upload_retries" yaml:"upload_retries"`

	RequestTimeout      *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`

	DropDir          *string         `json:"drop_dir" yaml:"drop_dir"`
	DropPollInterval *timex.Duration `json:"drop_poll_interval" yaml:"drop_poll_interval"`

	LogLevel  *string `json:"log_level" yaml:"log_level"`
	LogFormat *string `json:"log_format" yaml:"log_format"`

	S3Endpoint  *string `json:"s3_endpoint" yaml:"s3_endpoint"`
	S3Region    *string `json:"s3_region" yaml:"s3_region"`
	S3Bucket    *string `json:"s3_bucket" yaml:"s3_bucket"`
	S3AccessKey *string `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey *string `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Prefix    *string `json:"s3_prefix" yaml:"s3_prefix"`

	MinioEndpoint  *string `json:"minio_endpoint" yaml:"minio_endpoint"`
	MinioBucket    *string `json:"minio_bucket" yaml:"minio_bucket"`
	MinioAccessKey *string `json:"minio_access_key" yaml:"minio_access_key"`
	MinioSecretKey *string `json:"minio_secret_key" yaml:"minio_secret_key"`
	MinioUseSSL    *bool   `json:"minio_use_ssl" yaml:"minio_use_ssl"`
}

// LoadFile overlays cfg with the YAML (.yaml, .yml) or JSON (.json) file at
// path.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	case ".json":
		err = json.Unmarshal(data, &fc)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}

func (fc *fileConfig) apply(c *Config) {
	set(&c.APIURL, fc.APIURL)
	set(&c.DBPath, fc.DBPath)
	set(&c.DownloadDir, fc.DownloadDir)

	set(&c.MaxFileSize, fc.MaxFileSize)
	if fc.AllowedExtensions != nil {
		c.AllowedExtensions = fc.AllowedExtensions
	}
	set(&c.Transport, fc.Transport)
	set(&c.ChunkSize, fc.ChunkSize)
	setDuration(&c.UploadTimeout, fc.UploadTimeout)
	set(&c.UploadRetries, fc.UploadRetries)

	setDuration(&c.RequestTimeout, fc.RequestTimeout)
	setDuration(&c.OnlineCheckInterval, fc.OnlineCheckInterval)

	set(&c.DropDir, fc.DropDir)
	setDuration(&c.DropPollInterval, fc.DropPollInterval)

	set(&c.LogLevel, fc.LogLevel)
	set(&c.LogFormat, fc.LogFormat)

	set(&c.S3Endpoint, fc.S3Endpoint)
	set(&c.S3Region, fc.S3Region)
	set(&c.S3Bucket, fc.S3Bucket)
	set(&c.S3AccessKey, fc.S3AccessKey)
	set(&c.S3SecretKey, fc.S3SecretKey)
	set(&c.S3Prefix, fc.S3Prefix)

	set(&c.MinioEndpoint, fc.MinioEndpoint)
	set(&c.MinioBucket, fc.MinioBucket)
	set(&c.MinioAccessKey, fc.MinioAccessKey)
	set(&c.MinioSecretKey, fc.MinioSecretKey)
	set(&c.MinioUseSSL, fc.MinioUseSSL)
}
