package config

import (
	"github.com/spf13/pflag"
)

// BindFlags registers command-line flags on fs with the current values of
// cfg as defaults, so parsing fs overrides only what is given. Secrets are
// left to the file and the environment.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringP("config", "c", "", "path to a YAML or JSON config file")

	fs.StringVarP(&cfg.APIURL, "api-url", "a", cfg.APIURL, "backend API base URL")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the local session database")
	fs.StringVarP(&cfg.DownloadDir, "download-dir", "o", cfg.DownloadDir, "where downloaded files are written")

	fs.Int64Var(&cfg.MaxFileSize, "max-file-size", cfg.MaxFileSize, "largest accepted file in bytes")
	fs.StringSliceVar(&cfg.AllowedExtensions, "allowed-extensions", cfg.AllowedExtensions, "accepted file extensions (empty allows all)")
	fs.StringVarP(&cfg.Transport, "transport", "t", cfg.Transport, "upload transport: multipart, chunked, presigned, s3, minio")
	fs.Int64Var(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "chunk size in bytes for the chunked transport")
	fs.DurationVar(&cfg.UploadTimeout, "upload-timeout", cfg.UploadTimeout, "per-upload time limit (0 disables)")
	fs.IntVar(&cfg.UploadRetries, "upload-retries", cfg.UploadRetries, "extra attempts for uploads failing with network or 5xx errors")

	fs.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "time limit for API calls")
	fs.DurationVarP(&cfg.OnlineCheckInterval, "online-check-interval", "i", cfg.OnlineCheckInterval, "how often the shell checks the backend")

	fs.StringVar(&cfg.DropDir, "drop-dir", cfg.DropDir, "directory watched for files to upload")
	fs.DurationVar(&cfg.DropPollInterval, "drop-poll-interval", cfg.DropPollInterval, "drop directory poll interval")

	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")

	fs.StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "S3-compatible endpoint (empty uses AWS)")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Prefix, "s3-prefix", cfg.S3Prefix, "object key prefix for s3 and minio")

	fs.StringVar(&cfg.MinioEndpoint, "minio-endpoint", cfg.MinioEndpoint, "MinIO host:port")
	fs.StringVar(&cfg.MinioBucket, "minio-bucket", cfg.MinioBucket, "MinIO bucket")
	fs.BoolVar(&cfg.MinioUseSSL, "minio-ssl", cfg.MinioUseSSL, "use TLS for MinIO")
}
