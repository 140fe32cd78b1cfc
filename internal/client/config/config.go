package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/transport"
	"github.com/dmitrijs2005/vimesta/internal/client/upload"
	"github.com/dmitrijs2005/vimesta/internal/flagx"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime settings for the Vimesta CLI. The envconfig tags are
// relative to the VIMESTA prefix.
type Config struct {
	APIURL      string `envconfig:"API_URL"`
	DBPath      string `envconfig:"DB_PATH"`
	DownloadDir string `envconfig:"DOWNLOAD_DIR"`

	MaxFileSize       int64         `envconfig:"MAX_FILE_SIZE"`
	AllowedExtensions []string      `envconfig:"ALLOWED_EXTENSIONS"`
	Transport         string        `envconfig:"TRANSPORT"`
	ChunkSize         int64         `envconfig:"CHUNK_SIZE"`
	UploadTimeout     time.Duration `envconfig:"UPLOAD_TIMEOUT"`
	UploadRetries     int           `envconfig:"UPLOAD_RETRIES"`

	RequestTimeout      time.Duration `envconfig:"REQUEST_TIMEOUT"`
	OnlineCheckInterval time.Duration `envconfig:"ONLINE_CHECK_INTERVAL"`

	DropDir          string        `envconfig:"DROP_DIR"`
	DropPollInterval time.Duration `envconfig:"DROP_POLL_INTERVAL"`

	LogLevel  string `envconfig:"LOG_LEVEL"`
	LogFormat string `envconfig:"LOG_FORMAT"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Region    string `envconfig:"S3_REGION"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3Prefix    string `envconfig:"S3_PREFIX"`

	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT"`
	MinioBucket    string `envconfig:"MINIO_BUCKET"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = client.DefaultBaseURL
	c.DBPath = "vimesta.db"
	c.DownloadDir = "."
	c.MaxFileSize = upload.DefaultMaxSize
	c.Transport = transport.KindMultipart
	c.ChunkSize = transport.DefaultChunkSize
	c.RequestTimeout = 30 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.DropPollInterval = 2 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.S3Region = "us-east-1"
}

// Load builds a Config from defaults, the file named by -c/--config in args
// and VIMESTA_* environment variables, in that order. Command-line flags
// are applied later by the flag set returned from BindFlags.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFile(args); path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := LoadEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate normalizes extensions and checks the values that would otherwise
// fail later in less obvious ways.
func (c *Config) Validate() error {
	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api_url %q is not an absolute URL", ErrInvalidConfig, c.APIURL)
	}
	if !transport.Valid(c.Transport) {
		return fmt.Errorf("%w: transport %q, want one of %v", ErrInvalidConfig, c.Transport, transport.Kinds)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("%w: max_file_size must be positive", ErrInvalidConfig)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", ErrInvalidConfig)
	}
	if c.UploadRetries < 0 {
		return fmt.Errorf("%w: upload_retries must not be negative", ErrInvalidConfig)
	}
	if c.UploadTimeout < 0 || c.RequestTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if c.OnlineCheckInterval <= 0 || c.DropPollInterval <= 0 {
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	}

	exts := make([]string, 0, len(c.AllowedExtensions))
	for _, e := range c.AllowedExtensions {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			exts = append(exts, e)
		}
	}
	c.AllowedExtensions = exts

	return nil
}

func (c *Config) Constraints() upload.Constraints {
	return upload.Constraints{MaxSize: c.MaxFileSize, AllowedExtensions: c.AllowedExtensions}
}

func (c *Config) S3() transport.S3Config {
	return transport.S3Config{
		Endpoint:  c.S3Endpoint,
		Region:    c.S3Region,
		Bucket:    c.S3Bucket,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Prefix:    c.S3Prefix,
	}
}

func (c *Config) Minio() transport.MinioConfig {
	return transport.MinioConfig{
		Endpoint:  c.MinioEndpoint,
		Bucket:    c.MinioBucket,
		AccessKey: c.MinioAccessKey,
		SecretKey: c.MinioSecretKey,
		UseSSL:    c.MinioUseSSL,
		Prefix:    c.S3Prefix,
	}
}
