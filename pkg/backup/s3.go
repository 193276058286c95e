// Package backup copies encrypted registry backups to S3-compatible
// storage and fetches them back for a restore.
package backup

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/seedcash/seedcash/pkg/common/pathutil"
	"github.com/seedcash/seedcash/pkg/kvstore"
	"github.com/seedcash/seedcash/pkg/logger"
)

const (
	DefaultBucket = "seedcash-backups"
	DefaultPrefix = "watch/"

	backupExt     = ".enc"
	uploadTimeout = 5 * time.Minute
)

var ErrS3NotConfigured = errors.New("s3 endpoint not configured")

// S3Config configures S3-compatible backup storage.
type S3Config struct {
	Endpoint  string // e.g. "s3.amazonaws.com" or "minio.example.com"
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Prefix    string // e.g. "watch/laptop/"
}

func (c S3Config) Enabled() bool {
	return c.Endpoint != ""
}

// withDefaults fills in the bucket and prefix and makes the prefix end in
// a slash.
func (c S3Config) withDefaults() S3Config {
	if c.Bucket == "" {
		c.Bucket = DefaultBucket
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if !strings.HasSuffix(c.Prefix, "/") {
		c.Prefix += "/"
	}
	return c
}

// Syncer runs local backups and mirrors new backup files to a bucket.
type Syncer struct {
	exec   *kvstore.Backup
	cfg    S3Config
	client *minio.Client
}

// NewSyncer creates a syncer for exec. exec may be nil when the syncer is
// only used to download.
func NewSyncer(exec *kvstore.Backup, cfg S3Config) (*Syncer, error) {
	if !cfg.Enabled() {
		return nil, ErrS3NotConfigured
	}
	cfg = cfg.withDefaults()
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return &Syncer{exec: exec, cfg: cfg, client: client}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Syncer) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check S3 bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("failed to create S3 bucket: %w", err)
	}
	logger.Info("Created S3 bucket", "bucket", s.cfg.Bucket)
	return nil
}

// Run executes a local backup and uploads the files it produced. It
// returns the uploaded object names.
func (s *Syncer) Run(ctx context.Context) ([]string, error) {
	if s.exec == nil {
		return nil, kvstore.ErrBackupExecutorNotPresent
	}
	before := s.exec.SortedEncryptedBackups()
	if err := s.exec.Execute(); err != nil {
		return nil, fmt.Errorf("local backup failed: %w", err)
	}
	newFiles := findNewFiles(before, s.exec.SortedEncryptedBackups())
	if len(newFiles) == 0 {
		return nil, nil
	}

	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	uploaded := make([]string, 0, len(newFiles))
	for _, f := range newFiles {
		name, err := s.Upload(ctx, f)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, name)
	}
	return uploaded, nil
}

// Upload copies one local backup file to the bucket.
func (s *Syncer) Upload(ctx context.Context, localPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	name := s.objectName(localPath)
	info, err := s.client.FPutObject(ctx, s.cfg.Bucket, name, localPath, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("S3 upload failed: %w", err)
	}
	logger.Info("Backup uploaded to S3", "bucket", s.cfg.Bucket, "object", name, "size", info.Size)
	return name, nil
}

// Download fetches every backup object under the prefix into dir and
// returns the local paths.
func (s *Syncer) Download(ctx context.Context, dir string) ([]string, error) {
	var files []string
	for obj := range s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{Prefix: s.cfg.Prefix}) {
		if obj.Err != nil {
			return files, fmt.Errorf("failed to list S3 backups: %w", obj.Err)
		}
		local, ok, err := localName(dir, obj.Key)
		if err != nil {
			return files, err
		}
		if !ok {
			continue
		}
		if err := s.client.FGetObject(ctx, s.cfg.Bucket, obj.Key, local, minio.GetObjectOptions{}); err != nil {
			return files, fmt.Errorf("failed to download %s: %w", obj.Key, err)
		}
		files = append(files, local)
	}
	logger.Info("Downloaded backups from S3", "bucket", s.cfg.Bucket, "files", len(files))
	return files, nil
}

func (s *Syncer) objectName(localPath string) string {
	return s.cfg.Prefix + filepath.Base(localPath)
}

// localName maps an object key to a file in dir. Keys that are not backup
// files are skipped.
func localName(dir, key string) (string, bool, error) {
	base := path.Base(key)
	if !strings.HasPrefix(base, "backup-") || !strings.HasSuffix(base, backupExt) {
		return "", false, nil
	}
	local, err := pathutil.SafePath(dir, base)
	if err != nil {
		return "", false, err
	}
	return local, true, nil
}

func findNewFiles(before, after []string) []string {
	existing := make(map[string]bool, len(before))
	for _, f := range before {
		existing[f] = true
	}
	var newFiles []string
	for _, f := range after {
		if !existing[f] {
			newFiles = append(newFiles, f)
		}
	}
	return newFiles
}
