// internal/services/snapshot_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/shopinsights/internal/config"
)

// SnapshotService archives raw storefront responses to S3 or a local directory.
type SnapshotService struct {
	s3Client s3iface.S3API
	config   *config.Config
	logger   *logrus.Entry
}

type SnapshotResult struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

func NewSnapshotService(config *config.Config, logger *logrus.Logger) (*SnapshotService, error) {
	svc := &SnapshotService{
		config: config,
		logger: logger.WithField("component", "snapshots"),
	}
	if !config.Storage.SnapshotsEnabled || config.AWS.S3Bucket == "" {
		// local directory only
		return svc, nil
	}

	awsConfig := &aws.Config{Region: aws.String(config.AWS.Region)}
	if config.AWS.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		)
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	svc.s3Client = s3.New(sess)
	return svc, nil
}

func (s *SnapshotService) Enabled() bool {
	return s != nil && s.config.Storage.SnapshotsEnabled
}

// Save writes one snapshot under snapshots/<domain>/.
func (s *SnapshotService) Save(ctx context.Context, domain, name, contentType string, data []byte) (*SnapshotResult, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("snapshots are disabled")
	}

	key := s.generateKey(domain, name)
	if s.s3Client != nil {
		return s.saveToS3(ctx, data, key, contentType)
	}
	return s.saveToLocal(data, key, contentType)
}

func (s *SnapshotService) saveToS3(ctx context.Context, data []byte, key, contentType string) (*SnapshotResult, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload snapshot to S3: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"key": key, "size": len(data)}).Debug("snapshot uploaded")

	return &SnapshotResult{
		URL:         s.getS3URL(key),
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

func (s *SnapshotService) saveToLocal(data []byte, key, contentType string) (*SnapshotResult, error) {
	path := filepath.Join(s.config.Storage.LocalPath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	return &SnapshotResult{
		URL:         strings.TrimRight(s.config.Storage.BaseURL, "/") + "/" + key,
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

func (s *SnapshotService) generateKey(domain, name string) string {
	id := uuid.New()
	timestamp := time.Now().UTC().Format("20060102T150405")
	domain = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(domain)
	if domain == "" {
		domain = "unknown"
	}
	return fmt.Sprintf("snapshots/%s/%s_%s_%s", domain, timestamp, id.String()[:8], name)
}

func (s *SnapshotService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.AWS.CloudFrontURL, "/"), key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}
