// Package backup stores encrypted vault snapshots in S3-compatible object
// storage (MinIO in development). A snapshot is the exported plaintext
// bundle sealed under the session's data key, so the storage provider holds
// the same kind of opaque blob the vault server does.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/mpetrovs/spendvault/internal/client/data"
	"github.com/mpetrovs/spendvault/internal/cryptox"
	"github.com/mpetrovs/spendvault/internal/logging"
)

type Config struct {
	Region       string
	BaseEndpoint string
	Bucket       string
	AccessKey    string
	SecretKey    string
}

type Service struct {
	cfg    Config
	logger logging.Logger

	// test seam
	newClient func(ctx context.Context, cfg Config) (objectStore, error)
}

// objectStore is the slice of the S3 client the service uses.
type objectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func NewService(cfg Config, logger logging.Logger) *Service {
	return &Service{cfg: cfg, logger: logger, newClient: newS3Client}
}

func newS3Client(ctx context.Context, c Config) (objectStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKey,
			c.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
		}
	})
	return client, nil
}

// snapshotKey names an object by owner and date so snapshots never collide
// and prefix-listing by user stays cheap.
func snapshotKey(userID string) string {
	d := time.Now()
	return fmt.Sprintf("vaults/%s/%d/%d/%d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

// Upload seals the bundle under the session's data key and stores it.
// Returns the object key needed to restore it later.
func (s *Service) Upload(ctx context.Context, sess *data.Session, bundle *data.Bundle) (string, error) {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return "", fmt.Errorf("snapshot serialization error: %w", err)
	}
	sealed, err := cryptox.Encrypt(string(payload), sess.DataKey)
	if err != nil {
		return "", err
	}

	client, err := s.newClient(ctx, s.cfg)
	if err != nil {
		return "", err
	}

	key := snapshotKey(sess.UserID)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.cfg.Bucket,
		Key:    &key,
		Body:   strings.NewReader(sealed),
	})
	if err != nil {
		return "", fmt.Errorf("snapshot upload error: %w", err)
	}
	s.logger.Info(ctx, "snapshot uploaded", "key", key)
	return key, nil
}

// Download fetches a snapshot and opens it with the session's data key. A
// snapshot made under a different account's key fails to decrypt.
func (s *Service) Download(ctx context.Context, sess *data.Session, key string) (*data.Bundle, error) {
	client, err := s.newClient(ctx, s.cfg)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.cfg.Bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot download error: %w", err)
	}
	defer out.Body.Close()

	sealed, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("snapshot download error: %w", err)
	}
	payload, err := cryptox.Decrypt(string(sealed), sess.DataKey)
	if err != nil {
		return nil, err
	}

	var bundle data.Bundle
	if err := json.Unmarshal([]byte(payload), &bundle); err != nil {
		return nil, fmt.Errorf("snapshot parsing error: %w", err)
	}
	return &bundle, nil
}
