package evidence

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ethpandaops/parkoor/pkg/config"
	"github.com/sirupsen/logrus"
)

// objectPutter is the subset of the S3 client used for uploads.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// presignCacheEntry holds a cached presigned URL and its expiration time.
type presignCacheEntry struct {
	url       string
	expiresAt time.Time
}

// s3Store keeps photos in an S3-compatible bucket and serves them through
// presigned GET URLs.
type s3Store struct {
	log           logrus.FieldLogger
	cfg           *config.S3Config
	client        objectPutter
	presignClient *s3.PresignClient
	publicPrefix  string
	cacheTTL      time.Duration
	mu            sync.RWMutex
	cache         map[string]presignCacheEntry
}

var _ Store = (*s3Store)(nil)

func newS3Store(
	log logrus.FieldLogger,
	cfg *config.S3Config,
	publicPrefix string,
) *s3Store {
	client := newS3Client(cfg)

	return &s3Store{
		log:           log.WithField("component", "evidence-s3"),
		cfg:           cfg,
		client:        client,
		presignClient: s3.NewPresignClient(client),
		publicPrefix:  publicPrefix,
		cacheTTL:      cfg.PresignExpiry / 2,
		cache:         make(map[string]presignCacheEntry),
	}
}

func (s *s3Store) Put(
	ctx context.Context,
	originalName string,
	body io.Reader,
) (string, error) {
	name := FileName(originalName)
	key := s.key(name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType(name)),
	})
	if err != nil {
		return "", fmt.Errorf("PutObject s3://%s/%s: %w", s.cfg.Bucket, key, err)
	}

	s.log.WithFields(logrus.Fields{
		"key":    key,
		"bucket": s.cfg.Bucket,
	}).Debug("Stored evidence photo")

	return s.publicPrefix + "/" + name, nil
}

func (s *s3Store) Serve(
	w http.ResponseWriter,
	r *http.Request,
	name string,
) error {
	if !isAllowedName(name) {
		return ErrNotFound
	}

	url, err := s.presignedURL(r.Context(), s.key(name))
	if err != nil {
		return err
	}

	http.Redirect(w, r, url, http.StatusFound)

	return nil
}

// presignedURL returns a presigned GET URL for key. Results are cached for
// half the presign expiry so a handed out URL always has validity left.
func (s *s3Store) presignedURL(ctx context.Context, key string) (string, error) {
	now := time.Now()

	s.mu.RLock()
	if entry, ok := s.cache[key]; ok && now.Before(entry.expiresAt) {
		s.mu.RUnlock()

		return entry.url, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.cache[key]; ok && now.Before(entry.expiresAt) {
		return entry.url, nil
	}

	result, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presigning URL for %q: %w", key, err)
	}

	s.cache[key] = presignCacheEntry{
		url:       result.URL,
		expiresAt: now.Add(s.cacheTTL),
	}

	return result.URL, nil
}

func (s *s3Store) key(name string) string {
	prefix := strings.Trim(s.cfg.Prefix, "/")
	if prefix == "" {
		return name
	}

	return prefix + "/" + name
}

// newS3Client constructs an S3 client from the storage config.
func newS3Client(cfg *config.S3Config) *s3.Client {
	opts := []func(*s3.Options){
		func(o *s3.Options) {
			if cfg.Region != "" {
				o.Region = cfg.Region
			} else {
				o.Region = "us-east-1"
			}

			if cfg.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.EndpointURL)
			}

			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}

			if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
				o.Credentials = credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID, cfg.SecretAccessKey, "",
				)
			}
		},
	}

	return s3.New(s3.Options{}, opts...)
}
