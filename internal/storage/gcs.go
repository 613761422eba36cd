package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSOptions configures a GCSStore.
type GCSOptions struct {
	Bucket string
	// CDNDomain, when set, wins over every other public URL form.
	CDNDomain string
	// PublicBaseURL is used as {PublicBaseURL}/{bucket}/{key}, e.g. for an emulator.
	PublicBaseURL string
	// Endpoint overrides the API endpoint and disables authentication.
	Endpoint string
}

// GCSStore publishes objects to a Google Cloud Storage bucket.
type GCSStore struct {
	client        *storage.Client
	bucket        string
	cdnDomain     string
	publicBaseURL string
}

func NewGCSStore(ctx context.Context, opts GCSOptions) (*GCSStore, error) {
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, errors.New("storage: gcs bucket is required")
	}
	clientOpts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		clientOpts = []option.ClientOption{option.WithEndpoint(endpoint), option.WithoutAuthentication()}
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: create gcs client: %w", err)
	}
	return &GCSStore{
		client:        client,
		bucket:        bucket,
		cdnDomain:     strings.TrimSpace(opts.CDNDomain),
		publicBaseURL: strings.TrimRight(strings.TrimSpace(opts.PublicBaseURL), "/"),
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if w.ContentType == "" {
		w.ContentType = contentTypeForKey(key)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("storage: write gcs object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: close gcs writer: %w", err)
	}
	return nil
}

func (s *GCSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open gcs object: %w", err)
	}
	return r, nil
}

func (s *GCSStore) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
	}
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}

// KeyFromURL returns the key of a URL produced by PublicURL.
func (s *GCSStore) KeyFromURL(rawURL string) (string, bool) {
	prefix := s.PublicURL("")
	if !strings.HasPrefix(rawURL, prefix) || len(rawURL) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(rawURL, prefix), true
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

var _ ObjectStore = (*GCSStore)(nil)
