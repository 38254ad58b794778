// Package photo stores person photos in an object bucket and serves the
// upload route.
package photo

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	dErrors "familytree/pkg/domain-errors"
	"familytree/pkg/platform/sentinel"
)

// DefaultMaxBytes is the largest accepted upload.
const DefaultMaxBytes int64 = 5 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Uploaded describes a stored photo. Key is what persons reference; PublicURL
// is what browsers fetch.
type Uploaded struct {
	Key       string
	PublicURL string
}

// Store writes and removes photo objects in a gocloud.dev bucket.
type Store struct {
	bucket        *blob.Bucket
	publicBaseURL string
	maxBytes      int64
}

type Option func(*Store)

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// NewStore wraps an open bucket. The caller owns the bucket and closes it.
func NewStore(bucket *blob.Bucket, publicBaseURL string, opts ...Option) *Store {
	s := &Store{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxBytes:      DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxBytes is the upload size limit in effect.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// Upload validates and stores r under a fresh key. Nothing is written when
// the extension is not an image type or the body exceeds the size limit.
func (s *Store) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*Uploaded, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, dErrors.New(dErrors.CodeValidation, "only image files are allowed")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read upload")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("photo must be at most %d bytes", s.maxBytes))
	}
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "no file uploaded")
	}

	key := "photo-" + uuid.NewString() + ext
	// Cancelling the writer's context before Close discards the object.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w, err := s.bucket.NewWriter(wctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("open photo writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		cancel()
		_ = w.Close()
		return nil, fmt.Errorf("write photo %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("commit photo %s: %w", key, err)
	}
	return &Uploaded{Key: key, PublicURL: s.PublicURL(key)}, nil
}

// PublicURL is the browser-facing location of key.
func (s *Store) PublicURL(key string) string {
	if s.publicBaseURL == "" {
		return key
	}
	return s.publicBaseURL + "/" + key
}

// Delete removes key. A missing object is sentinel.ErrNotFound.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return fmt.Errorf("photo %s: %w", key, sentinel.ErrNotFound)
		}
		return fmt.Errorf("delete photo %s: %w", key, err)
	}
	return nil
}
