package photo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"

	dErrors "familytree/pkg/domain-errors"
	"familytree/pkg/platform/sentinel"
)

type StoreSuite struct {
	suite.Suite
	bucket *blob.Bucket
	store  *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.bucket = memblob.OpenBucket(nil)
	s.store = NewStore(s.bucket, "https://storage.googleapis.com/family-photos/", WithMaxBytes(16))
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.bucket.Close())
}

func (s *StoreSuite) TestUpload() {
	ctx := context.Background()

	s.Run("stores the object under a fresh key", func() {
		up, err := s.store.Upload(ctx, "Grandma.JPG", "image/jpeg", strings.NewReader("jpegbytes"))
		s.Require().NoError(err)
		s.True(strings.HasPrefix(up.Key, "photo-"))
		s.True(strings.HasSuffix(up.Key, ".jpg"))
		s.Equal("https://storage.googleapis.com/family-photos/"+up.Key, up.PublicURL)

		data, err := s.bucket.ReadAll(ctx, up.Key)
		s.Require().NoError(err)
		s.Equal("jpegbytes", string(data))

		attrs, err := s.bucket.Attributes(ctx, up.Key)
		s.Require().NoError(err)
		s.Equal("image/jpeg", attrs.ContentType)
	})

	s.Run("two uploads of the same file get distinct keys", func() {
		a, err := s.store.Upload(ctx, "a.png", "image/png", strings.NewReader("x"))
		s.Require().NoError(err)
		b, err := s.store.Upload(ctx, "a.png", "image/png", strings.NewReader("x"))
		s.Require().NoError(err)
		s.NotEqual(a.Key, b.Key)
	})

	s.Run("rejects non-image extensions without writing", func() {
		before := s.countObjects(ctx)
		_, err := s.store.Upload(ctx, "notes.txt", "text/plain", strings.NewReader("hi"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(before, s.countObjects(ctx))
	})

	s.Run("rejects oversize bodies without writing", func() {
		before := s.countObjects(ctx)
		_, err := s.store.Upload(ctx, "big.gif", "image/gif", bytes.NewReader(make([]byte, 17)))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(before, s.countObjects(ctx))
	})

	s.Run("accepts a body exactly at the limit", func() {
		_, err := s.store.Upload(ctx, "edge.gif", "image/gif", bytes.NewReader(make([]byte, 16)))
		s.NoError(err)
	})

	s.Run("cancelled upload leaves no object behind", func() {
		before := s.countObjects(ctx)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.store.Upload(cctx, "late.png", "image/png", strings.NewReader("x"))
		s.Error(err)
		s.Equal(before, s.countObjects(ctx))
	})

	s.Run("rejects an empty body", func() {
		_, err := s.store.Upload(ctx, "empty.png", "image/png", strings.NewReader(""))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *StoreSuite) TestDelete() {
	ctx := context.Background()
	up, err := s.store.Upload(ctx, "a.jpeg", "image/jpeg", strings.NewReader("x"))
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(ctx, up.Key))
	exists, err := s.bucket.Exists(ctx, up.Key)
	s.Require().NoError(err)
	s.False(exists)

	err = s.store.Delete(ctx, up.Key)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreSuite) TestDefaultLimit() {
	s.Equal(DefaultMaxBytes, NewStore(s.bucket, "").MaxBytes())
	s.Equal("photo-x.png", NewStore(s.bucket, "").PublicURL("photo-x.png"))
}

func (s *StoreSuite) countObjects(ctx context.Context) int {
	iter := s.bucket.List(nil)
	n := 0
	for {
		_, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			return n
		}
		s.Require().NoError(err)
		n++
	}
}
