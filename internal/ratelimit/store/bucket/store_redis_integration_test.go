//go:build integration

package bucket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"familytree/internal/ratelimit/models"
	"familytree/internal/ratelimit/store/bucket"
	"familytree/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
}

func TestRedisBucketStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = bucket.NewRedisBucketStore(s.redis.Client.Client)
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisBucketStoreSuite) TestAllowUpToLimit() {
	ctx := context.Background()
	limit := models.Limit{Requests: 3, Window: time.Minute}
	key := models.IPKey(models.ClassAuth, "10.0.0.1")

	for i := range limit.Requests {
		res, err := s.store.Allow(ctx, key, limit)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(limit.Requests-i-1, res.Remaining)
	}

	res, err := s.store.Allow(ctx, key, limit)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Positive(res.RetryAfter)

	ttl, err := s.redis.Client.PTTL(ctx, key).Result()
	s.Require().NoError(err)
	s.Positive(ttl)
}

func (s *RedisBucketStoreSuite) TestWindowExpires() {
	ctx := context.Background()
	limit := models.Limit{Requests: 1, Window: time.Second}
	key := models.IPKey(models.ClassAuth, "10.0.0.2")

	res, err := s.store.Allow(ctx, key, limit)
	s.Require().NoError(err)
	s.True(res.Allowed)

	s.Eventually(func() bool {
		res, err := s.store.Allow(ctx, key, limit)
		return err == nil && res.Allowed
	}, 5*time.Second, 200*time.Millisecond)
}

func (s *RedisBucketStoreSuite) TestKeyExpiresWithWindow() {
	ctx := context.Background()
	limit := models.Limit{Requests: 5, Window: time.Minute}
	key := models.UserKey(models.ClassWrite, "u1")

	_, err := s.store.Allow(ctx, key, limit)
	s.Require().NoError(err)

	ttl, err := s.redis.Client.PTTL(ctx, key).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, limit.Window)
}
