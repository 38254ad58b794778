package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"familytree/internal/ratelimit/models"
)

var testLimit = models.Limit{Requests: 3, Window: time.Minute}

type InMemoryBucketStoreSuite struct {
	suite.Suite
	now   time.Time
	store *InMemoryBucketStore
	ctx   context.Context
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBucketStoreSuite))
}

func (s *InMemoryBucketStoreSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemoryBucketStore(WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

func (s *InMemoryBucketStoreSuite) TestAllow() {
	s.Run("requests up to the limit are allowed", func() {
		for i := range testLimit.Requests {
			res, err := s.store.Allow(s.ctx, "k:up-to", testLimit)
			s.Require().NoError(err)
			s.True(res.Allowed)
			s.Equal(testLimit.Requests-i-1, res.Remaining)
			s.Equal(testLimit.Requests, res.Limit)
		}
	})

	s.Run("request over the limit is denied with retry hint", func() {
		for range testLimit.Requests {
			_, err := s.store.Allow(s.ctx, "k:over", testLimit)
			s.Require().NoError(err)
		}
		s.now = s.now.Add(10 * time.Second)
		res, err := s.store.Allow(s.ctx, "k:over", testLimit)
		s.Require().NoError(err)
		s.False(res.Allowed)
		s.Zero(res.Remaining)
		s.Equal(50, res.RetryAfter)
	})

	s.Run("keys are independent", func() {
		for range testLimit.Requests {
			_, _ = s.store.Allow(s.ctx, "k:a", testLimit)
		}
		res, err := s.store.Allow(s.ctx, "k:b", testLimit)
		s.Require().NoError(err)
		s.True(res.Allowed)
	})
}

func (s *InMemoryBucketStoreSuite) TestWindowSlides() {
	for range testLimit.Requests {
		_, err := s.store.Allow(s.ctx, "k:slide", testLimit)
		s.Require().NoError(err)
	}
	s.now = s.now.Add(testLimit.Window + time.Second)

	res, err := s.store.Allow(s.ctx, "k:slide", testLimit)
	s.Require().NoError(err)
	s.True(res.Allowed)
	s.Equal(testLimit.Requests-1, res.Remaining)
}

func (s *InMemoryBucketStoreSuite) TestIdleBucketsAreDropped() {
	for _, key := range []string{"rl:ip:auth:10.0.0.1", "rl:ip:auth:10.0.0.2"} {
		_, err := s.store.Allow(s.ctx, key, testLimit)
		s.Require().NoError(err)
	}
	s.Equal(2, s.bucketCount())

	s.now = s.now.Add(testLimit.Window + sweepInterval)
	_, err := s.store.Allow(s.ctx, "rl:ip:auth:10.0.0.3", testLimit)
	s.Require().NoError(err)
	s.Equal(1, s.bucketCount())
}

func (s *InMemoryBucketStoreSuite) TestActiveBucketSurvivesSweep() {
	_, err := s.store.Allow(s.ctx, "k:active", testLimit)
	s.Require().NoError(err)

	s.now = s.now.Add(sweepInterval - time.Second)
	_, err = s.store.Allow(s.ctx, "k:active", testLimit)
	s.Require().NoError(err)

	s.now = s.now.Add(2 * time.Second)
	res, err := s.store.Allow(s.ctx, "k:active", testLimit)
	s.Require().NoError(err)
	s.Equal(testLimit.Requests-2, res.Remaining)
}

func (s *InMemoryBucketStoreSuite) bucketCount() int {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return len(s.store.buckets)
}

func (s *InMemoryBucketStoreSuite) TestConcurrentCallersNeverExceedLimit() {
	limit := models.Limit{Requests: 50, Window: time.Minute}
	store := NewInMemoryBucketStore()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := store.Allow(s.ctx, "k:concurrent", limit)
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(limit.Requests, allowed)
}
