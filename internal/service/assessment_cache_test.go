package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"self-analysis/internal/config"
	"self-analysis/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func assessmentCacheConfig(threshold float64) *config.Config {
	cfg := &config.Config{}
	cfg.Embedding.SimilarityThreshold = threshold
	return cfg
}

func cachedEntryJSON(t *testing.T, embedding []float32, assessment *domain.TraitAssessment) string {
	t.Helper()
	data, err := json.Marshal(CachedAssessment{
		Assessment: assessment,
		Embedding:  embedding,
		AnswerText: "an earlier answer",
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return string(data)
}

func TestGetAssessmentFromCache(t *testing.T) {
	const questionID = "q-cache"
	cacheKey := AssessmentCachePrefix + questionID
	assessment := &domain.TraitAssessment{
		Positive: domain.TraitScores{"clarity": 75},
		Negative: domain.TraitScores{},
		Quote:    "an earlier quote",
	}

	t.Run("similar answer hits", func(t *testing.T) {
		mockCache := new(MockCache)
		svc := NewAssessmentCacheService(mockCache, assessmentCacheConfig(0.9))

		stored := cachedEntryJSON(t, []float32{1, 0}, assessment)
		mockCache.On("HGetAll", mock.Anything, cacheKey).
			Return(map[string]string{"an earlier answer": stored}, nil).Once()

		got, err := svc.GetAssessmentFromCache(context.Background(), questionID, []float32{1, 0}, "a new but similar answer")
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, assessment.Quote, got.Quote)
	})

	t.Run("dissimilar answer misses", func(t *testing.T) {
		mockCache := new(MockCache)
		svc := NewAssessmentCacheService(mockCache, assessmentCacheConfig(0.9))

		stored := cachedEntryJSON(t, []float32{1, 0}, assessment)
		mockCache.On("HGetAll", mock.Anything, cacheKey).
			Return(map[string]string{"an earlier answer": stored}, nil).Once()

		got, err := svc.GetAssessmentFromCache(context.Background(), questionID, []float32{0, 1}, "an unrelated answer")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("absent key is a miss, not an error", func(t *testing.T) {
		mockCache := new(MockCache)
		svc := NewAssessmentCacheService(mockCache, assessmentCacheConfig(0.9))

		mockCache.On("HGetAll", mock.Anything, cacheKey).Return(nil, domain.ErrCacheMiss).Once()

		got, err := svc.GetAssessmentFromCache(context.Background(), questionID, []float32{1, 0}, "any")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("backend failure is an error", func(t *testing.T) {
		mockCache := new(MockCache)
		svc := NewAssessmentCacheService(mockCache, assessmentCacheConfig(0.9))

		backendErr := errors.New("redis connection reset")
		mockCache.On("HGetAll", mock.Anything, cacheKey).Return(nil, backendErr).Once()

		got, err := svc.GetAssessmentFromCache(context.Background(), questionID, []float32{1, 0}, "any")
		assert.ErrorIs(t, err, backendErr)
		assert.Nil(t, got)
	})

	t.Run("empty embedding skips the lookup", func(t *testing.T) {
		mockCache := new(MockCache)
		svc := NewAssessmentCacheService(mockCache, assessmentCacheConfig(0.9))

		got, err := svc.GetAssessmentFromCache(context.Background(), questionID, nil, "any")
		assert.NoError(t, err)
		assert.Nil(t, got)
		mockCache.AssertNotCalled(t, "HGetAll", mock.Anything, mock.Anything)
	})

	t.Run("nil cache or config yields a silent miss", func(t *testing.T) {
		svc := NewAssessmentCacheService(nil, assessmentCacheConfig(0.9))
		got, err := svc.GetAssessmentFromCache(context.Background(), questionID, []float32{1}, "any")
		assert.NoError(t, err)
		assert.Nil(t, got)

		svc = NewAssessmentCacheService(new(MockCache), nil)
		got, err = svc.GetAssessmentFromCache(context.Background(), questionID, []float32{1}, "any")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("corrupt entries are skipped", func(t *testing.T) {
		mockCache := new(MockCache)
		svc := NewAssessmentCacheService(mockCache, assessmentCacheConfig(0.9))

		stored := cachedEntryJSON(t, []float32{1, 0}, assessment)
		mockCache.On("HGetAll", mock.Anything, cacheKey).Return(map[string]string{
			"broken": "{not json",
			"good":   stored,
		}, nil).Once()

		got, err := svc.GetAssessmentFromCache(context.Background(), questionID, []float32{1, 0}, "any")
		assert.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("entries without embeddings are skipped", func(t *testing.T) {
		mockCache := new(MockCache)
		svc := NewAssessmentCacheService(mockCache, assessmentCacheConfig(0.9))

		stored := cachedEntryJSON(t, nil, assessment)
		mockCache.On("HGetAll", mock.Anything, cacheKey).
			Return(map[string]string{"no-embedding": stored}, nil).Once()

		got, err := svc.GetAssessmentFromCache(context.Background(), questionID, []float32{1, 0}, "any")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestPutAssessmentToCache(t *testing.T) {
	const questionID = "q-cache"
	cacheKey := AssessmentCachePrefix + questionID
	assessment := &domain.TraitAssessment{
		Positive: domain.TraitScores{"clarity": 75},
		Negative: domain.TraitScores{},
	}

	t.Run("stores the entry and refreshes the TTL", func(t *testing.T) {
		mockCache := new(MockCache)
		svc := NewAssessmentCacheService(mockCache, nil)

		mockCache.On("HSet", mock.Anything, cacheKey, "the answer", mock.Anything).Return(nil).Once()
		mockCache.On("Expire", mock.Anything, cacheKey, AssessmentCacheExpiration).Return(nil).Once()

		err := svc.PutAssessmentToCache(context.Background(), questionID, "the answer", []float32{1, 0}, assessment)
		assert.NoError(t, err)
		mockCache.AssertExpectations(t)
	})

	t.Run("missing embedding or assessment is not cached", func(t *testing.T) {
		mockCache := new(MockCache)
		svc := NewAssessmentCacheService(mockCache, nil)

		assert.NoError(t, svc.PutAssessmentToCache(context.Background(), questionID, "a", nil, assessment))
		assert.NoError(t, svc.PutAssessmentToCache(context.Background(), questionID, "a", []float32{1}, nil))
		mockCache.AssertNotCalled(t, "HSet", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("HSet failure surfaces", func(t *testing.T) {
		mockCache := new(MockCache)
		svc := NewAssessmentCacheService(mockCache, nil)

		hsetErr := errors.New("redis write failed")
		mockCache.On("HSet", mock.Anything, cacheKey, "a", mock.Anything).Return(hsetErr).Once()

		err := svc.PutAssessmentToCache(context.Background(), questionID, "a", []float32{1}, assessment)
		assert.ErrorIs(t, err, hsetErr)
		mockCache.AssertNotCalled(t, "Expire", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Expire failure surfaces", func(t *testing.T) {
		mockCache := new(MockCache)
		svc := NewAssessmentCacheService(mockCache, nil)

		expireErr := errors.New("redis expire failed")
		mockCache.On("HSet", mock.Anything, cacheKey, "a", mock.Anything).Return(nil).Once()
		mockCache.On("Expire", mock.Anything, cacheKey, mock.Anything).Return(expireErr).Once()

		err := svc.PutAssessmentToCache(context.Background(), questionID, "a", []float32{1}, assessment)
		assert.ErrorIs(t, err, expireErr)
	})

	t.Run("nil cache is a no-op", func(t *testing.T) {
		svc := NewAssessmentCacheService(nil, nil)
		err := svc.PutAssessmentToCache(context.Background(), questionID, "a", []float32{1}, assessment)
		assert.NoError(t, err)
	})
}
