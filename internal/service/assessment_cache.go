package service

import (
	"context"
	"encoding/json"
	"time"

	"self-analysis/internal/config"
	"self-analysis/internal/domain"
	"self-analysis/internal/logger"
	"self-analysis/internal/util" // For CosineSimilarity

	"go.uber.org/zap"
)

const (
	AssessmentCachePrefix     = "assessments:"
	AssessmentCacheExpiration = 24 * time.Hour
)

// CachedAssessment defines the structure for cached trait assessments including embeddings
type CachedAssessment struct {
	Assessment *domain.TraitAssessment `json:"assessment"`
	Embedding  []float32               `json:"embedding"`
	AnswerText string                  `json:"answer_text,omitempty"` // For debugging/logging
}

// AssessmentCacheService defines the interface for trait assessment caching operations
type AssessmentCacheService interface {
	GetAssessmentFromCache(ctx context.Context, questionID string, answerEmbedding []float32, answerText string) (*domain.TraitAssessment, error)
	PutAssessmentToCache(ctx context.Context, questionID string, answerText string, answerEmbedding []float32, assessment *domain.TraitAssessment) error
}

// assessmentCacheServiceImpl implements AssessmentCacheService
type assessmentCacheServiceImpl struct {
	cache domain.Cache
	cfg   *config.Config
}

// NewAssessmentCacheService creates a new instance of assessmentCacheServiceImpl
func NewAssessmentCacheService(cache domain.Cache, cfg *config.Config) AssessmentCacheService {
	return &assessmentCacheServiceImpl{
		cache: cache,
		cfg:   cfg,
	}
}

func (s *assessmentCacheServiceImpl) expiration() time.Duration {
	if s.cfg != nil && s.cfg.CacheTTLs.Assessments > 0 {
		return s.cfg.CacheTTLs.Assessments
	}
	return AssessmentCacheExpiration
}

// GetAssessmentFromCache retrieves a trait assessment from the cache if a
// sufficiently similar answer to the same question was already scored.
func (s *assessmentCacheServiceImpl) GetAssessmentFromCache(ctx context.Context, questionID string, answerEmbedding []float32, answerText string) (*domain.TraitAssessment, error) {
	if s.cache == nil || s.cfg == nil {
		logger.Get().Debug("AssessmentCacheService: Cache or config not available, skipping cache lookup.", zap.String("questionID", questionID))
		return nil, nil // Not an error, just no cache service available
	}
	if len(answerEmbedding) == 0 {
		logger.Get().Warn("AssessmentCacheService: GetAssessmentFromCache called with empty answerEmbedding", zap.String("questionID", questionID))
		return nil, nil
	}

	cacheKey := AssessmentCachePrefix + questionID
	cachedAnswersMap, err := s.cache.HGetAll(ctx, cacheKey)
	if err != nil {
		if err == domain.ErrCacheMiss {
			logger.Get().Debug("AssessmentCacheService: Cache miss (key not found)", zap.String("key", cacheKey), zap.String("questionID", questionID))
			return nil, nil
		}
		logger.Get().Error("AssessmentCacheService: Cache HGetAll failed", zap.Error(err), zap.String("key", cacheKey), zap.String("questionID", questionID))
		return nil, err // Actual cache error
	}

	if len(cachedAnswersMap) == 0 {
		logger.Get().Debug("AssessmentCacheService: Cache miss (empty map)", zap.String("key", cacheKey), zap.String("questionID", questionID))
		return nil, nil
	}

	for _, cachedDataStr := range cachedAnswersMap {
		var cachedEntry CachedAssessment
		if errUnmarshal := json.Unmarshal([]byte(cachedDataStr), &cachedEntry); errUnmarshal != nil {
			logger.Get().Warn("AssessmentCacheService: Failed to unmarshal cached assessment",
				zap.Error(errUnmarshal),
				zap.String("questionID", questionID),
				zap.String("answerText", answerText))
			continue // Skip this entry
		}

		if cachedEntry.Assessment == nil || len(cachedEntry.Embedding) == 0 {
			logger.Get().Debug("AssessmentCacheService: Skipping cached entry due to missing assessment or embedding",
				zap.String("questionID", questionID),
				zap.String("cachedAnswerText", cachedEntry.AnswerText))
			continue // Skip this entry
		}

		similarity, errSim := util.CosineSimilarity(answerEmbedding, cachedEntry.Embedding)
		if errSim != nil {
			logger.Get().Warn("AssessmentCacheService: Failed to calculate cosine similarity for cached assessment",
				zap.Error(errSim),
				zap.String("questionID", questionID),
				zap.String("answerText", answerText))
			continue // Skip this entry
		}

		if similarity >= s.cfg.Embedding.SimilarityThreshold {
			logger.Get().Info("AssessmentCacheService: Cache hit - Found similar answer",
				zap.String("questionID", questionID),
				zap.String("answerText", answerText),
				zap.Float64("similarity", similarity),
				zap.String("cachedAnswerText", cachedEntry.AnswerText))
			return cachedEntry.Assessment, nil // Cache Hit
		}
	}

	logger.Get().Debug("AssessmentCacheService: No sufficiently similar answer found in cache", zap.String("questionID", questionID), zap.String("answerText", answerText))
	return nil, nil // Cache Miss (no similar answer found)
}

// PutAssessmentToCache puts a trait assessment into the cache.
func (s *assessmentCacheServiceImpl) PutAssessmentToCache(ctx context.Context, questionID string, answerText string, answerEmbedding []float32, assessment *domain.TraitAssessment) error {
	if s.cache == nil {
		logger.Get().Debug("AssessmentCacheService: Cache not available, skipping cache write.", zap.String("questionID", questionID))
		return nil // Not an error, just no cache service available
	}
	if len(answerEmbedding) == 0 {
		logger.Get().Warn("AssessmentCacheService: PutAssessmentToCache called with empty answerEmbedding, not caching.", zap.String("questionID", questionID))
		return nil // Don't cache if embedding is missing
	}
	if assessment == nil {
		logger.Get().Warn("AssessmentCacheService: PutAssessmentToCache called with nil assessment, not caching.", zap.String("questionID", questionID))
		return nil
	}

	cacheKey := AssessmentCachePrefix + questionID
	cachedEntry := CachedAssessment{
		Assessment: assessment,
		Embedding:  answerEmbedding,
		AnswerText: answerText,
	}

	cachedJSON, errMarshal := json.Marshal(cachedEntry)
	if errMarshal != nil {
		logger.Get().Error("AssessmentCacheService: Failed to marshal assessment for caching",
			zap.Error(errMarshal),
			zap.String("questionID", questionID))
		return errMarshal
	}

	if err := s.cache.HSet(ctx, cacheKey, answerText, string(cachedJSON)); err != nil {
		logger.Get().Error("AssessmentCacheService: Failed to cache assessment (HSet)",
			zap.Error(err),
			zap.String("questionID", questionID))
		return err
	}

	if err := s.cache.Expire(ctx, cacheKey, s.expiration()); err != nil {
		logger.Get().Error("AssessmentCacheService: Failed to set cache expiration",
			zap.Error(err),
			zap.String("questionID", questionID))
		return err // Return the error, even if HSet succeeded.
	}

	logger.Get().Info("AssessmentCacheService: Trait assessment and embedding cached successfully",
		zap.String("questionID", questionID),
		zap.String("answerText", answerText))
	return nil
}
