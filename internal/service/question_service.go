package service

import (
	"context"
	"encoding/json"
	"time"

	"self-analysis/internal/cache"
	"self-analysis/internal/config"
	"self-analysis/internal/domain"
	"self-analysis/internal/dto"
	"self-analysis/internal/logger"

	"go.uber.org/zap"
)

const CatalogCacheExpiration = 10 * time.Minute

// QuestionService defines the interface for question catalog operations
type QuestionService interface {
	ListQuestions(ctx context.Context, filters dto.QuestionFilters) ([]dto.QuestionResponse, error)
	GetQuestion(ctx context.Context, id string, includeInactive bool) (*dto.QuestionResponse, error)
	GetNextQuestion(ctx context.Context, userID string) (*dto.NextQuestionResponse, error)
	GetProgress(ctx context.Context, userID string) (*dto.ProgressResponse, error)
	InvalidateCatalog(ctx context.Context) error
}

// questionService implements QuestionService
type questionService struct {
	questionRepo domain.QuestionRepository
	answerRepo   domain.AnswerRepository
	cache        domain.Cache
	cfg          *config.Config
}

// NewQuestionService creates a new instance of questionService
func NewQuestionService(
	questionRepo domain.QuestionRepository,
	answerRepo domain.AnswerRepository,
	cacheImpl domain.Cache,
	cfg *config.Config,
) QuestionService {
	return &questionService{
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		cache:        cacheImpl,
		cfg:          cfg,
	}
}

func catalogCacheKey() string {
	return cache.GenerateCacheKey("question", "catalog", "active")
}

func (s *questionService) catalogTTL() time.Duration {
	if s.cfg != nil && s.cfg.CacheTTLs.Catalog > 0 {
		return s.cfg.CacheTTLs.Catalog
	}
	return CatalogCacheExpiration
}

// activeQuestions returns the active catalog sorted by (display_order, id),
// read through the Redis catalog cache. A cache failure falls back to the
// repository; the catalog must stay readable without Redis.
func (s *questionService) activeQuestions(ctx context.Context) ([]domain.Question, error) {
	key := catalogCacheKey()
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			var questions []domain.Question
			if errUnmarshal := json.Unmarshal([]byte(cached), &questions); errUnmarshal == nil {
				return questions, nil
			}
			logger.Get().Warn("QuestionService: Failed to unmarshal cached catalog, falling back to repository",
				zap.String("key", key))
		} else if err != domain.ErrCacheMiss {
			logger.Get().Warn("QuestionService: Catalog cache read failed, falling back to repository",
				zap.Error(err), zap.String("key", key))
		}
	}

	questions, err := s.questionRepo.GetActiveQuestions(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get active questions", err)
	}

	if s.cache != nil {
		if data, errMarshal := json.Marshal(questions); errMarshal == nil {
			if errSet := s.cache.Set(ctx, key, string(data), s.catalogTTL()); errSet != nil {
				logger.Get().Warn("QuestionService: Failed to cache catalog",
					zap.Error(errSet), zap.String("key", key))
			}
		}
	}
	return questions, nil
}

// ListQuestions implements QuestionService
func (s *questionService) ListQuestions(ctx context.Context, filters dto.QuestionFilters) ([]dto.QuestionResponse, error) {
	// The unfiltered active list is the hot path (every client loads it on
	// start), so it is served from the catalog cache.
	if filters.Category == "" && filters.ParentID == "" && !filters.IncludeInactive {
		questions, err := s.activeQuestions(ctx)
		if err != nil {
			return nil, err
		}
		return questionsToResponses(questions), nil
	}

	questions, err := s.questionRepo.ListQuestions(ctx, filters)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list questions", err)
	}
	return questionsToResponses(questions), nil
}

// GetQuestion implements QuestionService. Inactive questions are reported as
// not found unless the caller may see them.
func (s *questionService) GetQuestion(ctx context.Context, id string, includeInactive bool) (*dto.QuestionResponse, error) {
	question, err := s.questionRepo.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get question", err)
	}
	if question == nil {
		return nil, domain.NewQuestionNotFoundError(id)
	}
	if !question.IsActive && !includeInactive {
		return nil, domain.NewQuestionNotFoundError(id)
	}
	return questionToResponse(question), nil
}

// GetNextQuestion implements QuestionService
func (s *questionService) GetNextQuestion(ctx context.Context, userID string) (*dto.NextQuestionResponse, error) {
	answered, err := s.answerRepo.GetAnsweredQuestionIDs(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get answered question IDs", err)
	}
	questions, err := s.activeQuestions(ctx)
	if err != nil {
		return nil, err
	}

	next := domain.NextEligible(answered, questions)
	progress := domain.ComputeProgress(answered, questions)

	return &dto.NextQuestionResponse{
		Question: questionToResponse(next),
		Complete: next == nil,
		Progress: progressToResponse(progress),
	}, nil
}

// GetProgress implements QuestionService
func (s *questionService) GetProgress(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
	answered, err := s.answerRepo.GetAnsweredQuestionIDs(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get answered question IDs", err)
	}
	questions, err := s.activeQuestions(ctx)
	if err != nil {
		return nil, err
	}

	progress := progressToResponse(domain.ComputeProgress(answered, questions))
	return &progress, nil
}

// InvalidateCatalog drops the cached active-question list. Called after
// catalog writes (seeding) so clients see the new questions immediately.
func (s *questionService) InvalidateCatalog(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	key := catalogCacheKey()
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Get().Error("QuestionService: Failed to invalidate catalog cache",
			zap.Error(err), zap.String("key", key))
		return domain.NewInternalError("failed to invalidate catalog cache", err)
	}
	logger.Get().Info("QuestionService: Catalog cache invalidated", zap.String("key", key))
	return nil
}
