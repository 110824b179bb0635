package service

import (
	"context"
	"time"

	"self-analysis/internal/domain"
	"self-analysis/internal/dto"
	"self-analysis/internal/repository"
	"self-analysis/internal/repository/models"

	"github.com/stretchr/testify/mock"
)

// --- MockQuestionRepository ---

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetQuestionByID(ctx context.Context, id string) (*domain.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListQuestions(ctx context.Context, filters dto.QuestionFilters) ([]domain.Question, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) SaveQuestion(ctx context.Context, question *domain.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) SaveOption(ctx context.Context, option *domain.Option) error {
	args := m.Called(ctx, option)
	return args.Error(0)
}

// --- MockAnswerRepository ---

type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) UpsertAnswer(ctx context.Context, answer *domain.Answer) (*domain.Answer, error) {
	args := m.Called(ctx, answer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Answer), args.Error(1)
}

func (m *MockAnswerRepository) GetAnswerByID(ctx context.Context, id string) (*domain.Answer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Answer), args.Error(1)
}

func (m *MockAnswerRepository) GetAnswersByUserID(ctx context.Context, userID string) ([]domain.Answer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Answer), args.Error(1)
}

func (m *MockAnswerRepository) GetAnsweredQuestionIDs(ctx context.Context, userID string) (map[string]bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockAnswerRepository) ListAnswersByUserID(ctx context.Context, userID string, pagination dto.Pagination) ([]domain.Answer, int, error) {
	args := m.Called(ctx, userID, pagination)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Answer), args.Int(1), args.Error(2)
}

func (m *MockAnswerRepository) DeleteAnswer(ctx context.Context, userID string, answerID string) error {
	args := m.Called(ctx, userID, answerID)
	return args.Error(0)
}

// --- MockTraitRepository ---

type MockTraitRepository struct {
	mock.Mock
}

func (m *MockTraitRepository) ListTraits(ctx context.Context, filters dto.TraitFilters) ([]domain.Trait, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Trait), args.Error(1)
}

func (m *MockTraitRepository) GetTraitsByNames(ctx context.Context, names []string) ([]domain.Trait, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Trait), args.Error(1)
}

func (m *MockTraitRepository) SaveTrait(ctx context.Context, trait *domain.Trait) error {
	args := m.Called(ctx, trait)
	return args.Error(0)
}

// --- MockSelfAnalysisRepository ---

type MockSelfAnalysisRepository struct {
	mock.Mock
}

func (m *MockSelfAnalysisRepository) GetByUserID(ctx context.Context, userID string) (*domain.SelfAnalysis, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SelfAnalysis), args.Error(1)
}

func (m *MockSelfAnalysisRepository) Save(ctx context.Context, analysis *domain.SelfAnalysis) error {
	args := m.Called(ctx, analysis)
	return args.Error(0)
}

// --- MockTransactionManager ---

// MockTransactionManager runs the callback with the given context when the
// expectation returns nil, mirroring a committed transaction. Configure an
// error to simulate a transaction that failed before fn ran.
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// --- MockCompletenessValidator ---

type MockCompletenessValidator struct {
	mock.Mock
}

func (m *MockCompletenessValidator) CheckCompleteness(ctx context.Context, req domain.AssessmentRequest) (*domain.CompletenessVerdict, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompletenessVerdict), args.Error(1)
}

// --- MockTraitScorer ---

type MockTraitScorer struct {
	mock.Mock
}

func (m *MockTraitScorer) ScoreTraits(ctx context.Context, req domain.ScoringRequest) (*domain.TraitAssessment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TraitAssessment), args.Error(1)
}

// --- MockEmbeddingService ---

type MockEmbeddingService struct {
	mock.Mock
}

func (m *MockEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// --- MockCache ---

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockCache) HSet(ctx context.Context, key string, field string, value string) error {
	args := m.Called(ctx, key, field, value)
	return args.Error(0)
}

func (m *MockCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	args := m.Called(ctx, key, expiration)
	return args.Error(0)
}

// --- MockAssessmentCacheService ---

type MockAssessmentCacheService struct {
	mock.Mock
}

func (m *MockAssessmentCacheService) GetAssessmentFromCache(ctx context.Context, questionID string, answerEmbedding []float32, answerText string) (*domain.TraitAssessment, error) {
	args := m.Called(ctx, questionID, answerEmbedding, answerText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TraitAssessment), args.Error(1)
}

func (m *MockAssessmentCacheService) PutAssessmentToCache(ctx context.Context, questionID string, answerText string, answerEmbedding []float32, assessment *domain.TraitAssessment) error {
	args := m.Called(ctx, questionID, answerText, answerEmbedding, assessment)
	return args.Error(0)
}

// --- MockTraitService ---

type MockTraitService struct {
	mock.Mock
}

func (m *MockTraitService) ListTraits(ctx context.Context, filters dto.TraitFilters) ([]dto.TraitResponse, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.TraitResponse), args.Error(1)
}

func (m *MockTraitService) CheckOverlay(ctx context.Context, positive, negative domain.TraitScores) []string {
	args := m.Called(ctx, positive, negative)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

// --- MockQuestionService ---

type MockQuestionService struct {
	mock.Mock
}

func (m *MockQuestionService) ListQuestions(ctx context.Context, filters dto.QuestionFilters) ([]dto.QuestionResponse, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.QuestionResponse), args.Error(1)
}

func (m *MockQuestionService) GetQuestion(ctx context.Context, id string, includeInactive bool) (*dto.QuestionResponse, error) {
	args := m.Called(ctx, id, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QuestionResponse), args.Error(1)
}

func (m *MockQuestionService) GetNextQuestion(ctx context.Context, userID string) (*dto.NextQuestionResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.NextQuestionResponse), args.Error(1)
}

func (m *MockQuestionService) GetProgress(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProgressResponse), args.Error(1)
}

func (m *MockQuestionService) InvalidateCatalog(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockUserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// Interface conformance checks
var _ domain.QuestionRepository = (*MockQuestionRepository)(nil)
var _ domain.AnswerRepository = (*MockAnswerRepository)(nil)
var _ domain.TraitRepository = (*MockTraitRepository)(nil)
var _ domain.SelfAnalysisRepository = (*MockSelfAnalysisRepository)(nil)
var _ domain.TransactionManager = (*MockTransactionManager)(nil)
var _ domain.CompletenessValidator = (*MockCompletenessValidator)(nil)
var _ domain.TraitScorer = (*MockTraitScorer)(nil)
var _ domain.EmbeddingService = (*MockEmbeddingService)(nil)
var _ domain.Cache = (*MockCache)(nil)
var _ AssessmentCacheService = (*MockAssessmentCacheService)(nil)
var _ TraitService = (*MockTraitService)(nil)
var _ QuestionService = (*MockQuestionService)(nil)
var _ repository.UserRepository = (*MockUserRepository)(nil)
