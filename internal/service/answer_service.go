package service

import (
	"context"
	"database/sql"
	"errors"

	"self-analysis/internal/config"
	"self-analysis/internal/domain"
	"self-analysis/internal/dto"
	"self-analysis/internal/logger"

	"go.uber.org/zap"
)

// AnswerService defines the interface for the answer submission pipeline
type AnswerService interface {
	// SubmitAnswer runs the full pipeline for one answer: structural
	// validation, completeness check, trait scoring, upsert, aggregate
	// recalculation, and next-question resolution.
	SubmitAnswer(ctx context.Context, userID string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error)

	// ListMyAnswers returns a page of the user's answers, newest first.
	ListMyAnswers(ctx context.Context, userID string, pagination dto.Pagination) (*dto.MyAnswersResponse, error)

	// DeleteAnswer removes one of the user's answers and recalculates the
	// aggregate without it.
	DeleteAnswer(ctx context.Context, userID string, answerID string) error
}

// answerService implements AnswerService
type answerService struct {
	questionRepo     domain.QuestionRepository
	answerRepo       domain.AnswerRepository
	txManager        domain.TransactionManager
	validator        domain.CompletenessValidator
	scorer           domain.TraitScorer
	traitService     TraitService
	questionService  QuestionService
	embeddingService domain.EmbeddingService
	assessmentCache  AssessmentCacheService
	agg              *Aggregator
	cfg              *config.Config
}

// NewAnswerService creates a new instance of answerService
func NewAnswerService(
	questionRepo domain.QuestionRepository,
	answerRepo domain.AnswerRepository,
	txManager domain.TransactionManager,
	validator domain.CompletenessValidator,
	scorer domain.TraitScorer,
	traitService TraitService,
	questionService QuestionService,
	embeddingService domain.EmbeddingService,
	assessmentCache AssessmentCacheService,
	agg *Aggregator,
	cfg *config.Config,
) AnswerService {
	return &answerService{
		questionRepo:     questionRepo,
		answerRepo:       answerRepo,
		txManager:        txManager,
		validator:        validator,
		scorer:           scorer,
		traitService:     traitService,
		questionService:  questionService,
		embeddingService: embeddingService,
		assessmentCache:  assessmentCache,
		agg:              agg,
		cfg:              cfg,
	}
}

func (s *answerService) failOpen() bool {
	return s.cfg == nil || s.cfg.LLM.FailOpen
}

// SubmitAnswer implements AnswerService
func (s *answerService) SubmitAnswer(ctx context.Context, userID string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	question, err := s.questionRepo.GetQuestionByID(ctx, req.QuestionID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get question", err)
	}
	if question == nil || !question.IsActive {
		return nil, domain.NewQuestionNotFoundError(req.QuestionID)
	}

	payload, err := domain.NormalizeAnswerPayload(question, req.Answer)
	if err != nil {
		return nil, err
	}

	answer := domain.NewAnswer(userID, question.ID, payload)
	if err := answer.Validate(); err != nil {
		return nil, err
	}

	var assessment *domain.TraitAssessment
	if question.Type == domain.QuestionTypeText && payload != nil {
		// Every text answer with a payload goes through the completeness
		// gate, so whitespace-only text is rejected there rather than
		// persisted unscored.
		assessment, err = s.assessText(ctx, question, answer.Text())
		if err != nil {
			return nil, err
		}
	} else {
		// Choice answers (and skipped optional questions) carry no scored
		// traits of their own; client-supplied self-ratings are kept but
		// bounded like capability output.
		assessment = &domain.TraitAssessment{
			Positive: domain.TraitScores(req.PositiveValues),
			Negative: domain.TraitScores(req.NegativeValues),
			Quote:    req.Quote,
		}
		assessment.Sanitize()
	}
	answer.PositiveValues = assessment.Positive
	answer.NegativeValues = assessment.Negative
	answer.Quote = assessment.Quote

	// The upsert and the aggregate recalculation must not interleave with
	// another submission from the same user.
	release, err := s.agg.acquire(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Submission canceled while waiting for an earlier one", err)
	}
	defer release()

	var saved *domain.Answer
	errTx := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var errSave error
		saved, errSave = s.answerRepo.UpsertAnswer(txCtx, answer)
		if errSave != nil {
			return errSave
		}
		_, errRecalc := s.agg.recalculate(txCtx, userID)
		return errRecalc
	})
	if errTx != nil {
		var domainErr *domain.DomainError
		if errors.As(errTx, &domainErr) {
			return nil, domainErr
		}
		return nil, domain.NewInternalError("Failed to save answer", errTx)
	}

	logger.Get().Info("AnswerService: Answer accepted",
		zap.String("userID", userID),
		zap.String("questionID", question.ID),
		zap.String("answerID", saved.ID))

	next, err := s.questionService.GetNextQuestion(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.SubmitAnswerResponse{
		SavedAnswer:  answerToResponse(saved, question.Text),
		NextQuestion: next.Question,
		Complete:     next.Complete,
		Progress:     next.Progress,
	}, nil
}

// assessText runs the completeness and scoring steps for a free-text answer.
// It returns an AnswerRejectedError when the answer fails the completeness
// check, and otherwise a sanitized assessment, which may be empty when a
// capability failed and the fail-open policy applies.
func (s *answerService) assessText(ctx context.Context, question *domain.Question, text string) (*domain.TraitAssessment, error) {
	if verdict := domain.CheckTextLocally(question, text); verdict != nil && !verdict.IsOK {
		return nil, domain.NewAnswerRejectedError(verdict)
	}

	// Embedding failures only disable the assessment cache; the pipeline
	// itself does not depend on embeddings.
	var embedding []float32
	if s.embeddingService != nil {
		var errEmbed error
		embedding, errEmbed = s.embeddingService.Generate(ctx, text)
		if errEmbed != nil {
			logger.Get().Warn("AnswerService: Failed to generate embedding, assessment cache will be skipped",
				zap.Error(errEmbed),
				zap.String("questionID", question.ID))
			embedding = nil
		}
	}

	if s.assessmentCache != nil && len(embedding) > 0 {
		cached, errCache := s.assessmentCache.GetAssessmentFromCache(ctx, question.ID, embedding, text)
		if errCache != nil {
			logger.Get().Error("AnswerService: Assessment cache lookup failed",
				zap.Error(errCache),
				zap.String("questionID", question.ID))
		} else if cached != nil {
			cached.Sanitize()
			return cached, nil
		}
	}

	verdict, errVerdict := s.validator.CheckCompleteness(ctx, domain.AssessmentRequest{
		QuestionText: question.Text,
		QuestionType: question.Type,
		Required:     question.Required,
		Category:     question.CategoryKey(),
		AnswerText:   text,
	})
	if errVerdict != nil {
		// A canceled request is the client's doing, not a capability
		// failure; it never fails open.
		if ctx.Err() != nil {
			return nil, errVerdict
		}
		if !s.failOpen() {
			return nil, errVerdict
		}
		logger.Get().Warn("AnswerService: Completeness check failed, accepting answer",
			zap.Error(errVerdict),
			zap.String("questionID", question.ID))
		verdict = &domain.CompletenessVerdict{IsOK: true}
	}
	if !verdict.IsOK {
		return nil, domain.NewAnswerRejectedError(verdict)
	}

	assessment, errScore := s.scorer.ScoreTraits(ctx, domain.ScoringRequest{
		QuestionText: question.Text,
		AnswerText:   text,
	})
	if errScore != nil {
		if ctx.Err() != nil {
			return nil, errScore
		}
		if !s.failOpen() {
			return nil, errScore
		}
		logger.Get().Warn("AnswerService: Trait scoring failed, continuing with empty traits",
			zap.Error(errScore),
			zap.String("questionID", question.ID))
		return &domain.TraitAssessment{
			Positive: domain.TraitScores{},
			Negative: domain.TraitScores{},
		}, nil
	}

	assessment.Sanitize()

	if anomalies := s.traitService.CheckOverlay(ctx, assessment.Positive, assessment.Negative); len(anomalies) > 0 {
		logger.Get().Warn("AnswerService: Scored traits disagree with the catalog",
			zap.String("questionID", question.ID),
			zap.Strings("anomalies", anomalies))
	}

	// Only genuine capability output is cached; fail-open placeholders and
	// rejections never are.
	if s.assessmentCache != nil && len(embedding) > 0 {
		if errPut := s.assessmentCache.PutAssessmentToCache(ctx, question.ID, text, embedding, assessment); errPut != nil {
			logger.Get().Error("AnswerService: Failed to cache assessment",
				zap.Error(errPut),
				zap.String("questionID", question.ID))
		}
	}

	return assessment, nil
}

// ListMyAnswers implements AnswerService
func (s *answerService) ListMyAnswers(ctx context.Context, userID string, pagination dto.Pagination) (*dto.MyAnswersResponse, error) {
	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Page > 0 && pagination.Offset == 0 {
		pagination.Offset = (pagination.Page - 1) * pagination.Limit
	}

	answers, total, err := s.answerRepo.ListAnswersByUserID(ctx, userID, pagination)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list answers", err)
	}

	// One cached catalog read resolves the question texts; answers to
	// questions that have since gone inactive simply show no text.
	questionText := make(map[string]string)
	if questions, errCatalog := s.questionRepo.GetActiveQuestions(ctx); errCatalog == nil {
		for i := range questions {
			questionText[questions[i].ID] = questions[i].Text
		}
	} else {
		logger.Get().Warn("AnswerService: Failed to resolve question texts for answer list", zap.Error(errCatalog))
	}

	responses := make([]dto.AnswerResponse, 0, len(answers))
	for i := range answers {
		responses = append(responses, answerToResponse(&answers[i], questionText[answers[i].QuestionID]))
	}

	totalPages := 0
	if pagination.Limit > 0 {
		totalPages = (total + pagination.Limit - 1) / pagination.Limit
	}
	return &dto.MyAnswersResponse{
		Answers: responses,
		PaginationInfo: dto.PaginationInfo{
			TotalItems:  int64(total),
			Limit:       pagination.Limit,
			Offset:      pagination.Offset,
			CurrentPage: (pagination.Offset / pagination.Limit) + 1,
			TotalPages:  totalPages,
		},
	}, nil
}

// DeleteAnswer implements AnswerService
func (s *answerService) DeleteAnswer(ctx context.Context, userID string, answerID string) error {
	answer, err := s.answerRepo.GetAnswerByID(ctx, answerID)
	if err != nil {
		return domain.NewInternalError("Failed to get answer", err)
	}
	if answer == nil || answer.UserID != userID {
		// A foreign answer reads as absent; existence is not leaked.
		return domain.NewAnswerNotFoundError(answerID)
	}

	release, err := s.agg.acquire(ctx, userID)
	if err != nil {
		return domain.NewInternalError("Deletion canceled while waiting for an earlier submission", err)
	}
	defer release()

	errTx := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if errDel := s.answerRepo.DeleteAnswer(txCtx, userID, answerID); errDel != nil {
			return errDel
		}
		_, errRecalc := s.agg.recalculate(txCtx, userID)
		return errRecalc
	})
	if errTx != nil {
		if errors.Is(errTx, sql.ErrNoRows) {
			return domain.NewAnswerNotFoundError(answerID)
		}
		var domainErr *domain.DomainError
		if errors.As(errTx, &domainErr) {
			return domainErr
		}
		return domain.NewInternalError("Failed to delete answer", errTx)
	}

	logger.Get().Info("AnswerService: Answer deleted and aggregate recalculated",
		zap.String("userID", userID),
		zap.String("answerID", answerID))
	return nil
}
