package service

import (
	"context"
	"errors"
	"sort"

	"self-analysis/internal/domain"
	"self-analysis/internal/dto"
	"self-analysis/internal/logger"

	"go.uber.org/zap"
)

const overviewTopN = 5

// AnalysisService defines the interface for reading and recomputing the
// user's aggregated trait profile
type AnalysisService interface {
	// GetMyAnalysis returns the user's aggregate, creating the row on first
	// read.
	GetMyAnalysis(ctx context.Context, userID string) (*dto.SelfAnalysisResponse, error)

	// Recalculate rebuilds the aggregate from the stored answers. Idempotent;
	// safe to call after a failed recomputation left the aggregate stale.
	Recalculate(ctx context.Context, userID string) (*dto.SelfAnalysisResponse, error)

	// GetOverview combines the aggregate with questionnaire progress and the
	// highest-scoring traits of each polarity.
	GetOverview(ctx context.Context, userID string) (*dto.AnalysisOverviewResponse, error)
}

// analysisService implements AnalysisService
type analysisService struct {
	analysisRepo    domain.SelfAnalysisRepository
	txManager       domain.TransactionManager
	questionService QuestionService
	agg             *Aggregator
}

// NewAnalysisService creates a new instance of analysisService
func NewAnalysisService(
	analysisRepo domain.SelfAnalysisRepository,
	txManager domain.TransactionManager,
	questionService QuestionService,
	agg *Aggregator,
) AnalysisService {
	return &analysisService{
		analysisRepo:    analysisRepo,
		txManager:       txManager,
		questionService: questionService,
		agg:             agg,
	}
}

// GetMyAnalysis implements AnalysisService
func (s *analysisService) GetMyAnalysis(ctx context.Context, userID string) (*dto.SelfAnalysisResponse, error) {
	analysis, err := s.analysisRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get self analysis", err)
	}
	if analysis == nil {
		return s.Recalculate(ctx, userID)
	}
	resp := analysisToResponse(analysis)
	return &resp, nil
}

// Recalculate implements AnalysisService
func (s *analysisService) Recalculate(ctx context.Context, userID string) (*dto.SelfAnalysisResponse, error) {
	release, err := s.agg.acquire(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Recalculation canceled while waiting for a submission", err)
	}
	defer release()

	var analysis *domain.SelfAnalysis
	errTx := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var errRecalc error
		analysis, errRecalc = s.agg.recalculate(txCtx, userID)
		return errRecalc
	})
	if errTx != nil {
		var domainErr *domain.DomainError
		if errors.As(errTx, &domainErr) {
			return nil, domainErr
		}
		return nil, domain.NewAggregationError(userID, errTx)
	}

	logger.Get().Info("AnalysisService: Aggregate recalculated",
		zap.String("userID", userID),
		zap.Int("positiveTraits", len(analysis.CombinedPositives)),
		zap.Int("negativeTraits", len(analysis.CombinedNegatives)))

	resp := analysisToResponse(analysis)
	return &resp, nil
}

// GetOverview implements AnalysisService
func (s *analysisService) GetOverview(ctx context.Context, userID string) (*dto.AnalysisOverviewResponse, error) {
	analysis, err := s.GetMyAnalysis(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress, err := s.questionService.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.AnalysisOverviewResponse{
		Analysis:       *analysis,
		Progress:       *progress,
		TopStrengths:   topScores(analysis.CombinedPositives, overviewTopN),
		TopGrowthAreas: topScores(analysis.CombinedNegatives, overviewTopN),
	}, nil
}

// topScores returns the n highest entries of a score map, ties broken by
// name so the order is stable.
func topScores(scores map[string]float64, n int) []dto.TraitScoreItem {
	items := make([]dto.TraitScoreItem, 0, len(scores))
	for name, score := range scores {
		items = append(items, dto.TraitScoreItem{Name: name, Score: score})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}
