package service

import (
	"context"

	"self-analysis/internal/domain"
)

// Aggregator owns the per-user trait aggregate: it serializes mutations of a
// user's answers with a per-user lock and rebuilds the SelfAnalysis row from
// the stored answers. The submission pipeline and the explicit recompute
// endpoint share one instance so they contend on the same locks.
type Aggregator struct {
	answerRepo   domain.AnswerRepository
	analysisRepo domain.SelfAnalysisRepository
	locks        *userLocker
}

// NewAggregator creates a new Aggregator.
func NewAggregator(answerRepo domain.AnswerRepository, analysisRepo domain.SelfAnalysisRepository) *Aggregator {
	return &Aggregator{
		answerRepo:   answerRepo,
		analysisRepo: analysisRepo,
		locks:        newUserLocker(),
	}
}

// acquire takes the user's submission lock. The returned release function
// must be called exactly once. Not reentrant: a caller holding the lock must
// not acquire it again.
func (a *Aggregator) acquire(ctx context.Context, userID string) (func(), error) {
	return a.locks.Acquire(ctx, userID)
}

// recalculate rebuilds the user's aggregate from every stored answer and
// persists it, creating the row on first use. Callers that mutate answers
// must hold the user's lock; the ctx decides whether this runs inside an
// enclosing transaction.
func (a *Aggregator) recalculate(ctx context.Context, userID string) (*domain.SelfAnalysis, error) {
	answers, err := a.answerRepo.GetAnswersByUserID(ctx, userID)
	if err != nil {
		return nil, domain.NewAggregationError(userID, err)
	}

	analysis, err := a.analysisRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domain.NewAggregationError(userID, err)
	}
	if analysis == nil {
		analysis = domain.NewSelfAnalysis(userID)
	}

	analysis.RecalculateFromAnswers(answers)
	if err := a.analysisRepo.Save(ctx, analysis); err != nil {
		return nil, domain.NewAggregationError(userID, err)
	}
	return analysis, nil
}
