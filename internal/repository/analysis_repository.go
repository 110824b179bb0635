package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"self-analysis/internal/domain"
	"self-analysis/internal/repository/models"
	"self-analysis/internal/util"

	"github.com/jmoiron/sqlx"
)

const analysisColumns = `
	id "id",
	user_id "user_id",
	combined_positives "combined_positives",
	combined_negatives "combined_negatives",
	quote "quote",
	created_at "created_at",
	updated_at "updated_at"`

// sqlxSelfAnalysisRepository implements domain.SelfAnalysisRepository using sqlx.
type sqlxSelfAnalysisRepository struct {
	db *sqlx.DB
}

// NewSQLXSelfAnalysisRepository creates a new instance of sqlxSelfAnalysisRepository.
func NewSQLXSelfAnalysisRepository(db *sqlx.DB) domain.SelfAnalysisRepository {
	return &sqlxSelfAnalysisRepository{db: db}
}

func toDomainSelfAnalysis(m *models.SelfAnalysis) *domain.SelfAnalysis {
	if m == nil {
		return nil
	}
	return &domain.SelfAnalysis{
		ID:                m.ID,
		UserID:            m.UserID,
		CombinedPositives: domain.TraitScores(m.CombinedPositives),
		CombinedNegatives: domain.TraitScores(m.CombinedNegatives),
		Quote:             m.Quote.String,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// GetByUserID implements domain.SelfAnalysisRepository
func (r *sqlxSelfAnalysisRepository) GetByUserID(ctx context.Context, userID string) (*domain.SelfAnalysis, error) {
	exec := GetExecutor(ctx, r.db)

	var modelAnalysis models.SelfAnalysis
	query := `SELECT ` + analysisColumns + `
	FROM self_analyses
	WHERE user_id = :1`

	err := exec.GetContext(ctx, &modelAnalysis, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get self analysis for user %s: %w", userID, err)
	}
	return toDomainSelfAnalysis(&modelAnalysis), nil
}

// Save implements domain.SelfAnalysisRepository. A MERGE keyed on user_id
// creates the row on the user's first aggregation and replaces the score
// maps afterwards.
func (r *sqlxSelfAnalysisRepository) Save(ctx context.Context, analysis *domain.SelfAnalysis) error {
	if analysis == nil {
		return fmt.Errorf("cannot save nil self analysis")
	}
	exec := GetExecutor(ctx, r.db)

	positives := models.TraitScoreMap(analysis.CombinedPositives)
	negatives := models.TraitScoreMap(analysis.CombinedNegatives)
	quote := util.StringToNullString(analysis.Quote)
	now := time.Now()
	newID := analysis.ID
	if newID == "" {
		newID = util.NewULID()
	}

	query := `MERGE INTO self_analyses sa
	USING (SELECT :1 user_id FROM dual) src
	ON (sa.user_id = src.user_id)
	WHEN MATCHED THEN UPDATE SET
		sa.combined_positives = :2,
		sa.combined_negatives = :3,
		sa.quote = :4,
		sa.updated_at = :5
	WHEN NOT MATCHED THEN INSERT (
		id, user_id, combined_positives, combined_negatives, quote, created_at, updated_at
	) VALUES (
		:6, src.user_id, :7, :8, :9, :10, :11
	)`

	_, err := exec.ExecContext(ctx, query,
		analysis.UserID,
		positives,
		negatives,
		quote,
		now,
		newID,
		positives,
		negatives,
		quote,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save self analysis: %w", err)
	}

	analysis.UpdatedAt = now
	return nil
}
