package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"self-analysis/internal/domain"
	"self-analysis/internal/dto"
	"self-analysis/internal/repository/models"
	"self-analysis/internal/util"

	"github.com/jmoiron/sqlx"
)

const traitColumns = `
	id "id",
	name "name",
	polarity "polarity",
	description "description",
	is_active "is_active",
	min_value "min_value",
	max_value "max_value",
	created_at "created_at",
	updated_at "updated_at",
	deleted_at "deleted_at"`

// sqlxTraitRepository implements domain.TraitRepository using sqlx.
type sqlxTraitRepository struct {
	db *sqlx.DB
}

// NewSQLXTraitRepository creates a new instance of sqlxTraitRepository.
func NewSQLXTraitRepository(db *sqlx.DB) domain.TraitRepository {
	return &sqlxTraitRepository{db: db}
}

func toDomainTrait(m *models.Trait) domain.Trait {
	return domain.Trait{
		ID:          m.ID,
		Name:        m.Name,
		Polarity:    domain.Polarity(m.Polarity),
		Description: m.Description.String,
		IsActive:    m.IsActive,
		MinValue:    float64(m.MinValue),
		MaxValue:    float64(m.MaxValue),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ListTraits implements domain.TraitRepository
func (r *sqlxTraitRepository) ListTraits(ctx context.Context, filters dto.TraitFilters) ([]domain.Trait, error) {
	exec := GetExecutor(ctx, r.db)

	var whereClauses []string
	var args []interface{}
	argIndex := 1

	whereClauses = append(whereClauses, "deleted_at IS NULL")
	if !filters.IncludeInactive {
		whereClauses = append(whereClauses, "is_active = 1")
	}
	if filters.Polarity != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("polarity = :%d", argIndex))
		args = append(args, filters.Polarity)
		argIndex++
	}

	query := `SELECT ` + traitColumns + `
	FROM traits
	WHERE ` + strings.Join(whereClauses, " AND ") + `
	ORDER BY name ASC`

	var modelTraits []models.Trait
	if err := exec.SelectContext(ctx, &modelTraits, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list traits: %w", err)
	}

	traits := make([]domain.Trait, 0, len(modelTraits))
	for i := range modelTraits {
		traits = append(traits, toDomainTrait(&modelTraits[i]))
	}
	return traits, nil
}

// GetTraitsByNames implements domain.TraitRepository
func (r *sqlxTraitRepository) GetTraitsByNames(ctx context.Context, names []string) ([]domain.Trait, error) {
	if len(names) == 0 {
		return []domain.Trait{}, nil
	}
	exec := GetExecutor(ctx, r.db)

	placeholders := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, name := range names {
		placeholders[i] = fmt.Sprintf(":%d", i+1)
		args[i] = name
	}

	query := `SELECT ` + traitColumns + `
	FROM traits
	WHERE name IN (` + strings.Join(placeholders, ", ") + `)
	AND is_active = 1
	AND deleted_at IS NULL
	ORDER BY name ASC`

	var modelTraits []models.Trait
	if err := exec.SelectContext(ctx, &modelTraits, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get traits by names: %w", err)
	}

	traits := make([]domain.Trait, 0, len(modelTraits))
	for i := range modelTraits {
		traits = append(traits, toDomainTrait(&modelTraits[i]))
	}
	return traits, nil
}

// SaveTrait implements domain.TraitRepository
func (r *sqlxTraitRepository) SaveTrait(ctx context.Context, trait *domain.Trait) error {
	if trait == nil {
		return fmt.Errorf("cannot save nil trait")
	}
	exec := GetExecutor(ctx, r.db)

	if trait.ID == "" {
		trait.ID = util.NewULID()
	}
	now := time.Now()
	trait.CreatedAt = now
	trait.UpdatedAt = now

	query := `INSERT INTO traits (
		id, name, polarity, description, is_active, min_value, max_value, created_at, updated_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7, :8, :9
	)`

	_, err := exec.ExecContext(ctx, query,
		trait.ID,
		trait.Name,
		string(trait.Polarity),
		util.StringToNullString(trait.Description),
		trait.IsActive,
		trait.MinValue,
		trait.MaxValue,
		trait.CreatedAt,
		trait.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save trait: %w", err)
	}
	return nil
}
