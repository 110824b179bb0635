package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"self-analysis/internal/domain"
	"self-analysis/internal/dto"
	"self-analysis/internal/repository/models"
	"self-analysis/internal/util"

	"github.com/jmoiron/sqlx"
)

const answerColumns = `
	id "id",
	user_id "user_id",
	question_id "question_id",
	payload "payload",
	positive_values "positive_values",
	negative_values "negative_values",
	quote "quote",
	created_at "created_at",
	updated_at "updated_at"`

// sqlxAnswerRepository implements domain.AnswerRepository using sqlx.
type sqlxAnswerRepository struct {
	db *sqlx.DB
}

// NewSQLXAnswerRepository creates a new instance of sqlxAnswerRepository.
func NewSQLXAnswerRepository(db *sqlx.DB) domain.AnswerRepository {
	return &sqlxAnswerRepository{db: db}
}

func toDomainAnswer(m *models.Answer) (*domain.Answer, error) {
	if m == nil {
		return nil, fmt.Errorf("cannot convert nil model.Answer to domain.Answer")
	}

	var payload *domain.AnswerPayload
	if m.Payload.Valid && m.Payload.String != "" {
		payload = &domain.AnswerPayload{}
		if err := json.Unmarshal([]byte(m.Payload.String), payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answer payload for %s: %w", m.ID, err)
		}
	}

	return &domain.Answer{
		ID:             m.ID,
		UserID:         m.UserID,
		QuestionID:     m.QuestionID,
		Payload:        payload,
		PositiveValues: domain.TraitScores(m.PositiveValues),
		NegativeValues: domain.TraitScores(m.NegativeValues),
		Quote:          m.Quote.String,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

func marshalAnswerPayload(payload *domain.AnswerPayload) (sql.NullString, error) {
	if payload == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal answer payload: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// UpsertAnswer implements domain.AnswerRepository. A MERGE keyed on
// (user_id, question_id) keeps the row's ID and created_at stable across
// resubmissions; the row is re-read afterwards so the caller always gets
// the authoritative state.
func (r *sqlxAnswerRepository) UpsertAnswer(ctx context.Context, answer *domain.Answer) (*domain.Answer, error) {
	if answer == nil {
		return nil, fmt.Errorf("cannot upsert nil answer")
	}
	exec := GetExecutor(ctx, r.db)

	payload, err := marshalAnswerPayload(answer.Payload)
	if err != nil {
		return nil, err
	}
	positives := models.TraitScoreMap(answer.PositiveValues)
	negatives := models.TraitScoreMap(answer.NegativeValues)
	quote := util.StringToNullString(answer.Quote)
	now := time.Now()
	newID := answer.ID
	if newID == "" {
		newID = util.NewULID()
	}

	query := `MERGE INTO answers a
	USING (SELECT :1 user_id, :2 question_id FROM dual) src
	ON (a.user_id = src.user_id AND a.question_id = src.question_id)
	WHEN MATCHED THEN UPDATE SET
		a.payload = :3,
		a.positive_values = :4,
		a.negative_values = :5,
		a.quote = :6,
		a.updated_at = :7
	WHEN NOT MATCHED THEN INSERT (
		id, user_id, question_id, payload, positive_values, negative_values, quote, created_at, updated_at
	) VALUES (
		:8, src.user_id, src.question_id, :9, :10, :11, :12, :13, :14
	)`

	_, err = exec.ExecContext(ctx, query,
		answer.UserID,
		answer.QuestionID,
		payload,
		positives,
		negatives,
		quote,
		now,
		newID,
		payload,
		positives,
		negatives,
		quote,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert answer: %w", err)
	}

	var saved models.Answer
	selectQuery := `SELECT ` + answerColumns + `
	FROM answers
	WHERE user_id = :1
	AND question_id = :2`

	if err := exec.GetContext(ctx, &saved, selectQuery, answer.UserID, answer.QuestionID); err != nil {
		return nil, fmt.Errorf("failed to read back upserted answer: %w", err)
	}
	return toDomainAnswer(&saved)
}

// GetAnswerByID implements domain.AnswerRepository
func (r *sqlxAnswerRepository) GetAnswerByID(ctx context.Context, id string) (*domain.Answer, error) {
	exec := GetExecutor(ctx, r.db)

	var modelAnswer models.Answer
	query := `SELECT ` + answerColumns + `
	FROM answers
	WHERE id = :1`

	err := exec.GetContext(ctx, &modelAnswer, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get answer by ID %s: %w", id, err)
	}
	return toDomainAnswer(&modelAnswer)
}

// GetAnswersByUserID implements domain.AnswerRepository. Answers are
// returned newest first; the aggregation relies on this order when it
// picks the representative quote.
func (r *sqlxAnswerRepository) GetAnswersByUserID(ctx context.Context, userID string) ([]domain.Answer, error) {
	exec := GetExecutor(ctx, r.db)

	var modelAnswers []models.Answer
	query := `SELECT ` + answerColumns + `
	FROM answers
	WHERE user_id = :1
	ORDER BY created_at DESC, id DESC`

	if err := exec.SelectContext(ctx, &modelAnswers, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get answers for user %s: %w", userID, err)
	}

	answers := make([]domain.Answer, 0, len(modelAnswers))
	for i := range modelAnswers {
		da, err := toDomainAnswer(&modelAnswers[i])
		if err != nil {
			return nil, err
		}
		answers = append(answers, *da)
	}
	return answers, nil
}

// GetAnsweredQuestionIDs implements domain.AnswerRepository
func (r *sqlxAnswerRepository) GetAnsweredQuestionIDs(ctx context.Context, userID string) (map[string]bool, error) {
	exec := GetExecutor(ctx, r.db)

	var questionIDs []string
	query := `SELECT question_id FROM answers WHERE user_id = :1`

	if err := exec.SelectContext(ctx, &questionIDs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get answered question ids for user %s: %w", userID, err)
	}

	answered := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		answered[id] = true
	}
	return answered, nil
}

// ListAnswersByUserID implements domain.AnswerRepository. Pagination uses a
// ROW_NUMBER() window for Oracle compatibility, with a separate count query.
func (r *sqlxAnswerRepository) ListAnswersByUserID(ctx context.Context, userID string, pagination dto.Pagination) ([]domain.Answer, int, error) {
	exec := GetExecutor(ctx, r.db)

	limit := pagination.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := pagination.Offset
	if offset < 0 {
		offset = 0
	}

	innerQuery := `SELECT ` + answerColumns + `,
		ROW_NUMBER() OVER (ORDER BY created_at DESC, id DESC) "rn"
	FROM answers
	WHERE user_id = :1`
	resultsQuery := fmt.Sprintf(`SELECT
		id "id",
		user_id "user_id",
		question_id "question_id",
		payload "payload",
		positive_values "positive_values",
		negative_values "negative_values",
		quote "quote",
		created_at "created_at",
		updated_at "updated_at"
	FROM (%s) WHERE "rn" > %d AND "rn" <= %d`, innerQuery, offset, offset+limit)

	var modelAnswers []models.Answer
	if err := exec.SelectContext(ctx, &modelAnswers, resultsQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to list answers for user %s: %w", userID, err)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM answers WHERE user_id = :1`
	if err := exec.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count answers for user %s: %w", userID, err)
	}

	answers := make([]domain.Answer, 0, len(modelAnswers))
	for i := range modelAnswers {
		da, err := toDomainAnswer(&modelAnswers[i])
		if err != nil {
			return nil, 0, err
		}
		answers = append(answers, *da)
	}
	return answers, total, nil
}

// DeleteAnswer implements domain.AnswerRepository. Answers are removed for
// real rather than soft deleted so the (user_id, question_id) uniqueness
// constraint keeps working for later resubmissions.
func (r *sqlxAnswerRepository) DeleteAnswer(ctx context.Context, userID string, answerID string) error {
	exec := GetExecutor(ctx, r.db)

	query := `DELETE FROM answers WHERE id = :1 AND user_id = :2`
	result, err := exec.ExecContext(ctx, query, answerID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete answer %s: %w", answerID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
