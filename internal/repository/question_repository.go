package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"self-analysis/internal/domain"
	"self-analysis/internal/dto"
	"self-analysis/internal/repository/models"
	"self-analysis/internal/util"

	"github.com/jmoiron/sqlx"
)

// Oracle returns unaliased column names in upper case, so every SELECT
// aliases its columns to the lower-case names carried by the db tags.
const questionColumns = `
	id "id",
	question_text "question_text",
	question_type "question_type",
	parent_id "parent_id",
	category "category",
	required "required",
	is_active "is_active",
	display_order "display_order",
	created_at "created_at",
	updated_at "updated_at",
	deleted_at "deleted_at"`

const optionColumns = `
	id "id",
	question_id "question_id",
	label "label",
	option_value "option_value",
	display_order "display_order",
	created_at "created_at",
	updated_at "updated_at",
	deleted_at "deleted_at"`

// sqlxQuestionRepository implements domain.QuestionRepository using sqlx.
type sqlxQuestionRepository struct {
	db *sqlx.DB
}

// NewSQLXQuestionRepository creates a new instance of sqlxQuestionRepository.
func NewSQLXQuestionRepository(db *sqlx.DB) domain.QuestionRepository {
	return &sqlxQuestionRepository{db: db}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	if m == nil {
		return nil
	}
	return &domain.Question{
		ID:           m.ID,
		Text:         m.QuestionText,
		Type:         domain.QuestionType(m.QuestionType),
		ParentID:     util.NullStringToPtr(m.ParentID),
		Category:     util.NullStringToPtr(m.Category),
		Required:     m.Required,
		IsActive:     m.IsActive,
		DisplayOrder: m.DisplayOrder,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toDomainOption(m *models.QuestionOption) domain.Option {
	return domain.Option{
		ID:           m.ID,
		QuestionID:   m.QuestionID,
		Label:        m.Label,
		Value:        m.OptionValue,
		DisplayOrder: m.DisplayOrder,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// GetActiveQuestions implements domain.QuestionRepository
func (r *sqlxQuestionRepository) GetActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	exec := GetExecutor(ctx, r.db)

	var modelQuestions []models.Question
	query := `SELECT ` + questionColumns + `
	FROM questions
	WHERE is_active = 1
	AND deleted_at IS NULL
	ORDER BY display_order ASC, id ASC`

	if err := exec.SelectContext(ctx, &modelQuestions, query); err != nil {
		return nil, fmt.Errorf("failed to get active questions: %w", err)
	}
	if len(modelQuestions) == 0 {
		return []domain.Question{}, nil
	}

	questionIDs := make([]string, len(modelQuestions))
	for i, mq := range modelQuestions {
		questionIDs[i] = mq.ID
	}
	optionsByQuestion, err := r.loadOptions(ctx, exec, questionIDs)
	if err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(modelQuestions))
	for i := range modelQuestions {
		dq := toDomainQuestion(&modelQuestions[i])
		dq.Options = optionsByQuestion[dq.ID]
		questions = append(questions, *dq)
	}
	return questions, nil
}

// GetQuestionByID implements domain.QuestionRepository
func (r *sqlxQuestionRepository) GetQuestionByID(ctx context.Context, id string) (*domain.Question, error) {
	exec := GetExecutor(ctx, r.db)

	var modelQuestion models.Question
	query := `SELECT ` + questionColumns + `
	FROM questions
	WHERE id = :1
	AND deleted_at IS NULL`

	err := exec.GetContext(ctx, &modelQuestion, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question by ID %s: %w", id, err)
	}

	optionsByQuestion, err := r.loadOptions(ctx, exec, []string{modelQuestion.ID})
	if err != nil {
		return nil, err
	}
	dq := toDomainQuestion(&modelQuestion)
	dq.Options = optionsByQuestion[dq.ID]
	return dq, nil
}

// ListQuestions implements domain.QuestionRepository
func (r *sqlxQuestionRepository) ListQuestions(ctx context.Context, filters dto.QuestionFilters) ([]domain.Question, error) {
	exec := GetExecutor(ctx, r.db)

	var whereClauses []string
	var args []interface{}
	argIndex := 1

	whereClauses = append(whereClauses, "deleted_at IS NULL")
	if !filters.IncludeInactive {
		whereClauses = append(whereClauses, "is_active = 1")
	}
	// The literal "null" selects rows without a category / parent (root
	// questions), matching the query contract of GET /questions.
	if filters.Category == dto.FilterNull {
		whereClauses = append(whereClauses, "category IS NULL")
	} else if filters.Category != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("category = :%d", argIndex))
		args = append(args, filters.Category)
		argIndex++
	}
	if filters.ParentID == dto.FilterNull {
		whereClauses = append(whereClauses, "parent_id IS NULL")
	} else if filters.ParentID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("parent_id = :%d", argIndex))
		args = append(args, filters.ParentID)
		argIndex++
	}

	query := `SELECT ` + questionColumns + `
	FROM questions
	WHERE ` + strings.Join(whereClauses, " AND ") + `
	ORDER BY display_order ASC, id ASC`

	var modelQuestions []models.Question
	if err := exec.SelectContext(ctx, &modelQuestions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	if len(modelQuestions) == 0 {
		return []domain.Question{}, nil
	}

	questionIDs := make([]string, len(modelQuestions))
	for i, mq := range modelQuestions {
		questionIDs[i] = mq.ID
	}
	optionsByQuestion, err := r.loadOptions(ctx, exec, questionIDs)
	if err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(modelQuestions))
	for i := range modelQuestions {
		dq := toDomainQuestion(&modelQuestions[i])
		dq.Options = optionsByQuestion[dq.ID]
		questions = append(questions, *dq)
	}
	return questions, nil
}

// loadOptions fetches the options of the given questions in one query and
// groups them by question ID, preserving (display_order, id) order.
func (r *sqlxQuestionRepository) loadOptions(ctx context.Context, exec DBTX, questionIDs []string) (map[string][]domain.Option, error) {
	grouped := make(map[string][]domain.Option)
	if len(questionIDs) == 0 {
		return grouped, nil
	}

	placeholders := make([]string, len(questionIDs))
	args := make([]interface{}, len(questionIDs))
	for i, id := range questionIDs {
		placeholders[i] = fmt.Sprintf(":%d", i+1)
		args[i] = id
	}

	query := `SELECT ` + optionColumns + `
	FROM question_options
	WHERE question_id IN (` + strings.Join(placeholders, ", ") + `)
	AND deleted_at IS NULL
	ORDER BY display_order ASC, id ASC`

	var modelOptions []models.QuestionOption
	if err := exec.SelectContext(ctx, &modelOptions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load question options: %w", err)
	}

	for i := range modelOptions {
		opt := toDomainOption(&modelOptions[i])
		grouped[opt.QuestionID] = append(grouped[opt.QuestionID], opt)
	}
	return grouped, nil
}

// SaveQuestion implements domain.QuestionRepository
func (r *sqlxQuestionRepository) SaveQuestion(ctx context.Context, question *domain.Question) error {
	if question == nil {
		return fmt.Errorf("cannot save nil question")
	}
	exec := GetExecutor(ctx, r.db)

	if question.ID == "" {
		question.ID = util.NewULID()
	}
	now := time.Now()
	question.CreatedAt = now
	question.UpdatedAt = now

	query := `INSERT INTO questions (
		id, question_text, question_type, parent_id, category,
		required, is_active, display_order, created_at, updated_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7, :8, :9, :10
	)`

	_, err := exec.ExecContext(ctx, query,
		question.ID,
		question.Text,
		string(question.Type),
		util.StringPtrToNullString(question.ParentID),
		util.StringPtrToNullString(question.Category),
		question.Required,
		question.IsActive,
		question.DisplayOrder,
		question.CreatedAt,
		question.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}
	return nil
}

// SaveOption implements domain.QuestionRepository
func (r *sqlxQuestionRepository) SaveOption(ctx context.Context, option *domain.Option) error {
	if option == nil {
		return fmt.Errorf("cannot save nil option")
	}
	exec := GetExecutor(ctx, r.db)

	if option.ID == "" {
		option.ID = util.NewULID()
	}
	now := time.Now()
	option.CreatedAt = now
	option.UpdatedAt = now

	query := `INSERT INTO question_options (
		id, question_id, label, option_value, display_order, created_at, updated_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7
	)`

	_, err := exec.ExecContext(ctx, query,
		option.ID,
		option.QuestionID,
		option.Label,
		option.Value,
		option.DisplayOrder,
		option.CreatedAt,
		option.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save option: %w", err)
	}
	return nil
}
