package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"self-analysis/internal/config"
	"self-analysis/internal/domain"
	"self-analysis/internal/dto"
	"self-analysis/internal/handler"
	"self-analysis/internal/logger"
	"self-analysis/internal/middleware"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{}); err != nil {
		panic(err)
	}
	code := m.Run()
	_ = logger.Sync()
	os.Exit(code)
}

// --- Manual Mocks ---

// MockAnswerService
type MockAnswerService struct {
	SubmitAnswerFunc  func(ctx context.Context, userID string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error)
	ListMyAnswersFunc func(ctx context.Context, userID string, pagination dto.Pagination) (*dto.MyAnswersResponse, error)
	DeleteAnswerFunc  func(ctx context.Context, userID string, answerID string) error
}

func (m *MockAnswerService) SubmitAnswer(ctx context.Context, userID string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	if m.SubmitAnswerFunc != nil {
		return m.SubmitAnswerFunc(ctx, userID, req)
	}
	panic("MockAnswerService.SubmitAnswerFunc not implemented")
}
func (m *MockAnswerService) ListMyAnswers(ctx context.Context, userID string, pagination dto.Pagination) (*dto.MyAnswersResponse, error) {
	if m.ListMyAnswersFunc != nil {
		return m.ListMyAnswersFunc(ctx, userID, pagination)
	}
	panic("MockAnswerService.ListMyAnswersFunc not implemented")
}
func (m *MockAnswerService) DeleteAnswer(ctx context.Context, userID string, answerID string) error {
	if m.DeleteAnswerFunc != nil {
		return m.DeleteAnswerFunc(ctx, userID, answerID)
	}
	panic("MockAnswerService.DeleteAnswerFunc not implemented")
}

// MockQuestionService
type MockQuestionService struct {
	ListQuestionsFunc     func(ctx context.Context, filters dto.QuestionFilters) ([]dto.QuestionResponse, error)
	GetQuestionFunc       func(ctx context.Context, id string, includeInactive bool) (*dto.QuestionResponse, error)
	GetNextQuestionFunc   func(ctx context.Context, userID string) (*dto.NextQuestionResponse, error)
	GetProgressFunc       func(ctx context.Context, userID string) (*dto.ProgressResponse, error)
	InvalidateCatalogFunc func(ctx context.Context) error
}

func (m *MockQuestionService) ListQuestions(ctx context.Context, filters dto.QuestionFilters) ([]dto.QuestionResponse, error) {
	if m.ListQuestionsFunc != nil {
		return m.ListQuestionsFunc(ctx, filters)
	}
	panic("MockQuestionService.ListQuestionsFunc not implemented")
}
func (m *MockQuestionService) GetQuestion(ctx context.Context, id string, includeInactive bool) (*dto.QuestionResponse, error) {
	if m.GetQuestionFunc != nil {
		return m.GetQuestionFunc(ctx, id, includeInactive)
	}
	panic("MockQuestionService.GetQuestionFunc not implemented")
}
func (m *MockQuestionService) GetNextQuestion(ctx context.Context, userID string) (*dto.NextQuestionResponse, error) {
	if m.GetNextQuestionFunc != nil {
		return m.GetNextQuestionFunc(ctx, userID)
	}
	panic("MockQuestionService.GetNextQuestionFunc not implemented")
}
func (m *MockQuestionService) GetProgress(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
	if m.GetProgressFunc != nil {
		return m.GetProgressFunc(ctx, userID)
	}
	panic("MockQuestionService.GetProgressFunc not implemented")
}
func (m *MockQuestionService) InvalidateCatalog(ctx context.Context) error {
	if m.InvalidateCatalogFunc != nil {
		return m.InvalidateCatalogFunc(ctx)
	}
	panic("MockQuestionService.InvalidateCatalogFunc not implemented")
}

const testQuestionID = "01HGZ8VNRYXS8QKNJV5GRWPWDQ"
const testAnswerID = "01HGZ8VNRYXS8QKNJV5GRWPWDR"

func newAnswerTestApp(answerSvc *MockAnswerService, questionSvc *MockQuestionService) (*fiber.App, *handler.AnswerHandler) {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
	})
	h := handler.NewAnswerHandler(answerSvc, questionSvc)
	return app, h
}

// withUserID simulates the auth middleware having resolved the user.
func withUserID(userID string, next fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDKey, userID)
		return next(c)
	}
}

func TestAnswerHandler_SubmitAndNext(t *testing.T) {
	userID := "userTest123"
	submitRequest := dto.SubmitAnswerRequest{
		QuestionID: testQuestionID,
		Answer:     json.RawMessage(`{"text":"Last March I led the rollback after a bad deploy."}`),
	}

	t.Run("Success", func(t *testing.T) {
		mockAnswerSvc := &MockAnswerService{}
		mockQuestionSvc := &MockQuestionService{}
		app, h := newAnswerTestApp(mockAnswerSvc, mockQuestionSvc)
		app.Post("/answers/answer-and-next", withUserID(userID, h.SubmitAndNext))

		mockAnswerSvc.SubmitAnswerFunc = func(ctx context.Context, uID string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
			assert.Equal(t, userID, uID)
			assert.Equal(t, testQuestionID, req.QuestionID)
			return &dto.SubmitAnswerResponse{
				SavedAnswer: dto.AnswerResponse{ID: testAnswerID, QuestionID: testQuestionID},
				NextQuestion: &dto.QuestionResponse{
					ID:   "01HGZ8VNRYXS8QKNJV5GRWPWDS",
					Text: "What did you learn from it?",
					Type: "text",
				},
				Complete: false,
				Progress: dto.ProgressResponse{Answered: 3, Total: 10, Percent: 30},
			}, nil
		}

		reqBody, _ := json.Marshal(submitRequest)
		req := httptest.NewRequest("POST", "/answers/answer-and-next", bytes.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result dto.SubmitAnswerResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, testAnswerID, result.SavedAnswer.ID)
		require.NotNil(t, result.NextQuestion)
		assert.Equal(t, "What did you learn from it?", result.NextQuestion.Text)
		assert.Equal(t, 30, result.Progress.Percent)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		mockAnswerSvc := &MockAnswerService{}
		mockAnswerSvc.SubmitAnswerFunc = func(ctx context.Context, uID string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
			assert.Fail(t, "SubmitAnswer should not be called without a user in context")
			return nil, errors.New("should not be called")
		}
		app, h := newAnswerTestApp(mockAnswerSvc, &MockQuestionService{})
		app.Post("/answers/answer-and-next", h.SubmitAndNext)

		reqBody, _ := json.Marshal(submitRequest)
		req := httptest.NewRequest("POST", "/answers/answer-and-next", bytes.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		var errResp middleware.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, "INVALID_USER_CONTEXT", errResp.Code)
	})

	t.Run("Invalid Body", func(t *testing.T) {
		app, h := newAnswerTestApp(&MockAnswerService{}, &MockQuestionService{})
		app.Post("/answers/answer-and-next", withUserID(userID, h.SubmitAndNext))

		req := httptest.NewRequest("POST", "/answers/answer-and-next", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var errResp middleware.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, "INVALID_REQUEST_BODY", errResp.Code)
	})

	t.Run("Missing Question ID", func(t *testing.T) {
		app, h := newAnswerTestApp(&MockAnswerService{}, &MockQuestionService{})
		app.Post("/answers/answer-and-next", withUserID(userID, h.SubmitAndNext))

		reqBody, _ := json.Marshal(dto.SubmitAnswerRequest{Answer: json.RawMessage(`{"text":"hi"}`)})
		req := httptest.NewRequest("POST", "/answers/answer-and-next", bytes.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var errResp middleware.ValidationErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, string(domain.CodeValidation), errResp.Code)
		require.Len(t, errResp.Errors, 1)
		assert.Equal(t, "question_id", errResp.Errors[0].Field)
	})

	t.Run("Rejected Text Answer", func(t *testing.T) {
		mockAnswerSvc := &MockAnswerService{}
		mockAnswerSvc.SubmitAnswerFunc = func(ctx context.Context, uID string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
			return nil, domain.NewAnswerRejectedError(&domain.CompletenessVerdict{
				IsOK:         false,
				Instructions: "Say when this happened and what the outcome was.",
			})
		}
		app, h := newAnswerTestApp(mockAnswerSvc, &MockQuestionService{})
		app.Post("/answers/answer-and-next", withUserID(userID, h.SubmitAndNext))

		reqBody, _ := json.Marshal(submitRequest)
		req := httptest.NewRequest("POST", "/answers/answer-and-next", bytes.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var rejection dto.RejectionResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rejection))
		assert.False(t, rejection.Agent.IsAnswerOK)
		assert.Equal(t, "Say when this happened and what the outcome was.", rejection.Agent.Instructions)
	})

	t.Run("Question Not Found", func(t *testing.T) {
		mockAnswerSvc := &MockAnswerService{}
		mockAnswerSvc.SubmitAnswerFunc = func(ctx context.Context, uID string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
			return nil, domain.NewQuestionNotFoundError(req.QuestionID)
		}
		app, h := newAnswerTestApp(mockAnswerSvc, &MockQuestionService{})
		app.Post("/answers/answer-and-next", withUserID(userID, h.SubmitAndNext))

		reqBody, _ := json.Marshal(submitRequest)
		req := httptest.NewRequest("POST", "/answers/answer-and-next", bytes.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var errResp middleware.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, string(domain.CodeQuestionNotFound), errResp.Code)
	})
}

func TestAnswerHandler_ListMine(t *testing.T) {
	userID := "userTest123"

	t.Run("Uses Validated Pagination", func(t *testing.T) {
		mockAnswerSvc := &MockAnswerService{}
		app, h := newAnswerTestApp(mockAnswerSvc, &MockQuestionService{})
		app.Get("/answers", func(c *fiber.Ctx) error {
			c.Locals(middleware.UserIDKey, userID)
			c.Locals(middleware.ValidatedPaginationKey, dto.Pagination{Limit: 5, Offset: 10})
			return h.ListMine(c)
		})

		mockAnswerSvc.ListMyAnswersFunc = func(ctx context.Context, uID string, pagination dto.Pagination) (*dto.MyAnswersResponse, error) {
			assert.Equal(t, userID, uID)
			assert.Equal(t, 5, pagination.Limit)
			assert.Equal(t, 10, pagination.Offset)
			return &dto.MyAnswersResponse{
				Answers:        []dto.AnswerResponse{{ID: testAnswerID}},
				PaginationInfo: dto.PaginationInfo{TotalItems: 12, Limit: 5, Offset: 10},
			}, nil
		}

		resp, err := app.Test(httptest.NewRequest("GET", "/answers", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result dto.MyAnswersResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		require.Len(t, result.Answers, 1)
		assert.Equal(t, int64(12), result.PaginationInfo.TotalItems)
	})

	t.Run("Defaults Without Validated Pagination", func(t *testing.T) {
		mockAnswerSvc := &MockAnswerService{}
		app, h := newAnswerTestApp(mockAnswerSvc, &MockQuestionService{})
		app.Get("/answers", withUserID(userID, h.ListMine))

		mockAnswerSvc.ListMyAnswersFunc = func(ctx context.Context, uID string, pagination dto.Pagination) (*dto.MyAnswersResponse, error) {
			assert.Equal(t, 10, pagination.Limit)
			assert.Equal(t, 0, pagination.Offset)
			return &dto.MyAnswersResponse{Answers: []dto.AnswerResponse{}}, nil
		}

		resp, err := app.Test(httptest.NewRequest("GET", "/answers", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		app, h := newAnswerTestApp(&MockAnswerService{}, &MockQuestionService{})
		app.Get("/answers", h.ListMine)

		resp, err := app.Test(httptest.NewRequest("GET", "/answers", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAnswerHandler_Next(t *testing.T) {
	userID := "userTest123"

	t.Run("Success", func(t *testing.T) {
		mockQuestionSvc := &MockQuestionService{}
		app, h := newAnswerTestApp(&MockAnswerService{}, mockQuestionSvc)
		app.Get("/answers/next", withUserID(userID, h.Next))

		mockQuestionSvc.GetNextQuestionFunc = func(ctx context.Context, uID string) (*dto.NextQuestionResponse, error) {
			assert.Equal(t, userID, uID)
			return &dto.NextQuestionResponse{
				Question: &dto.QuestionResponse{ID: testQuestionID, Text: "How do you handle conflict?"},
				Complete: false,
				Progress: dto.ProgressResponse{Answered: 1, Total: 4, Percent: 25},
			}, nil
		}

		resp, err := app.Test(httptest.NewRequest("GET", "/answers/next", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result dto.NextQuestionResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		require.NotNil(t, result.Question)
		assert.Equal(t, testQuestionID, result.Question.ID)
		assert.False(t, result.Complete)
	})

	t.Run("Questionnaire Complete", func(t *testing.T) {
		mockQuestionSvc := &MockQuestionService{}
		app, h := newAnswerTestApp(&MockAnswerService{}, mockQuestionSvc)
		app.Get("/answers/next", withUserID(userID, h.Next))

		mockQuestionSvc.GetNextQuestionFunc = func(ctx context.Context, uID string) (*dto.NextQuestionResponse, error) {
			return &dto.NextQuestionResponse{
				Complete: true,
				Progress: dto.ProgressResponse{Answered: 4, Total: 4, Percent: 100},
			}, nil
		}

		resp, err := app.Test(httptest.NewRequest("GET", "/answers/next", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result dto.NextQuestionResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Nil(t, result.Question)
		assert.True(t, result.Complete)
		assert.Equal(t, 100, result.Progress.Percent)
	})
}

func TestAnswerHandler_Progress(t *testing.T) {
	userID := "userTest123"

	t.Run("Success", func(t *testing.T) {
		mockQuestionSvc := &MockQuestionService{}
		app, h := newAnswerTestApp(&MockAnswerService{}, mockQuestionSvc)
		app.Get("/answers/progress", withUserID(userID, h.Progress))

		mockQuestionSvc.GetProgressFunc = func(ctx context.Context, uID string) (*dto.ProgressResponse, error) {
			assert.Equal(t, userID, uID)
			return &dto.ProgressResponse{
				Answered: 2,
				Total:    8,
				Percent:  25,
				ByCategory: map[string]dto.CategoryProgress{
					"work": {Answered: 2, Total: 4, Percent: 50},
				},
			}, nil
		}

		resp, err := app.Test(httptest.NewRequest("GET", "/answers/progress", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result dto.ProgressResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, 25, result.Percent)
		assert.Equal(t, 50, result.ByCategory["work"].Percent)
	})
}

func TestAnswerHandler_Delete(t *testing.T) {
	userID := "userTest123"

	t.Run("Success", func(t *testing.T) {
		mockAnswerSvc := &MockAnswerService{}
		app, h := newAnswerTestApp(mockAnswerSvc, &MockQuestionService{})
		app.Delete("/answers/:id", withUserID(userID, h.Delete))

		deleteCalled := false
		mockAnswerSvc.DeleteAnswerFunc = func(ctx context.Context, uID string, answerID string) error {
			deleteCalled = true
			assert.Equal(t, userID, uID)
			assert.Equal(t, testAnswerID, answerID)
			return nil
		}

		resp, err := app.Test(httptest.NewRequest("DELETE", "/answers/"+testAnswerID, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.True(t, deleteCalled)

		var result dto.MessageResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "Answer deleted.", result.Message)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockAnswerSvc := &MockAnswerService{}
		app, h := newAnswerTestApp(mockAnswerSvc, &MockQuestionService{})
		app.Delete("/answers/:id", withUserID(userID, h.Delete))

		mockAnswerSvc.DeleteAnswerFunc = func(ctx context.Context, uID string, answerID string) error {
			return domain.NewAnswerNotFoundError(answerID)
		}

		resp, err := app.Test(httptest.NewRequest("DELETE", "/answers/"+testAnswerID, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var errResp middleware.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, string(domain.CodeAnswerNotFound), errResp.Code)
	})
}
