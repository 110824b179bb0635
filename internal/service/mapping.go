package service

import (
	"encoding/json"

	"self-analysis/internal/domain"
	"self-analysis/internal/dto"
)

// Converters from domain entities to response DTOs, shared by the services.

func questionToResponse(q *domain.Question) *dto.QuestionResponse {
	if q == nil {
		return nil
	}
	resp := &dto.QuestionResponse{
		ID:           q.ID,
		Text:         q.Text,
		Type:         string(q.Type),
		ParentID:     q.ParentID,
		Category:     q.Category,
		Required:     q.Required,
		DisplayOrder: q.DisplayOrder,
	}
	if len(q.Options) > 0 {
		resp.Options = make([]dto.OptionResponse, 0, len(q.Options))
		for _, opt := range q.Options {
			resp.Options = append(resp.Options, dto.OptionResponse{
				ID:           opt.ID,
				Label:        opt.Label,
				Value:        opt.Value,
				DisplayOrder: opt.DisplayOrder,
			})
		}
	}
	return resp
}

func questionsToResponses(questions []domain.Question) []dto.QuestionResponse {
	responses := make([]dto.QuestionResponse, 0, len(questions))
	for i := range questions {
		responses = append(responses, *questionToResponse(&questions[i]))
	}
	return responses
}

func progressToResponse(p domain.Progress) dto.ProgressResponse {
	resp := dto.ProgressResponse{
		Answered:   p.Answered,
		Total:      p.Total,
		Percent:    p.Percent,
		ByCategory: make(map[string]dto.CategoryProgress, len(p.ByCategory)),
	}
	for category, cp := range p.ByCategory {
		resp.ByCategory[category] = dto.CategoryProgress{
			Answered: cp.Answered,
			Total:    cp.Total,
			Percent:  cp.Percent,
		}
	}
	return resp
}

func scoresToMap(scores domain.TraitScores) map[string]float64 {
	out := make(map[string]float64, len(scores))
	for key, value := range scores {
		out[key] = value
	}
	return out
}

func answerToResponse(a *domain.Answer, questionText string) dto.AnswerResponse {
	var payload json.RawMessage
	if a.Payload != nil {
		if raw, err := json.Marshal(a.Payload); err == nil {
			payload = raw
		}
	}
	return dto.AnswerResponse{
		ID:             a.ID,
		QuestionID:     a.QuestionID,
		QuestionText:   questionText,
		Payload:        payload,
		PositiveValues: scoresToMap(a.PositiveValues),
		NegativeValues: scoresToMap(a.NegativeValues),
		Quote:          a.Quote,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func analysisToResponse(s *domain.SelfAnalysis) dto.SelfAnalysisResponse {
	return dto.SelfAnalysisResponse{
		CombinedPositives: scoresToMap(s.CombinedPositives),
		CombinedNegatives: scoresToMap(s.CombinedNegatives),
		Quote:             s.Quote,
		UpdatedAt:         s.UpdatedAt,
	}
}

func traitToResponse(t *domain.Trait) dto.TraitResponse {
	return dto.TraitResponse{
		ID:          t.ID,
		Name:        t.Name,
		Polarity:    string(t.Polarity),
		Description: t.Description,
		MinValue:    t.MinValue,
		MaxValue:    t.MaxValue,
	}
}
