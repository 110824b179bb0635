package service

import (
	"context"
	"errors"
	"testing"

	"self-analysis/internal/domain"
	"self-analysis/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func catalogTraits() []domain.Trait {
	return []domain.Trait{
		{ID: "t1", Name: "curiosity", Polarity: domain.PolarityPositive, IsActive: true, MinValue: 0, MaxValue: 100},
		{ID: "t2", Name: "impatience", Polarity: domain.PolarityNegative, IsActive: true, MinValue: 10, MaxValue: 90},
	}
}

// --- Tests for ListTraits ---

func TestListTraits(t *testing.T) {
	t.Run("maps catalog rows", func(t *testing.T) {
		traitRepo := new(MockTraitRepository)
		svc := NewTraitService(traitRepo)

		filters := dto.TraitFilters{Polarity: "positive"}
		traitRepo.On("ListTraits", mock.Anything, filters).Return(catalogTraits()[:1], nil).Once()

		resp, err := svc.ListTraits(context.Background(), filters)
		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "curiosity", resp[0].Name)
		assert.Equal(t, "positive", resp[0].Polarity)
	})

	t.Run("repository failure wraps", func(t *testing.T) {
		traitRepo := new(MockTraitRepository)
		svc := NewTraitService(traitRepo)

		traitRepo.On("ListTraits", mock.Anything, mock.Anything).
			Return(nil, errors.New("ORA-12170: connect timeout")).Once()

		_, err := svc.ListTraits(context.Background(), dto.TraitFilters{})
		var domainErr *domain.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeInternal, domainErr.Code)
	})
}

// --- Tests for CheckOverlay ---

func TestCheckOverlay(t *testing.T) {
	t.Run("clean scores yield no anomalies", func(t *testing.T) {
		traitRepo := new(MockTraitRepository)
		svc := NewTraitService(traitRepo)

		traitRepo.On("GetTraitsByNames", mock.Anything, mock.Anything).Return(catalogTraits(), nil).Once()

		anomalies := svc.CheckOverlay(context.Background(),
			domain.TraitScores{"curiosity": 80},
			domain.TraitScores{"impatience": 40})
		assert.Empty(t, anomalies)
	})

	t.Run("wrong polarity is reported", func(t *testing.T) {
		traitRepo := new(MockTraitRepository)
		svc := NewTraitService(traitRepo)

		traitRepo.On("GetTraitsByNames", mock.Anything, mock.Anything).Return(catalogTraits(), nil).Once()

		// impatience is catalogued negative but scored positive.
		anomalies := svc.CheckOverlay(context.Background(),
			domain.TraitScores{"impatience": 40},
			domain.TraitScores{})
		assert.Len(t, anomalies, 1)
		assert.Contains(t, anomalies[0], "impatience")
		assert.Contains(t, anomalies[0], "catalogued as negative")
	})

	t.Run("out-of-bounds score is reported", func(t *testing.T) {
		traitRepo := new(MockTraitRepository)
		svc := NewTraitService(traitRepo)

		traitRepo.On("GetTraitsByNames", mock.Anything, mock.Anything).Return(catalogTraits(), nil).Once()

		// impatience is bounded to [10,90] by its catalog row.
		anomalies := svc.CheckOverlay(context.Background(),
			domain.TraitScores{},
			domain.TraitScores{"impatience": 95})
		assert.Len(t, anomalies, 1)
		assert.Contains(t, anomalies[0], "outside its catalog bounds")
	})

	t.Run("keys without catalog rows pass silently", func(t *testing.T) {
		traitRepo := new(MockTraitRepository)
		svc := NewTraitService(traitRepo)

		traitRepo.On("GetTraitsByNames", mock.Anything, mock.Anything).Return([]domain.Trait{}, nil).Once()

		anomalies := svc.CheckOverlay(context.Background(),
			domain.TraitScores{"free-form-trait": 55},
			domain.TraitScores{})
		assert.Empty(t, anomalies)
	})

	t.Run("empty maps skip the repository", func(t *testing.T) {
		traitRepo := new(MockTraitRepository)
		svc := NewTraitService(traitRepo)

		anomalies := svc.CheckOverlay(context.Background(), domain.TraitScores{}, domain.TraitScores{})
		assert.Nil(t, anomalies)
		traitRepo.AssertNotCalled(t, "GetTraitsByNames", mock.Anything, mock.Anything)
	})

	t.Run("repository failure stays advisory", func(t *testing.T) {
		traitRepo := new(MockTraitRepository)
		svc := NewTraitService(traitRepo)

		traitRepo.On("GetTraitsByNames", mock.Anything, mock.Anything).
			Return(nil, errors.New("ORA-12170: connect timeout")).Once()

		anomalies := svc.CheckOverlay(context.Background(),
			domain.TraitScores{"curiosity": 80},
			domain.TraitScores{})
		assert.Nil(t, anomalies)
	})
}
