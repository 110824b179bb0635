package service

import (
	"context"
	"fmt"

	"self-analysis/internal/domain"
	"self-analysis/internal/dto"
	"self-analysis/internal/logger"

	"go.uber.org/zap"
)

// TraitService defines the interface for trait catalog operations
type TraitService interface {
	ListTraits(ctx context.Context, filters dto.TraitFilters) ([]dto.TraitResponse, error)

	// CheckOverlay compares a scored trait map against the catalog and
	// returns human-readable anomalies (wrong polarity, out-of-bounds
	// values). Purely advisory: keys without a catalog row are fine, and a
	// repository failure yields no anomalies.
	CheckOverlay(ctx context.Context, positive, negative domain.TraitScores) []string
}

// traitService implements TraitService
type traitService struct {
	traitRepo domain.TraitRepository
}

// NewTraitService creates a new instance of traitService
func NewTraitService(traitRepo domain.TraitRepository) TraitService {
	return &traitService{traitRepo: traitRepo}
}

// ListTraits implements TraitService
func (s *traitService) ListTraits(ctx context.Context, filters dto.TraitFilters) ([]dto.TraitResponse, error) {
	traits, err := s.traitRepo.ListTraits(ctx, filters)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list traits", err)
	}

	responses := make([]dto.TraitResponse, 0, len(traits))
	for i := range traits {
		responses = append(responses, traitToResponse(&traits[i]))
	}
	return responses, nil
}

// CheckOverlay implements TraitService
func (s *traitService) CheckOverlay(ctx context.Context, positive, negative domain.TraitScores) []string {
	names := make([]string, 0, len(positive)+len(negative))
	for name := range positive {
		names = append(names, name)
	}
	for name := range negative {
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}

	traits, err := s.traitRepo.GetTraitsByNames(ctx, names)
	if err != nil {
		logger.Get().Warn("TraitService: Overlay lookup failed, skipping overlay check", zap.Error(err))
		return nil
	}
	byName := make(map[string]*domain.Trait, len(traits))
	for i := range traits {
		byName[traits[i].Name] = &traits[i]
	}

	var anomalies []string
	check := func(scores domain.TraitScores, polarity domain.Polarity) {
		for name, value := range scores {
			trait, ok := byName[name]
			if !ok {
				continue // no catalog row, nothing to check against
			}
			if trait.Polarity != polarity {
				anomalies = append(anomalies, fmt.Sprintf("trait %q is catalogued as %s but was scored as %s", name, trait.Polarity, polarity))
			}
			if value < trait.MinValue || value > trait.MaxValue {
				anomalies = append(anomalies, fmt.Sprintf("trait %q score %.2f is outside its catalog bounds [%.0f,%.0f]", name, value, trait.MinValue, trait.MaxValue))
			}
		}
	}
	check(positive, domain.PolarityPositive)
	check(negative, domain.PolarityNegative)
	return anomalies
}
