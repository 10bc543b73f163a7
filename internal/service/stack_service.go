package service

import (
	"context"
	"sync"
	"time"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/stack"
)

// StackService serves stack templates and recommendations from the catalog.
type StackService struct {
	catalog *CatalogService

	mu        sync.Mutex
	builtFrom time.Time
	templates []models.StackTemplate
}

// NewStackService constructs a StackService.
func NewStackService(catalog *CatalogService) *StackService {
	return &StackService{catalog: catalog}
}

// Templates returns the generated templates filtered by goal and difficulty.
// Templates are rebuilt only when the catalog snapshot changes.
func (s *StackService) Templates(ctx context.Context, goal string, difficulty models.StackDifficulty) ([]models.StackTemplate, error) {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	return stack.FilterTemplates(s.templatesFor(catalog), goal, difficulty), nil
}

func (s *StackService) templatesFor(catalog *models.Catalog) []models.StackTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.templates == nil || !s.builtFrom.Equal(catalog.FetchedAt) {
		s.templates = stack.GenerateTemplates(catalog.Peptides, catalog.Categories)
		s.builtFrom = catalog.FetchedAt
	}
	return s.templates
}

// Recommend returns peptides serving any of goals at the given difficulty.
func (s *StackService) Recommend(ctx context.Context, goals []string, difficulty models.StackDifficulty) ([]models.Peptide, error) {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	return stack.Recommend(catalog.Peptides, goals, difficulty), nil
}

// EstimateCustom prices a user-assembled stack of peptide ids.
func (s *StackService) EstimateCustom(ctx context.Context, ids []string) (*models.StackEstimate, error) {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	est := stack.EstimateCustomStack(catalog.Peptides, ids)
	return &est, nil
}
