package service

import (
	"context"
	"testing"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
)

func TestStackTemplatesMemoisedPerSnapshot(t *testing.T) {
	catalog, _, store := newTestCatalog()
	svc := NewStackService(catalog)
	ctx := context.Background()

	all, err := svc.Templates(ctx, "", "")
	if err != nil {
		t.Fatalf("Templates: %v", err)
	}
	if len(all) == 0 {
		t.Fatal("expected templates")
	}
	built := svc.builtFrom

	if _, err := svc.Templates(ctx, "", ""); err != nil {
		t.Fatalf("Templates: %v", err)
	}
	if !svc.builtFrom.Equal(built) {
		t.Fatal("templates rebuilt without a catalog change")
	}

	store.catalog = nil
	if _, err := catalog.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := svc.Templates(ctx, "", ""); err != nil {
		t.Fatalf("Templates: %v", err)
	}
	if svc.builtFrom.Equal(built) && !store.catalog.FetchedAt.Equal(built) {
		t.Fatal("templates not rebuilt after refresh")
	}
}

func TestStackTemplatesFilterByDifficulty(t *testing.T) {
	catalog, _, _ := newTestCatalog()
	svc := NewStackService(catalog)

	got, err := svc.Templates(context.Background(), "", models.DifficultyIntermediate)
	if err != nil {
		t.Fatalf("Templates: %v", err)
	}
	for _, tpl := range got {
		if tpl.Difficulty != models.DifficultyIntermediate {
			t.Fatalf("template %s has difficulty %s", tpl.ID, tpl.Difficulty)
		}
	}
}

func TestStackRecommendAndEstimate(t *testing.T) {
	catalog, _, _ := newTestCatalog()
	svc := NewStackService(catalog)
	ctx := context.Background()

	recs, err := svc.Recommend(ctx, []string{"sleep"}, "")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "3" {
		t.Fatalf("recommend = %v", ids(recs))
	}

	est, err := svc.EstimateCustom(ctx, []string{"2", "missing"})
	if err != nil {
		t.Fatalf("EstimateCustom: %v", err)
	}
	if est.EstimatedCost != 45 || len(est.UnknownIDs) != 1 {
		t.Fatalf("estimate = %+v", est)
	}
}
