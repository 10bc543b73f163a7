package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/peptidedeals/peptidedeals_api/internal/cache"
	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/repository"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
	"github.com/peptidedeals/peptidedeals_api/pkg/peptideapi"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func difficulty(d models.StackDifficulty) *models.StackDifficulty { return &d }

func testPeptides() []models.Peptide {
	return []models.Peptide{
		{
			ID: "1", Name: "BPC-157", Category: "healing", Unit: "mg",
			Dosages:             []string{"250mcg", "500mcg"},
			RecommendedForGoals: []string{"recovery"},
			StackDifficulty:     difficulty(models.DifficultyBeginner),
			Retailers: []models.RetailerOffer{
				{RetailerID: "aminoasylum", Size: "5mg", Price: 40, DiscountedPrice: f64(30), Stock: true},
				{RetailerID: "limitless", RetailerName: "Limitless Life", Size: "10mg", Price: 50, Stock: false},
				{RetailerID: "peptidesciences", Size: "5mg", Price: 60, Stock: true},
			},
		},
		{
			ID: "2", Name: "TB-500", Category: "healing", Unit: "mg",
			Dosages: []string{"2mg", "5mg"},
			Retailers: []models.RetailerOffer{
				{RetailerID: "aminoasylum", Size: "5mg", Price: 45, Stock: true},
			},
		},
		{
			ID: "3", Name: "Ipamorelin", Category: "growth-hormone", Unit: "mcg",
			Dosages:             []string{"100mcg"},
			RecommendedForGoals: []string{"sleep"},
			Retailers: []models.RetailerOffer{
				{RetailerID: "limitless", Size: "2mg", Price: 25, DiscountPercentage: f64(20), DiscountedPrice: f64(20), Stock: true},
			},
		},
		{ID: "4", Name: "Semax", Category: "nootropic", Unit: "mg", Dosages: []string{"300mcg"}},
	}
}

type fakeSource struct {
	mu         sync.Mutex
	peptides   []models.Peptide
	categories []models.Category
	err        error
	calls      int
}

func (f *fakeSource) GetPeptides(ctx context.Context) ([]models.Peptide, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Peptide, len(f.peptides))
	copy(out, f.peptides)
	return out, nil
}

func (f *fakeSource) GetCategories(ctx context.Context) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeSource) GetRetailers(ctx context.Context) ([]models.Retailer, error) {
	return nil, errors.New("retailers endpoint down")
}

type memCatalogStore struct {
	catalog *models.Catalog
}

func (m *memCatalogStore) Get(ctx context.Context) (*models.Catalog, error) {
	if m.catalog == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.catalog, nil
}

func (m *memCatalogStore) Set(ctx context.Context, c *models.Catalog) error {
	m.catalog = c
	return nil
}

func (m *memCatalogStore) Invalidate(ctx context.Context) error {
	m.catalog = nil
	return nil
}

func newTestCatalog() (*CatalogService, *fakeSource, *memCatalogStore) {
	src := &fakeSource{
		peptides: testPeptides(),
		categories: []models.Category{
			{ID: "healing", Name: "Healing"},
			{ID: "7", Name: "Growth Hormone"},
		},
	}
	store := &memCatalogStore{}
	return NewCatalogService(src, store, nil), src, store
}

type memSessionRepo struct {
	sessions map[string]models.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]models.Session)}
}

func (m *memSessionRepo) Get(ctx context.Context, id string) (*models.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, utils.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memSessionRepo) Save(ctx context.Context, sess *models.Session) error {
	m.sessions[sess.ID] = *sess
	return nil
}

func (m *memSessionRepo) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

type fakeAuth struct {
	token string
	err   error
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (string, error) {
	return f.token, f.err
}

type fakeAdminAPI struct {
	peptides []models.Peptide
	bulk     []peptideapi.PeptideInput
	deleted  []string
	err      error
}

func (f *fakeAdminAPI) AdminListPeptides(ctx context.Context, token string) ([]models.Peptide, error) {
	return f.peptides, f.err
}

func (f *fakeAdminAPI) AdminGetPeptide(ctx context.Context, token, id string) (*models.Peptide, error) {
	for i := range f.peptides {
		if f.peptides[i].ID.String() == id {
			return &f.peptides[i], nil
		}
	}
	return nil, &peptideapi.APIError{Status: 404, Message: "not found"}
}

func (f *fakeAdminAPI) AdminCreatePeptide(ctx context.Context, token string, in *peptideapi.PeptideInput) (*models.Peptide, error) {
	p := models.Peptide{ID: "99", Name: in.Name}
	f.peptides = append(f.peptides, p)
	return &p, nil
}

func (f *fakeAdminAPI) AdminUpdatePeptide(ctx context.Context, token, id string, in *peptideapi.PeptideInput) (*models.Peptide, error) {
	p, err := f.AdminGetPeptide(ctx, token, id)
	if err != nil {
		return nil, err
	}
	p.Name = in.Name
	return p, nil
}

func (f *fakeAdminAPI) AdminDeletePeptide(ctx context.Context, token, id string) error {
	if _, err := f.AdminGetPeptide(ctx, token, id); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAdminAPI) AdminBulkCreatePeptides(ctx context.Context, token string, in []peptideapi.PeptideInput) (*peptideapi.BulkResult, error) {
	f.bulk = append(f.bulk, in...)
	return &peptideapi.BulkResult{Created: len(in)}, nil
}

type memSnapshotStore struct {
	rows []models.PriceSnapshot
}

func (m *memSnapshotStore) LatestPrices(ctx context.Context) (map[repository.OfferKey]float64, error) {
	sorted := make([]models.PriceSnapshot, len(m.rows))
	copy(sorted, m.rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RecordedAt.Before(sorted[j].RecordedAt) })
	out := make(map[repository.OfferKey]float64)
	for _, r := range sorted {
		out[repository.OfferKey{PeptideID: r.PeptideID, RetailerID: r.RetailerID, Size: r.Size}] = r.EffectivePrice
	}
	return out, nil
}

func (m *memSnapshotStore) InsertBatch(ctx context.Context, snapshots []models.PriceSnapshot) error {
	m.rows = append(m.rows, snapshots...)
	return nil
}

func (m *memSnapshotStore) ListByPeptide(ctx context.Context, peptideID string, since time.Time) ([]models.PriceSnapshot, error) {
	var out []models.PriceSnapshot
	for _, r := range m.rows {
		if r.PeptideID == peptideID && !r.RecordedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memSnapshotStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	kept := m.rows[:0]
	var n int64
	for _, r := range m.rows {
		if r.RecordedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}
