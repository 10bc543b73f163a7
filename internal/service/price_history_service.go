package service

import (
	"context"
	"time"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/repository"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
)

// PriceSnapshotStore is the persistence the price history needs.
type PriceSnapshotStore interface {
	LatestPrices(ctx context.Context) (map[repository.OfferKey]float64, error)
	InsertBatch(ctx context.Context, snapshots []models.PriceSnapshot) error
	ListByPeptide(ctx context.Context, peptideID string, since time.Time) ([]models.PriceSnapshot, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 365
)

// PricePoint is one observation in an offer series.
type PricePoint struct {
	Price          float64   `json:"price"`
	EffectivePrice float64   `json:"effectivePrice"`
	InStock        bool      `json:"inStock"`
	RecordedAt     time.Time `json:"recordedAt"`
}

// PriceSeries is the history of a single offer.
type PriceSeries struct {
	RetailerID   string       `json:"retailerId"`
	RetailerName string       `json:"retailerName"`
	Size         string       `json:"size"`
	Points       []PricePoint `json:"points"`
}

// PriceHistory is the recorded price history of a peptide.
type PriceHistory struct {
	PeptideID string        `json:"peptideId"`
	Days      int           `json:"days"`
	Series    []PriceSeries `json:"series"`
}

// PriceHistoryService records offer prices observed at sync time and serves
// them back as per-offer series.
type PriceHistoryService struct {
	store   PriceSnapshotStore
	catalog *CatalogService
	now     func() time.Time
}

// NewPriceHistoryService constructs a PriceHistoryService. A nil store
// disables history; reads then return utils.ErrHistoryDisabled.
func NewPriceHistoryService(store PriceSnapshotStore, catalog *CatalogService) *PriceHistoryService {
	return &PriceHistoryService{store: store, catalog: catalog, now: time.Now}
}

// Enabled reports whether a snapshot store is configured.
func (s *PriceHistoryService) Enabled() bool { return s.store != nil }

// Record stores a snapshot for every offer whose effective price differs
// from its latest recorded one, and returns those changes. Offers seen for the
// first time are recorded but not reported as changes.
func (s *PriceHistoryService) Record(ctx context.Context, catalog *models.Catalog) ([]models.PriceChange, error) {
	if s.store == nil {
		return nil, nil
	}
	latest, err := s.store.LatestPrices(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var (
		snapshots []models.PriceSnapshot
		changes   []models.PriceChange
	)
	for _, p := range catalog.Peptides {
		for _, o := range p.Retailers {
			key := repository.OfferKey{PeptideID: p.ID.String(), RetailerID: o.RetailerID.String(), Size: o.Size}
			ep := round2(o.EffectivePrice())
			prev, seen := latest[key]
			if seen && prev == ep {
				continue
			}
			latest[key] = ep
			snapshots = append(snapshots, models.PriceSnapshot{
				PeptideID:      key.PeptideID,
				RetailerID:     key.RetailerID,
				Size:           key.Size,
				Price:          round2(o.Price),
				EffectivePrice: ep,
				InStock:        o.Stock,
				RecordedAt:     now,
			})
			if seen {
				changes = append(changes, models.PriceChange{
					PeptideID:   key.PeptideID,
					PeptideName: p.Name,
					RetailerID:  key.RetailerID,
					Size:        key.Size,
					OldPrice:    prev,
					NewPrice:    ep,
				})
			}
		}
	}

	if err := s.store.InsertBatch(ctx, snapshots); err != nil {
		return nil, err
	}
	return changes, nil
}

// History returns the series of a peptide over the last days days.
func (s *PriceHistoryService) History(ctx context.Context, peptideID string, days int) (*PriceHistory, error) {
	if s.store == nil {
		return nil, utils.ErrHistoryDisabled
	}
	p, err := s.catalog.GetPeptide(ctx, peptideID)
	if err != nil {
		return nil, err
	}

	if days <= 0 {
		days = defaultHistoryDays
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}
	since := s.now().UTC().AddDate(0, 0, -days)

	rows, err := s.store.ListByPeptide(ctx, peptideID, since)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(p.Retailers))
	for _, o := range p.Retailers {
		names[o.RetailerID.String()] = s.catalog.retailerName(o)
	}

	index := make(map[repository.OfferKey]int)
	history := &PriceHistory{PeptideID: peptideID, Days: days, Series: []PriceSeries{}}
	for _, r := range rows {
		key := repository.OfferKey{PeptideID: r.PeptideID, RetailerID: r.RetailerID, Size: r.Size}
		i, ok := index[key]
		if !ok {
			name, known := names[r.RetailerID]
			if !known {
				name = s.catalog.registry.FormatRetailerName(r.RetailerID)
			}
			i = len(history.Series)
			index[key] = i
			history.Series = append(history.Series, PriceSeries{RetailerID: r.RetailerID, RetailerName: name, Size: r.Size})
		}
		history.Series[i].Points = append(history.Series[i].Points, PricePoint{
			Price:          r.Price,
			EffectivePrice: r.EffectivePrice,
			InStock:        r.InStock,
			RecordedAt:     r.RecordedAt,
		})
	}
	return history, nil
}

// Prune deletes snapshots older than retention.
func (s *PriceHistoryService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if s.store == nil || retention <= 0 {
		return 0, nil
	}
	return s.store.DeleteOlderThan(ctx, s.now().UTC().Add(-retention))
}
