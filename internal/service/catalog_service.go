package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/peptidedeals/peptidedeals_api/internal/cache"
	"github.com/peptidedeals/peptidedeals_api/internal/display"
	"github.com/peptidedeals/peptidedeals_api/internal/dosage"
	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/stack"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
)

// CatalogSource is the upstream surface the catalog is read from.
type CatalogSource interface {
	GetPeptides(ctx context.Context) ([]models.Peptide, error)
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetRetailers(ctx context.Context) ([]models.Retailer, error)
}

// CatalogStore caches catalog snapshots between upstream fetches.
type CatalogStore interface {
	Get(ctx context.Context) (*models.Catalog, error)
	Set(ctx context.Context, catalog *models.Catalog) error
	Invalidate(ctx context.Context) error
}

// Sort orders accepted by ListPeptides.
const (
	SortName      = "name"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortDiscount  = "discount"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PeptideFilter narrows and orders the public peptide listing.
type PeptideFilter struct {
	Category string
	Retailer string
	Search   string
	InStock  bool
	Sort     string
	Page     int
	Limit    int
}

// OfferComparison is one offer of a peptide ranked against its siblings.
type OfferComparison struct {
	models.RetailerOffer
	RetailerDisplayName string   `json:"retailerDisplayName"`
	RetailerColor       string   `json:"retailerColor"`
	EffectivePrice      float64  `json:"effectivePrice"`
	PricePerMg          *float64 `json:"pricePerMg,omitempty"`
	Savings             float64  `json:"savings"`
	BestDeal            bool     `json:"bestDeal"`
}

// PeptideComparison is the offer table of a single peptide.
type PeptideComparison struct {
	Peptide  models.Peptide    `json:"peptide"`
	Offers   []OfferComparison `json:"offers"`
	BestDeal *OfferComparison  `json:"bestDeal,omitempty"`
}

// CatalogService loads catalog snapshots and derives the read-only views.
type CatalogService struct {
	source   CatalogSource
	store    CatalogStore
	registry *display.Registry

	mu   sync.RWMutex
	last *models.Catalog
}

// NewCatalogService constructs a CatalogService. A nil registry uses the built-in tables.
func NewCatalogService(source CatalogSource, store CatalogStore, registry *display.Registry) *CatalogService {
	if registry == nil {
		registry = display.Default()
	}
	return &CatalogService{source: source, store: store, registry: registry}
}

// Load returns the cached catalog snapshot, fetching it from the upstream on a miss.
// When the upstream fails the last good snapshot is served; without one the
// error wraps utils.ErrDataUnavailable.
func (s *CatalogService) Load(ctx context.Context) (*models.Catalog, error) {
	cached, err := s.store.Get(ctx)
	if err == nil && len(cached.Peptides) > 0 {
		s.remember(cached)
		return cached, nil
	}
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn().Err(err).Msg("Catalog cache read failed")
	}

	catalog, err := s.Refresh(ctx)
	if err != nil {
		if stale := s.lastGood(); stale != nil {
			log.Warn().Err(err).Time("fetched_at", stale.FetchedAt).Msg("Upstream unavailable, serving stale catalog")
			return stale, nil
		}
		return nil, err
	}
	return catalog, nil
}

// Refresh fetches a fresh snapshot from the upstream and replaces the cached one.
// Unlike Load it never falls back to a stale snapshot.
func (s *CatalogService) Refresh(ctx context.Context) (*models.Catalog, error) {
	catalog, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.store.Set(ctx, catalog); err != nil {
		log.Warn().Err(err).Msg("Failed to cache catalog snapshot")
	}
	s.remember(catalog)
	return catalog, nil
}

// Invalidate drops the cached snapshot so the next Load refetches.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if err := s.store.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate catalog cache")
	}
}

func (s *CatalogService) fetch(ctx context.Context) (*models.Catalog, error) {
	peptides, err := s.source.GetPeptides(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDataUnavailable, err)
	}
	if len(peptides) == 0 {
		return nil, fmt.Errorf("%w: upstream returned no peptides", utils.ErrDataUnavailable)
	}
	for i := range peptides {
		models.NormalizePeptide(&peptides[i])
	}

	// Categories and retailers are derivable from the peptides, so their
	// failures only degrade naming.
	categories, err := s.source.GetCategories(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch categories, deriving from peptides")
		categories = nil
	}
	retailers, err := s.source.GetRetailers(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch retailers, deriving from peptides")
		retailers = nil
	}

	return &models.Catalog{
		Peptides:   peptides,
		Categories: categories,
		Retailers:  retailers,
		FetchedAt:  time.Now().UTC(),
	}, nil
}

func (s *CatalogService) remember(c *models.Catalog) {
	s.mu.Lock()
	s.last = c
	s.mu.Unlock()
}

func (s *CatalogService) lastGood() *models.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// ListPeptides returns one page of peptides matching filter and the total match count.
func (s *CatalogService) ListPeptides(ctx context.Context, filter PeptideFilter) ([]models.Peptide, int, error) {
	catalog, err := s.Load(ctx)
	if err != nil {
		return nil, 0, err
	}

	var categoryRef *models.Category
	if filter.Category != "" {
		for i := range catalog.Categories {
			if stack.MatchesCategory(filter.Category, catalog.Categories[i]) {
				categoryRef = &catalog.Categories[i]
				break
			}
		}
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Peptide, 0, len(catalog.Peptides))
	for _, p := range catalog.Peptides {
		if filter.Category != "" && !matchesCategoryFilter(p, filter.Category, categoryRef) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if filter.Retailer != "" || filter.InStock {
			p.Retailers = filterOffers(p.Retailers, filter.Retailer, filter.InStock)
			if len(p.Retailers) == 0 {
				continue
			}
		}
		matched = append(matched, p)
	}

	sortPeptides(matched, filter.Sort)

	total := len(matched)
	page, limit := normalizePage(filter.Page, filter.Limit)
	start := (page - 1) * limit
	if start >= total {
		return []models.Peptide{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// NormalizePage clamps pagination parameters to the accepted range.
func NormalizePage(page, limit int) (int, int) { return normalizePage(page, limit) }

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func matchesCategoryFilter(p models.Peptide, key string, ref *models.Category) bool {
	if ref != nil && stack.MatchesCategory(p.Category, *ref) {
		return true
	}
	return display.NormalizeCategory(p.Category) == display.NormalizeCategory(key)
}

func filterOffers(offers []models.RetailerOffer, retailer string, inStock bool) []models.RetailerOffer {
	out := make([]models.RetailerOffer, 0, len(offers))
	for _, o := range offers {
		if retailer != "" && !strings.EqualFold(o.RetailerID.String(), retailer) {
			continue
		}
		if inStock && !o.Stock {
			continue
		}
		out = append(out, o)
	}
	return out
}

// lowestPrice is the cheapest positive effective price, or 0 without offers.
func lowestPrice(p models.Peptide) float64 {
	var best float64
	for _, o := range p.Retailers {
		if ep := o.EffectivePrice(); ep > 0 && (best == 0 || ep < best) {
			best = ep
		}
	}
	return best
}

func maxDiscount(p models.Peptide) float64 {
	var best float64
	for _, o := range p.Retailers {
		if d := discountOf(o); d > best {
			best = d
		}
	}
	return best
}

func discountOf(o models.RetailerOffer) float64 {
	if o.DiscountPercentage != nil {
		return *o.DiscountPercentage
	}
	if o.DiscountedPrice != nil && o.Price > 0 && *o.DiscountedPrice < o.Price {
		return (o.Price - *o.DiscountedPrice) / o.Price * 100
	}
	return 0
}

func sortPeptides(peptides []models.Peptide, order string) {
	switch order {
	case SortPriceAsc, SortPriceDesc:
		desc := order == SortPriceDesc
		sort.SliceStable(peptides, func(i, j int) bool {
			a, b := lowestPrice(peptides[i]), lowestPrice(peptides[j])
			// Unpriced peptides sink to the end either way.
			if a == 0 || b == 0 {
				return a != 0 && b == 0
			}
			if desc {
				return a > b
			}
			return a < b
		})
	case SortDiscount:
		sort.SliceStable(peptides, func(i, j int) bool {
			return maxDiscount(peptides[i]) > maxDiscount(peptides[j])
		})
	case SortName:
		sort.SliceStable(peptides, func(i, j int) bool {
			return strings.ToLower(peptides[i].Name) < strings.ToLower(peptides[j].Name)
		})
	}
}

// GetPeptide returns a single peptide by id.
func (s *CatalogService) GetPeptide(ctx context.Context, id string) (*models.Peptide, error) {
	catalog, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := catalog.PeptideByID(id)
	if !ok {
		return nil, utils.ErrPeptideNotFound
	}
	return p, nil
}

// ComparePeptide ranks the offers of a peptide by effective price. The best
// deal is the cheapest in-stock offer, or the cheapest offer when none is in stock.
func (s *CatalogService) ComparePeptide(ctx context.Context, id string) (*PeptideComparison, error) {
	p, err := s.GetPeptide(ctx, id)
	if err != nil {
		return nil, err
	}

	offers := make([]OfferComparison, 0, len(p.Retailers))
	for _, o := range p.Retailers {
		ep := o.EffectivePrice()
		oc := OfferComparison{
			RetailerOffer:       o,
			RetailerDisplayName: s.retailerName(o),
			RetailerColor:       s.registry.GenerateRetailerHexColor(o.RetailerID.String()),
			EffectivePrice:      ep,
		}
		if o.Price > ep {
			oc.Savings = round2(o.Price - ep)
		}
		if mg, ok := dosage.MilligramsInLabel(o.Size); ok && ep > 0 {
			ppm := round2(ep / mg)
			oc.PricePerMg = &ppm
		}
		offers = append(offers, oc)
	}
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].EffectivePrice < offers[j].EffectivePrice
	})

	best := -1
	for i := range offers {
		if offers[i].EffectivePrice <= 0 {
			continue
		}
		if offers[i].Stock {
			best = i
			break
		}
		if best < 0 {
			best = i
		}
	}

	cmp := &PeptideComparison{Peptide: *p, Offers: offers}
	if best >= 0 {
		offers[best].BestDeal = true
		cmp.BestDeal = &offers[best]
	}
	return cmp, nil
}

func (s *CatalogService) retailerName(o models.RetailerOffer) string {
	if o.RetailerName != "" {
		return o.RetailerName
	}
	return s.registry.FormatRetailerName(o.RetailerID.String())
}

// DisplayCategories returns the catalog categories decorated with color and icon.
func (s *CatalogService) DisplayCategories(ctx context.Context) ([]models.DisplayCategory, error) {
	catalog, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.registry.DeriveCategories(catalog.Peptides, catalog.Categories), nil
}

// DisplayRetailers returns the retailers seen in the catalog with display name and color.
func (s *CatalogService) DisplayRetailers(ctx context.Context) ([]models.DisplayRetailer, error) {
	catalog, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.registry.DeriveRetailers(catalog.Peptides), nil
}
