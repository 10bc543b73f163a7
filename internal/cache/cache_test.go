package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
)

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (m *memKV) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestCatalogCacheRoundTrip(t *testing.T) {
	kv := newMemKV()
	c := NewCatalogCache(kv, time.Minute)
	ctx := context.Background()

	if _, err := c.Get(ctx); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}

	discounted := 39.5
	adv := models.DifficultyAdvanced
	in := &models.Catalog{
		Peptides: []models.Peptide{{
			ID: "1", Name: "BPC-157", Category: "recovery", Unit: "mg", Dosages: []string{"5mg", "10mg"},
			StackDifficulty: &adv,
			Retailers:       []models.RetailerOffer{{RetailerID: "aminoasylum", Price: 45, DiscountedPrice: &discounted, Stock: true}},
		}},
		Categories: []models.Category{{ID: "recovery", Name: "Recovery"}},
		FetchedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := c.Set(ctx, in); err != nil {
		t.Fatal(err)
	}
	if kv.ttls[catalogKey] != time.Minute {
		t.Fatalf("ttl not applied")
	}
	out, err := c.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	p := out.Peptides[0]
	if p.Name != "BPC-157" || len(p.Dosages) != 2 || *p.StackDifficulty != adv {
		t.Fatalf("peptide mismatch %+v", p)
	}
	if p.Retailers[0].EffectivePrice() != 39.5 || !out.FetchedAt.Equal(in.FetchedAt) {
		t.Fatalf("offer or timestamp mismatch %+v", out)
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestSessionStore(t *testing.T) {
	s := NewSessionStore(newMemKV(), time.Hour)
	ctx := context.Background()

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, utils.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	sess := &models.Session{ID: "abc", Token: "tok", DisclaimerAccepted: true, CreatedAt: time.Now().UTC()}
	if err := s.Save(ctx, sess); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if got.Token != "tok" || !got.DisclaimerAccepted {
		t.Fatalf("session mismatch %+v", got)
	}
	if err := s.Delete(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "abc"); !errors.Is(err, utils.ErrSessionNotFound) {
		t.Fatalf("expected not found after delete")
	}
}
