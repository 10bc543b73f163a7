package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/peptidedeals/peptidedeals_api/internal/service"
	"github.com/peptidedeals/peptidedeals_api/internal/sse"
)

// CatalogSyncWorker periodically refreshes the catalog from the upstream API,
// records price snapshots and broadcasts price changes.
type CatalogSyncWorker struct {
	catalogService *service.CatalogService
	historyService *service.PriceHistoryService
	notifier       sse.PriceNotifier
	interval       time.Duration
	retention      time.Duration
}

// NewCatalogSyncWorker constructs a CatalogSyncWorker.
func NewCatalogSyncWorker(
	catalogService *service.CatalogService,
	historyService *service.PriceHistoryService,
	notifier sse.PriceNotifier,
	interval, retention time.Duration,
) *CatalogSyncWorker {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &CatalogSyncWorker{
		catalogService: catalogService,
		historyService: historyService,
		notifier:       notifier,
		interval:       interval,
		retention:      retention,
	}
}

// Start begins the periodic sync loop and listens for context cancellation.
func (w *CatalogSyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting catalog sync worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Catalog sync worker stopped")
			return
		}
	}
}

func (w *CatalogSyncWorker) run(ctx context.Context) {
	log.Info().Msg("Syncing catalog from upstream...")

	start := time.Now()
	catalog, err := w.catalogService.Refresh(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sync catalog")
		return
	}
	changes, err := w.historyService.Record(ctx, catalog)
	if err != nil {
		log.Error().Err(err).Msg("Failed to record price snapshots")
	}
	for _, ch := range changes {
		log.Info().
			Str("peptide_id", ch.PeptideID).
			Str("retailer_id", ch.RetailerID).
			Str("size", ch.Size).
			Float64("old_price", ch.OldPrice).
			Float64("new_price", ch.NewPrice).
			Msg("Price changed")
		w.notifier.NotifyPriceChanged(ch)
	}
	w.notifier.NotifyCatalogRefreshed(len(catalog.Peptides))

	if n, err := w.historyService.Prune(ctx, w.retention); err != nil {
		log.Error().Err(err).Msg("Failed to prune price snapshots")
	} else if n > 0 {
		log.Info().Int64("deleted", n).Msg("Pruned old price snapshots")
	}

	log.Info().
		Int("peptides", len(catalog.Peptides)).
		Int("price_changes", len(changes)).
		Dur("duration", time.Since(start)).
		Msg("Catalog sync completed")
}
