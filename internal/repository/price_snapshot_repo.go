package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
)

// PriceSnapshotRepository handles data access for recorded offer prices.
type PriceSnapshotRepository struct {
	db *sqlx.DB
}

// NewPriceSnapshotRepository creates a new PriceSnapshotRepository.
func NewPriceSnapshotRepository(db *sqlx.DB) *PriceSnapshotRepository {
	return &PriceSnapshotRepository{db: db}
}

// OfferKey identifies one offer across syncs.
type OfferKey struct {
	PeptideID  string
	RetailerID string
	Size       string
}

// LatestPrices returns the most recent effective price per offer.
func (r *PriceSnapshotRepository) LatestPrices(ctx context.Context) (map[OfferKey]float64, error) {
	const q = `
		SELECT DISTINCT ON (peptide_id, retailer_id, size)
			peptide_id, retailer_id, size, effective_price
		FROM price_snapshots
		ORDER BY peptide_id, retailer_id, size, recorded_at DESC`

	var rows []struct {
		PeptideID      string  `db:"peptide_id"`
		RetailerID     string  `db:"retailer_id"`
		Size           string  `db:"size"`
		EffectivePrice float64 `db:"effective_price"`
	}
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	out := make(map[OfferKey]float64, len(rows))
	for _, row := range rows {
		out[OfferKey{PeptideID: row.PeptideID, RetailerID: row.RetailerID, Size: row.Size}] = row.EffectivePrice
	}
	return out, nil
}

// InsertBatch records snapshots in a single transaction.
func (r *PriceSnapshotRepository) InsertBatch(ctx context.Context, snapshots []models.PriceSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO price_snapshots (peptide_id, retailer_id, size, price, effective_price, in_stock, recorded_at)
		VALUES (:peptide_id, :retailer_id, :size, :price, :effective_price, :in_stock, :recorded_at)`
	stmt, err := tx.PrepareNamedContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range snapshots {
		if _, err := stmt.ExecContext(ctx, &snapshots[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByPeptide returns the snapshots of a peptide recorded since since, oldest first.
func (r *PriceSnapshotRepository) ListByPeptide(ctx context.Context, peptideID string, since time.Time) ([]models.PriceSnapshot, error) {
	const q = `
		SELECT id, peptide_id, retailer_id, size, price, effective_price, in_stock, recorded_at
		FROM price_snapshots
		WHERE peptide_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC, retailer_id, size`

	var out []models.PriceSnapshot
	if err := r.db.SelectContext(ctx, &out, q, peptideID, since); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteOlderThan prunes snapshots recorded before cutoff and returns the number removed.
func (r *PriceSnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM price_snapshots WHERE recorded_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Ping checks the database connection.
func (r *PriceSnapshotRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
