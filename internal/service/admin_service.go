package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/spreadsheet"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
	"github.com/peptidedeals/peptidedeals_api/pkg/peptideapi"
)

// AdminAPI is the authenticated upstream surface for catalog writes.
type AdminAPI interface {
	AdminListPeptides(ctx context.Context, token string) ([]models.Peptide, error)
	AdminGetPeptide(ctx context.Context, token, id string) (*models.Peptide, error)
	AdminCreatePeptide(ctx context.Context, token string, in *peptideapi.PeptideInput) (*models.Peptide, error)
	AdminUpdatePeptide(ctx context.Context, token, id string, in *peptideapi.PeptideInput) (*models.Peptide, error)
	AdminDeletePeptide(ctx context.Context, token, id string) error
	AdminBulkCreatePeptides(ctx context.Context, token string, in []peptideapi.PeptideInput) (*peptideapi.BulkResult, error)
}

// ImportResult summarises a spreadsheet import.
type ImportResult struct {
	Parsed    int                    `json:"parsed"`
	Upstream  *peptideapi.BulkResult `json:"upstream,omitempty"`
	RowErrors []spreadsheet.RowError `json:"rowErrors,omitempty"`
}

// AdminService forwards back-office writes to the upstream and keeps the
// local catalog snapshot in step with them.
type AdminService struct {
	api     AdminAPI
	catalog *CatalogService
}

// NewAdminService constructs an AdminService.
func NewAdminService(api AdminAPI, catalog *CatalogService) *AdminService {
	return &AdminService{api: api, catalog: catalog}
}

// ListPeptides returns the full admin view of the catalog.
func (s *AdminService) ListPeptides(ctx context.Context, token string) ([]models.Peptide, error) {
	return s.api.AdminListPeptides(ctx, token)
}

// GetPeptide returns one peptide from the admin API.
func (s *AdminService) GetPeptide(ctx context.Context, token, id string) (*models.Peptide, error) {
	p, err := s.api.AdminGetPeptide(ctx, token, id)
	if peptideapi.IsNotFound(err) {
		return nil, utils.ErrPeptideNotFound
	}
	return p, err
}

// CreatePeptide creates a peptide upstream.
func (s *AdminService) CreatePeptide(ctx context.Context, token string, in *peptideapi.PeptideInput) (*models.Peptide, error) {
	p, err := s.api.AdminCreatePeptide(ctx, token, in)
	if err != nil {
		return nil, err
	}
	s.catalogChanged(ctx, "create", p.ID.String())
	return p, nil
}

// UpdatePeptide replaces a peptide upstream.
func (s *AdminService) UpdatePeptide(ctx context.Context, token, id string, in *peptideapi.PeptideInput) (*models.Peptide, error) {
	p, err := s.api.AdminUpdatePeptide(ctx, token, id, in)
	if peptideapi.IsNotFound(err) {
		return nil, utils.ErrPeptideNotFound
	}
	if err != nil {
		return nil, err
	}
	s.catalogChanged(ctx, "update", id)
	return p, nil
}

// DeletePeptide removes a peptide upstream.
func (s *AdminService) DeletePeptide(ctx context.Context, token, id string) error {
	err := s.api.AdminDeletePeptide(ctx, token, id)
	if peptideapi.IsNotFound(err) {
		return utils.ErrPeptideNotFound
	}
	if err != nil {
		return err
	}
	s.catalogChanged(ctx, "delete", id)
	return nil
}

// BulkCreate creates many peptides in one upstream call.
func (s *AdminService) BulkCreate(ctx context.Context, token string, in []peptideapi.PeptideInput) (*peptideapi.BulkResult, error) {
	res, err := s.api.AdminBulkCreatePeptides(ctx, token, in)
	if err != nil {
		return nil, err
	}
	s.catalogChanged(ctx, "bulk_create", "")
	return res, nil
}

// ExportXLSX renders every peptide offer as a workbook.
func (s *AdminService) ExportXLSX(ctx context.Context, token string) ([]byte, error) {
	peptides, err := s.api.AdminListPeptides(ctx, token)
	if err != nil {
		return nil, err
	}
	data, err := spreadsheet.Export(peptides)
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}
	return data, nil
}

// ImportXLSX parses a workbook and bulk-creates its peptides upstream.
// Malformed workbooks wrap utils.ErrInvalidSpreadsheet.
func (s *AdminService) ImportXLSX(ctx context.Context, token string, r io.Reader) (*ImportResult, error) {
	inputs, rowErrs, err := spreadsheet.Import(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidSpreadsheet, err)
	}

	res := &ImportResult{Parsed: len(inputs), RowErrors: rowErrs}
	if len(inputs) == 0 {
		return res, nil
	}

	bulk, err := s.BulkCreate(ctx, token, inputs)
	if err != nil {
		return nil, err
	}
	res.Upstream = bulk

	log.Info().Int("parsed", res.Parsed).Int("row_errors", len(rowErrs)).Int("created", bulk.Created).Msg("Spreadsheet import completed")
	return res, nil
}

func (s *AdminService) catalogChanged(ctx context.Context, action, id string) {
	log.Info().Str("action", action).Str("peptide_id", id).Msg("Catalog changed by admin")
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
}
