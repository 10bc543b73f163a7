package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
	"github.com/peptidedeals/peptidedeals_api/pkg/peptideapi"
)

func TestAdminWritesInvalidateCatalog(t *testing.T) {
	catalog, _, store := newTestCatalog()
	api := &fakeAdminAPI{peptides: testPeptides()}
	svc := NewAdminService(api, catalog)
	ctx := context.Background()

	if _, err := catalog.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.catalog == nil {
		t.Fatal("catalog not cached")
	}

	if _, err := svc.CreatePeptide(ctx, "tok", &peptideapi.PeptideInput{Name: "GHK-Cu"}); err != nil {
		t.Fatalf("CreatePeptide: %v", err)
	}
	if store.catalog != nil {
		t.Fatal("cache not invalidated after create")
	}
}

func TestAdminNotFoundMapping(t *testing.T) {
	svc := NewAdminService(&fakeAdminAPI{}, nil)
	ctx := context.Background()

	if _, err := svc.GetPeptide(ctx, "tok", "x"); !errors.Is(err, utils.ErrPeptideNotFound) {
		t.Fatalf("get err = %v", err)
	}
	if _, err := svc.UpdatePeptide(ctx, "tok", "x", &peptideapi.PeptideInput{}); !errors.Is(err, utils.ErrPeptideNotFound) {
		t.Fatalf("update err = %v", err)
	}
	if err := svc.DeletePeptide(ctx, "tok", "x"); !errors.Is(err, utils.ErrPeptideNotFound) {
		t.Fatalf("delete err = %v", err)
	}
}

func TestAdminExportImportRoundTrip(t *testing.T) {
	api := &fakeAdminAPI{peptides: []models.Peptide{testPeptides()[0], testPeptides()[2]}}
	svc := NewAdminService(api, nil)
	ctx := context.Background()

	data, err := svc.ExportXLSX(ctx, "tok")
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	res, err := svc.ImportXLSX(ctx, "tok", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ImportXLSX: %v", err)
	}
	if res.Parsed != 2 || res.Upstream == nil || res.Upstream.Created != 2 {
		t.Fatalf("import result = %+v", res)
	}
	if len(api.bulk) != 2 || len(api.bulk[0].Retailers) != 3 {
		t.Fatalf("bulk payload = %+v", api.bulk)
	}
}

func TestAdminImportRejectsGarbage(t *testing.T) {
	svc := NewAdminService(&fakeAdminAPI{}, nil)
	_, err := svc.ImportXLSX(context.Background(), "tok", strings.NewReader("not a workbook"))
	if !errors.Is(err, utils.ErrInvalidSpreadsheet) {
		t.Fatalf("err = %v", err)
	}
}
