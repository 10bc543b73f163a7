package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/peptidedeals/peptidedeals_api/internal/middleware"
	"github.com/peptidedeals/peptidedeals_api/internal/service"
	"github.com/peptidedeals/peptidedeals_api/internal/spreadsheet"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
	"github.com/peptidedeals/peptidedeals_api/pkg/peptideapi"
)

// maxImportSize bounds uploaded workbooks.
const maxImportSize = 10 << 20

// AdminHandler forwards back-office peptide management to the catalog API.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListPeptides returns every peptide from the admin API.
func (h *AdminHandler) ListPeptides(c *gin.Context) {
	peptides, err := h.adminService.ListPeptides(c.Request.Context(), middleware.AdminTokenFrom(c))
	if err != nil {
		respondError(c, err, "Failed to list peptides")
		return
	}
	utils.Success(c, 200, "Peptides retrieved successfully", gin.H{"peptides": peptides})
}

// GetPeptide returns one peptide from the admin API.
func (h *AdminHandler) GetPeptide(c *gin.Context) {
	p, err := h.adminService.GetPeptide(c.Request.Context(), middleware.AdminTokenFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get peptide")
		return
	}
	utils.Success(c, 200, "Peptide retrieved successfully", p)
}

// CreatePeptide creates a peptide.
func (h *AdminHandler) CreatePeptide(c *gin.Context) {
	var req peptideapi.PeptideInput
	if !bindPeptide(c, &req) {
		return
	}
	p, err := h.adminService.CreatePeptide(c.Request.Context(), middleware.AdminTokenFrom(c), &req)
	if err != nil {
		respondError(c, err, "Failed to create peptide")
		return
	}
	utils.Success(c, 201, "Peptide created successfully", p)
}

// UpdatePeptide replaces a peptide.
func (h *AdminHandler) UpdatePeptide(c *gin.Context) {
	var req peptideapi.PeptideInput
	if !bindPeptide(c, &req) {
		return
	}
	p, err := h.adminService.UpdatePeptide(c.Request.Context(), middleware.AdminTokenFrom(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update peptide")
		return
	}
	utils.Success(c, 200, "Peptide updated successfully", p)
}

// DeletePeptide removes a peptide.
func (h *AdminHandler) DeletePeptide(c *gin.Context) {
	if err := h.adminService.DeletePeptide(c.Request.Context(), middleware.AdminTokenFrom(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete peptide")
		return
	}
	utils.Success(c, 200, "Peptide deleted successfully", nil)
}

// BulkCreate creates many peptides at once.
func (h *AdminHandler) BulkCreate(c *gin.Context) {
	var req struct {
		Peptides []peptideapi.PeptideInput `json:"peptides" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "peptides is required")
		return
	}
	for i := range req.Peptides {
		if req.Peptides[i].Name == "" {
			utils.Error(c, 400, "VALIDATION_ERROR", fmt.Sprintf("peptides[%d].name is required", i))
			return
		}
	}

	res, err := h.adminService.BulkCreate(c.Request.Context(), middleware.AdminTokenFrom(c), req.Peptides)
	if err != nil {
		respondError(c, err, "Failed to bulk create peptides")
		return
	}
	utils.Success(c, 201, "Bulk create completed", res)
}

// Export downloads every offer as an XLSX workbook.
func (h *AdminHandler) Export(c *gin.Context) {
	data, err := h.adminService.ExportXLSX(c.Request.Context(), middleware.AdminTokenFrom(c))
	if err != nil {
		respondError(c, err, "Failed to export peptides")
		return
	}
	filename := fmt.Sprintf("peptides_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(200, spreadsheet.ContentType, data)
}

// Import bulk-creates the peptides of an uploaded XLSX workbook (form field "file").
func (h *AdminHandler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Missing file upload")
		return
	}
	if fh.Size > maxImportSize {
		utils.Error(c, 413, "FILE_TOO_LARGE", "Workbook exceeds 10MB")
		return
	}
	f, err := fh.Open()
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Unreadable file upload")
		return
	}
	defer f.Close()

	res, err := h.adminService.ImportXLSX(c.Request.Context(), middleware.AdminTokenFrom(c), f)
	if err != nil {
		respondError(c, err, "Failed to import peptides")
		return
	}
	utils.Success(c, 200, "Import completed", res)
}

func bindPeptide(c *gin.Context, req *peptideapi.PeptideInput) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return false
	}
	if req.Name == "" {
		utils.Error(c, 400, "VALIDATION_ERROR", "name is required")
		return false
	}
	for _, o := range req.Retailers {
		if o.Price < 0 || (o.DiscountedPrice != nil && *o.DiscountedPrice < 0) {
			utils.Error(c, 400, "VALIDATION_ERROR", "prices must not be negative")
			return false
		}
	}
	return true
}
