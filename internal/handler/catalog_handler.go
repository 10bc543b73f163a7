package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/peptidedeals/peptidedeals_api/internal/service"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
)

// CatalogHandler handles the public catalog endpoints.
type CatalogHandler struct {
	catalogService *service.CatalogService
	historyService *service.PriceHistoryService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService, historyService *service.PriceHistoryService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, historyService: historyService}
}

// ListPeptides returns peptides with optional filters, sorting and pagination.
func (h *CatalogHandler) ListPeptides(c *gin.Context) {
	filter := service.PeptideFilter{
		Category: c.Query("category"),
		Retailer: c.Query("retailer"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
	}
	if v := c.Query("inStock"); v != "" {
		filter.InStock, _ = strconv.ParseBool(v)
	}

	// pagination
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	filter.Page, filter.Limit = service.NormalizePage(filter.Page, filter.Limit)

	switch filter.Sort {
	case "", service.SortName, service.SortPriceAsc, service.SortPriceDesc, service.SortDiscount:
	default:
		utils.Error(c, 400, "INVALID_SORT", "sort must be one of name, price_asc, price_desc, discount")
		return
	}

	peptides, total, err := h.catalogService.ListPeptides(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to get peptides")
		return
	}

	utils.SuccessWithPagination(c, 200, "Peptides retrieved successfully", gin.H{
		"peptides": peptides,
	}, filter.Page, filter.Limit, total)
}

// GetPeptide returns a single peptide.
func (h *CatalogHandler) GetPeptide(c *gin.Context) {
	p, err := h.catalogService.GetPeptide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get peptide")
		return
	}
	utils.Success(c, 200, "Peptide retrieved successfully", p)
}

// ComparePeptide returns the offers of a peptide ranked by effective price.
func (h *CatalogHandler) ComparePeptide(c *gin.Context) {
	cmp, err := h.catalogService.ComparePeptide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to compare offers")
		return
	}
	utils.Success(c, 200, "Offers compared successfully", cmp)
}

// PriceHistory returns the recorded price series of a peptide.
func (h *CatalogHandler) PriceHistory(c *gin.Context) {
	days := 0
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			utils.Error(c, 400, "INVALID_DAYS", "days must be a positive integer")
			return
		}
		days = n
	}

	history, err := h.historyService.History(c.Request.Context(), c.Param("id"), days)
	if err != nil {
		respondError(c, err, "Failed to get price history")
		return
	}
	utils.Success(c, 200, "Price history retrieved successfully", history)
}

// GetCategories returns the catalog categories with color and icon.
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	cats, err := h.catalogService.DisplayCategories(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get categories")
		return
	}
	utils.Success(c, 200, "Categories retrieved successfully", gin.H{"categories": cats})
}

// GetRetailers returns the retailers with display name and color.
func (h *CatalogHandler) GetRetailers(c *gin.Context) {
	rets, err := h.catalogService.DisplayRetailers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get retailers")
		return
	}
	utils.Success(c, 200, "Retailers retrieved successfully", gin.H{"retailers": rets})
}
