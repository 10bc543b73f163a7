package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/peptidedeals/peptidedeals_api/internal/service"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
)

// CalculatorHandler handles the dosage calculator endpoint.
type CalculatorHandler struct {
	calculatorService *service.CalculatorService
}

// NewCalculatorHandler constructs a CalculatorHandler.
func NewCalculatorHandler(calculatorService *service.CalculatorService) *CalculatorHandler {
	return &CalculatorHandler{calculatorService: calculatorService}
}

// Calculate runs a dosage calculation.
func (h *CalculatorHandler) Calculate(c *gin.Context) {
	var req service.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	resp, err := h.calculatorService.Calculate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to calculate dosage")
		return
	}
	utils.Success(c, 200, "Calculation completed", resp)
}
