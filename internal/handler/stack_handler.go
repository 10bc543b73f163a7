package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/internal/service"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
)

// StackHandler handles stack template endpoints.
type StackHandler struct {
	stackService *service.StackService
}

// NewStackHandler constructs a StackHandler.
func NewStackHandler(stackService *service.StackService) *StackHandler {
	return &StackHandler{stackService: stackService}
}

func parseDifficulty(c *gin.Context, raw string) (models.StackDifficulty, bool) {
	if raw == "" {
		return "", true
	}
	d, ok := models.ParseStackDifficulty(raw)
	if !ok {
		utils.Error(c, 400, "INVALID_DIFFICULTY", "difficulty must be Beginner, Intermediate or Advanced")
		return "", false
	}
	return d, true
}

// GetTemplates returns generated stack templates filtered by goal and difficulty.
func (h *StackHandler) GetTemplates(c *gin.Context) {
	difficulty, ok := parseDifficulty(c, c.Query("difficulty"))
	if !ok {
		return
	}

	templates, err := h.stackService.Templates(c.Request.Context(), c.Query("goal"), difficulty)
	if err != nil {
		respondError(c, err, "Failed to generate stack templates")
		return
	}
	utils.Success(c, 200, "Stack templates retrieved successfully", gin.H{"templates": templates})
}

// Recommend returns peptides serving the requested goals.
func (h *StackHandler) Recommend(c *gin.Context) {
	var req struct {
		Goals      []string `json:"goals"`
		Difficulty string   `json:"difficulty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	difficulty, ok := parseDifficulty(c, req.Difficulty)
	if !ok {
		return
	}

	peptides, err := h.stackService.Recommend(c.Request.Context(), req.Goals, difficulty)
	if err != nil {
		respondError(c, err, "Failed to recommend peptides")
		return
	}
	utils.Success(c, 200, "Recommendations retrieved successfully", gin.H{"peptides": peptides})
}

// Estimate prices a user-assembled stack.
func (h *StackHandler) Estimate(c *gin.Context) {
	var req struct {
		PeptideIDs []string `json:"peptideIds" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "peptideIds is required")
		return
	}

	est, err := h.stackService.EstimateCustom(c.Request.Context(), req.PeptideIDs)
	if err != nil {
		respondError(c, err, "Failed to estimate stack")
		return
	}
	utils.Success(c, 200, "Stack estimated successfully", est)
}
