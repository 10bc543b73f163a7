package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/peptidedeals/peptidedeals_api/internal/dosage"
	"github.com/peptidedeals/peptidedeals_api/internal/utils"
	"github.com/peptidedeals/peptidedeals_api/pkg/peptideapi"
)

// respondError maps service errors onto the response envelope. Unknown errors
// are logged and reported as 500 with fallback as the message.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, utils.ErrDataUnavailable):
		utils.Error(c, 503, "DATA_UNAVAILABLE", "Catalog data is temporarily unavailable")
	case errors.Is(err, utils.ErrPeptideNotFound):
		utils.Error(c, 404, "PEPTIDE_NOT_FOUND", "Peptide not found")
	case errors.Is(err, utils.ErrOfferNotFound):
		utils.Error(c, 404, "OFFER_NOT_FOUND", "Retailer offer not found for this peptide")
	case errors.Is(err, utils.ErrSessionNotFound):
		utils.Error(c, 401, "SESSION_NOT_FOUND", "Session not found or expired")
	case errors.Is(err, utils.ErrInvalidCredentials):
		utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, utils.ErrTokenExpired):
		utils.Error(c, 401, "TOKEN_EXPIRED", "Admin session expired, please log in again")
	case errors.Is(err, utils.ErrNotAuthenticated):
		utils.Error(c, 401, "UNAUTHORIZED", "Admin login required")
	case errors.Is(err, utils.ErrHistoryDisabled):
		utils.Error(c, 503, "HISTORY_UNAVAILABLE", "Price history is not available")
	case errors.Is(err, utils.ErrInvalidSpreadsheet):
		utils.Error(c, 400, "INVALID_SPREADSHEET", err.Error())
	case dosage.IsValidationError(err):
		utils.Error(c, 400, "VALIDATION_ERROR", err.Error())
	default:
		var apiErr *peptideapi.APIError
		if errors.As(err, &apiErr) {
			status := apiErr.Status
			if status < 400 || status > 599 {
				status = 502
			}
			code := apiErr.Code
			if code == "" {
				code = "UPSTREAM_ERROR"
			}
			log.Warn().Int("status", apiErr.Status).Str("code", apiErr.Code).Msg(apiErr.Message)
			utils.Error(c, status, code, apiErr.Message)
			return
		}
		log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		utils.Error(c, 500, "INTERNAL_ERROR", fallback)
	}
}
