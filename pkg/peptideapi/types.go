package peptideapi

import "github.com/peptidedeals/peptidedeals_api/internal/models"

// LoginRequest is the admin login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued by the upstream.
type LoginResponse struct {
	Token string `json:"token"`
}

// PeptideInput is the create/update payload for admin writes.
type PeptideInput struct {
	Name                string                  `json:"name"`
	Category            string                  `json:"category"`
	Unit                string                  `json:"unit"`
	Dosages             []string                `json:"dosages"`
	Description         string                  `json:"description,omitempty"`
	Purity              string                  `json:"purity,omitempty"`
	StartingDose        *string                 `json:"startingDose,omitempty"`
	MaintenanceDose     *string                 `json:"maintenanceDose,omitempty"`
	Frequency           *string                 `json:"frequency,omitempty"`
	DosageNotes         *string                 `json:"dosageNotes,omitempty"`
	RecommendedForGoals []string                `json:"recommendedForGoals,omitempty"`
	StackDifficulty     *models.StackDifficulty `json:"stackDifficulty,omitempty"`
	StackTiming         *string                 `json:"stackTiming,omitempty"`
	StackDuration       *int                    `json:"stackDuration,omitempty"`
	Retailers           []models.RetailerOffer  `json:"retailers"`
}

// BulkResult is the upstream answer to a bulk create.
type BulkResult struct {
	Created int              `json:"created"`
	Failed  int              `json:"failed"`
	Errors  []string         `json:"errors,omitempty"`
	Items   []models.Peptide `json:"items,omitempty"`
}
