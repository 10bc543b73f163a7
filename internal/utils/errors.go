package utils

import "errors"

// Common application errors used across services.
var (
	ErrDataUnavailable    = errors.New("DATA_UNAVAILABLE")
	ErrPeptideNotFound    = errors.New("PEPTIDE_NOT_FOUND")
	ErrOfferNotFound      = errors.New("OFFER_NOT_FOUND")
	ErrSessionNotFound    = errors.New("SESSION_NOT_FOUND")
	ErrTokenExpired       = errors.New("TOKEN_EXPIRED")
	ErrNotAuthenticated   = errors.New("NOT_AUTHENTICATED")
	ErrHistoryDisabled    = errors.New("HISTORY_UNAVAILABLE")
	ErrInvalidSpreadsheet = errors.New("INVALID_SPREADSHEET")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
)
