package services

import (
	"fmt"
	"net/http"

	"barterhub/internal/eligibility"
)

const (
	CodeAlreadyClaimed       = "ALREADY_CLAIMED"
	CodeMaxClaims            = "MAX_CLAIMS"
	CodeCampaignCodeConflict = "CAMPAIGN_CODE_CONFLICT"
	CodeClaimBusy            = "CLAIM_BUSY"
	CodeCreatorNotFound      = "CREATOR_NOT_FOUND"
)

// ClaimError is the structured failure of a claim. Code is stable for clients.
type ClaimError struct {
	Code      string
	Status    int
	Message   string
	Details   map[string]any
	Retryable bool
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var rejectionStatus = map[eligibility.Code]int{
	eligibility.CodeOfferUnavailable:     http.StatusNotFound,
	eligibility.CodePaywall:              http.StatusPaymentRequired,
	eligibility.CodeNeedsLocation:        http.StatusBadRequest,
	eligibility.CodeOfferRejected:        http.StatusForbidden,
	eligibility.CodeRateLimited:          http.StatusTooManyRequests,
	eligibility.CodeStrikeBlocked:        http.StatusForbidden,
	eligibility.CodeCountryNotAllowed:    http.StatusForbidden,
	eligibility.CodeNeedsAddress:         http.StatusBadRequest,
	eligibility.CodeOfferLocationMissing: http.StatusConflict,
	eligibility.CodeOutOfRange:           http.StatusForbidden,
	eligibility.CodeNotNano:              http.StatusForbidden,
}

// rejectionError maps an eligibility rejection to its HTTP-facing form.
// Social readiness codes are not listed and fall back to 400.
func rejectionError(r *eligibility.Rejection) *ClaimError {
	status, ok := rejectionStatus[r.Code]
	if !ok {
		status = http.StatusBadRequest
	}
	return &ClaimError{
		Code:    string(r.Code),
		Status:  status,
		Message: r.Message,
		Details: r.Details,
	}
}

func errAlreadyClaimed() *ClaimError {
	return &ClaimError{Code: CodeAlreadyClaimed, Status: http.StatusConflict, Message: "you already have an active claim on this offer"}
}

func errMaxClaims(max int) *ClaimError {
	return &ClaimError{
		Code:    CodeMaxClaims,
		Status:  http.StatusConflict,
		Message: "this offer has no claims left",
		Details: map[string]any{"max_claims": max},
	}
}

func errCodeConflict() *ClaimError {
	return &ClaimError{Code: CodeCampaignCodeConflict, Status: http.StatusInternalServerError, Message: "could not allocate a campaign code, try again"}
}

func errClaimBusy() *ClaimError {
	return &ClaimError{
		Code:      CodeClaimBusy,
		Status:    http.StatusServiceUnavailable,
		Message:   "this offer is busy, try again in a moment",
		Retryable: true,
	}
}
