package http

import (
	"net/http"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/service"
)

// CancellationHandler exposes the two-phase cancellation workflow.
type CancellationHandler struct {
	cancellations service.CancellationService
}

func NewCancellationHandler(cancellations service.CancellationService) *CancellationHandler {
	return &CancellationHandler{cancellations: cancellations}
}

// HandleEstimateFee returns the display-only fee breakdown for the caller's
// own booking. The figures become binding only once a cancellation is
// requested.
func (h *CancellationHandler) HandleEstimateFee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	claims := claimsFrom(r.Context())
	breakdown, err := h.cancellations.EstimateFee(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

type requestCancellationRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (h *CancellationHandler) HandleRequestCancellation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req requestCancellationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	claims := claimsFrom(r.Context())
	cancellation, err := h.cancellations.RequestCancellation(r.Context(), claims.UserID, id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cancellation)
}

type decisionRequest struct {
	Decision string `json:"decision"` // approve | reject
	Reason   string `json:"reason,omitempty"`
}

func (h *CancellationHandler) HandleOwnerDecision(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req decisionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	approve, ok := parseDecision(w, req.Decision)
	if !ok {
		return
	}
	claims := claimsFrom(r.Context())
	cancellation, err := h.cancellations.OwnerDecision(r.Context(), claims.UserID, id, approve)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cancellation)
}

type refundDecisionRequest struct {
	RefundType string `json:"refund_type"` // renter | owner | both
	Decision   string `json:"decision"`    // approve | reject
	Reason     string `json:"reason,omitempty"`
}

func (h *CancellationHandler) HandleAdminRefundDecision(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req refundDecisionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	approve, ok := parseDecision(w, req.Decision)
	if !ok {
		return
	}
	track := domain.RefundTrack(req.RefundType)
	switch track {
	case domain.RefundTrackRenter, domain.RefundTrackOwner, domain.RefundTrackBoth:
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "refund_type must be renter, owner or both"})
		return
	}

	cancellation, err := h.cancellations.AdminRefundDecision(r.Context(), id, track, approve, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cancellation)
}

func parseDecision(w http.ResponseWriter, decision string) (bool, bool) {
	switch decision {
	case "approve":
		return true, true
	case "reject":
		return false, true
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "decision must be approve or reject"})
		return false, false
	}
}
