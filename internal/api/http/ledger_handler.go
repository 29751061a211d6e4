package http

import (
	"net/http"

	"rentzy-backend/internal/service"
)

// LedgerHandler exposes the audit trail and admin corrections.
type LedgerHandler struct {
	ledger service.LedgerService
}

func NewLedgerHandler(ledger service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

func (h *LedgerHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	transactions, err := h.ledger.ListBookingTransactions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

type reversePayoutRequest struct {
	Reason string `json:"reason"`
}

func (h *LedgerHandler) HandleReversePayout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req reversePayoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reversal, err := h.ledger.ReversePayout(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reversal)
}
