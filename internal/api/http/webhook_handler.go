package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"rentzy-backend/internal/logger"
	"rentzy-backend/internal/payments"
	"rentzy-backend/internal/service"
)

// WebhookHandler receives payment-provider pushes.
type WebhookHandler struct {
	webhooks service.WebhookService
}

func NewWebhookHandler(webhooks service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// HandlePaymentWebhook always acknowledges with 200 {success:true} once the
// body parses, whatever the business outcome. A non-200 here would put the
// provider into a redelivery storm; failures are logged and resolved from
// the ledger instead.
func (h *WebhookHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var payload payments.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed payload"})
		return
	}

	if err := h.webhooks.ProcessPaymentWebhook(r.Context(), &payload); err != nil {
		logger.Error("payment webhook processing failed",
			"order_code", payload.Data.OrderCode, "amount", payload.Data.Amount, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RegisterWebhookRoutes mounts the provider-facing endpoint. It is outside
// the auth middleware: the provider does not carry our tokens, the HMAC
// signature inside the payload is its authentication.
func RegisterWebhookRoutes(router *mux.Router, webhooks service.WebhookService) {
	handler := NewWebhookHandler(webhooks)
	router.HandleFunc("/api/v1/payments/webhook", handler.HandlePaymentWebhook).Methods(http.MethodPost)
}
