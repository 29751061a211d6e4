package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/payments"
)

type stubWebhookService struct {
	err      error
	received *payments.WebhookPayload
}

func (s *stubWebhookService) ProcessPaymentWebhook(ctx context.Context, payload *payments.WebhookPayload) error {
	s.received = payload
	return s.err
}

func postWebhook(t *testing.T, svc *stubWebhookService, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewWebhookHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandlePaymentWebhook(rec, req)
	return rec
}

func TestWebhookHandler_HandlePaymentWebhook(t *testing.T) {
	validBody := `{"code":"00","desc":"success","data":{"orderCode":424242,"amount":300000},"signature":"abc"}`

	t.Run("AcksSuccessfulProcessing", func(t *testing.T) {
		svc := &stubWebhookService{}

		rec := postWebhook(t, svc, validBody)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
		assert.Equal(t, int64(424242), svc.received.Data.OrderCode)
	})

	t.Run("AcksEvenWhenProcessingFails", func(t *testing.T) {
		for _, failure := range []error{
			domain.ErrNotFound,
			domain.ErrStateConflict,
			errors.New("database unavailable"),
		} {
			svc := &stubWebhookService{err: failure}

			rec := postWebhook(t, svc, validBody)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"success":true}`, rec.Body.String())
		}
	})

	t.Run("RejectsMalformedBody", func(t *testing.T) {
		svc := &stubWebhookService{}

		rec := postWebhook(t, svc, `{"code":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, svc.received)
	})
}
