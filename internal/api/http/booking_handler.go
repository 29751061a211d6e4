package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rentzy-backend/internal/service"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	bookings service.BookingService
}

func NewBookingHandler(bookings service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type createBookingRequest struct {
	VehicleID int64  `json:"vehicle_id"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`
}

func (h *BookingHandler) HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "end_date must be YYYY-MM-DD"})
		return
	}

	claims := claimsFrom(r.Context())
	booking, err := h.bookings.CreateBooking(r.Context(), claims.UserID, req.VehicleID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) HandleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	claims := claimsFrom(r.Context())
	booking, err := h.bookings.GetBooking(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type acceptBookingResponse struct {
	BookingID   int64  `json:"booking_id"`
	Status      string `json:"status"`
	OrderCode   int64  `json:"order_code"`
	CheckoutURL string `json:"checkout_url"`
}

func (h *BookingHandler) HandleAcceptBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	claims := claimsFrom(r.Context())
	booking, link, err := h.bookings.AcceptBooking(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acceptBookingResponse{
		BookingID:   booking.ID,
		Status:      string(booking.Status),
		OrderCode:   link.OrderCode,
		CheckoutURL: link.CheckoutURL,
	})
}

func (h *BookingHandler) HandleRemainingPaymentLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	claims := claimsFrom(r.Context())
	link, err := h.bookings.CreateRemainingPaymentLink(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

type trafficFineRequest struct {
	Amount int64 `json:"amount"`
}

func (h *BookingHandler) HandleTrafficFineLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req trafficFineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	claims := claimsFrom(r.Context())
	link, err := h.bookings.CreateTrafficFineLink(r.Context(), claims.UserID, id, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *BookingHandler) HandleCashApproval(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	claims := claimsFrom(r.Context())
	booking, err := h.bookings.ApproveCashBalance(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) HandleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	claims := claimsFrom(r.Context())
	booking, err := h.bookings.CompleteBooking(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// pathID parses the {name} path variable as a positive integer id.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}
