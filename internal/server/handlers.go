package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"parking-lot-manager/internal/parking"
)

type Handler struct {
	lot          *parking.InstrumentedManager
	entrance     *parking.EntranceGate
	serviceName  string
	paymentTries uint
	metrics      *httpMetrics
}

func NewHandler(lot *parking.InstrumentedManager, serviceName string, paymentTries uint, metrics *httpMetrics) *Handler {
	return &Handler{
		lot:          lot,
		entrance:     parking.NewEntranceGate(lot),
		serviceName:  serviceName,
		paymentTries: paymentTries,
		metrics:      metrics,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) Enter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EnterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Plate) == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate is required")
		return
	}

	class, err := parking.ParseVehicleClass(req.VehicleClass)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "vehicle_class must be small, standard or oversized")
		return
	}

	ticket, err := h.entrance.Enter(ctx, parking.NewVehicle(req.Plate, class))
	if errors.Is(err, parking.ErrLotFull) {
		h.metrics.gateOutcome("entrance", "lot_full")
		WriteError(ctx, w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		WriteError(ctx, w, http.StatusInternalServerError, "Failed to issue ticket")
		return
	}

	h.metrics.gateOutcome("entrance", "ticket_issued")
	WriteSuccess(ctx, w, "Ticket issued", ticketResponse(*ticket))
}

func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	method, err := parking.NewPaymentMethod(req.PaymentMethod, req.CardBalance)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	gate := parking.NewExitGate(h.lot, parking.WithRetries(method, h.paymentTries))
	receipt, err := gate.Exit(ctx, req.TicketID)
	var declined *parking.DeclinedError
	switch {
	case err == nil:
	case errors.As(err, &declined):
		h.metrics.gateOutcome("exit", "payment_declined")
		WriteError(ctx, w, http.StatusPaymentRequired,
			fmt.Sprintf("Payment of %.2f declined; ticket %d is still valid", declined.Fee, declined.TicketID))
		return
	case errors.Is(err, parking.ErrInvalidTicket):
		h.metrics.gateOutcome("exit", "invalid_ticket")
		WriteError(ctx, w, http.StatusNotFound, "Invalid ticket")
		return
	default:
		WriteError(ctx, w, http.StatusInternalServerError, "Failed to process exit")
		return
	}

	h.metrics.gateOutcome("exit", "success")
	WriteSuccess(ctx, w, "Exit successful", ReceiptResponse{
		TicketID:  receipt.TicketID,
		Plate:     receipt.Plate,
		SpotID:    receipt.SpotID,
		EntryTime: receipt.EntryTime,
		ExitTime:  receipt.ExitTime,
		Fee:       receipt.Fee,
	})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := h.lot.Status(ctx)

	spots := make([]SpotStatus, 0, len(status.Spots))
	for _, s := range status.Spots {
		spot := SpotStatus{
			SpotID:    s.SpotID,
			SpotClass: s.Class.String(),
			Occupied:  s.Occupied,
		}
		if s.Occupied {
			entry := s.EntryTime
			spot.TicketID = s.TicketID
			spot.Plate = s.Plate
			spot.EntryTime = &entry
		}
		spots = append(spots, spot)
	}

	WriteSuccess(ctx, w, "Status retrieved successfully", StatusResponse{
		Capacity:  status.Capacity,
		Occupied:  status.Occupied,
		Available: status.Available(),
		Spots:     spots,
	})
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ticketID, ok := ticketIDParam(r)
	if !ok {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	ticket, ok := h.lot.Ticket(ticketID)
	if !ok {
		WriteError(ctx, w, http.StatusNotFound, "Invalid ticket")
		return
	}

	WriteSuccess(ctx, w, "Ticket found", ticketResponse(ticket))
}

func (h *Handler) QuoteTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ticketID, ok := ticketIDParam(r)
	if !ok {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	fee, err := h.lot.Quote(ctx, ticketID)
	if err != nil {
		WriteError(ctx, w, http.StatusNotFound, "Invalid ticket")
		return
	}

	WriteSuccess(ctx, w, "Fee quoted", QuoteResponse{
		TicketID: ticketID,
		Fee:      fee,
	})
}

func ticketIDParam(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func ticketResponse(t parking.Ticket) TicketResponse {
	return TicketResponse{
		TicketID:     t.ID,
		Plate:        t.Vehicle.Plate(),
		VehicleClass: t.Vehicle.Class().String(),
		SpotID:       t.Spot.ID(),
		SpotClass:    t.Spot.Class().String(),
		EntryTime:    t.EntryTime,
	}
}
