package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type EnterRequest struct {
	Plate        string `json:"plate"`
	VehicleClass string `json:"vehicle_class"`
}

type ExitRequest struct {
	TicketID      uint64  `json:"ticket_id"`
	PaymentMethod string  `json:"payment_method"`
	CardBalance   float64 `json:"card_balance,omitempty"`
}

type TicketResponse struct {
	TicketID     uint64    `json:"ticket_id"`
	Plate        string    `json:"plate"`
	VehicleClass string    `json:"vehicle_class"`
	SpotID       int       `json:"spot_id"`
	SpotClass    string    `json:"spot_class"`
	EntryTime    time.Time `json:"entry_time"`
}

type ReceiptResponse struct {
	TicketID  uint64    `json:"ticket_id"`
	Plate     string    `json:"plate"`
	SpotID    int       `json:"spot_id"`
	EntryTime time.Time `json:"entry_time"`
	ExitTime  time.Time `json:"exit_time"`
	Fee       float64   `json:"fee"`
}

type QuoteResponse struct {
	TicketID uint64  `json:"ticket_id"`
	Fee      float64 `json:"fee"`
}

type SpotStatus struct {
	SpotID    int        `json:"spot_id"`
	SpotClass string     `json:"spot_class"`
	Occupied  bool       `json:"occupied"`
	TicketID  uint64     `json:"ticket_id,omitempty"`
	Plate     string     `json:"plate,omitempty"`
	EntryTime *time.Time `json:"entry_time,omitempty"`
}

type StatusResponse struct {
	Capacity  int          `json:"capacity"`
	Occupied  int          `json:"occupied"`
	Available int          `json:"available"`
	Spots     []SpotStatus `json:"spots"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
