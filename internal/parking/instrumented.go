package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentedManager struct {
	*Manager
	telemetry *TelemetryProvider

	// Metrics
	entryOperations   metric.Int64Counter
	exitOperations    metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
	feesCollected     metric.Float64Counter
}

func NewInstrumentedManager(manager *Manager, telemetry *TelemetryProvider) (*InstrumentedManager, error) {
	meter := telemetry.Meter()

	entryOperations, err := meter.Int64Counter("parking_entries_total",
		metric.WithDescription("Total number of entry attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	exitOperations, err := meter.Int64Counter("parking_exits_total",
		metric.WithDescription("Total number of exit attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_lot_occupancy",
		metric.WithDescription("Current number of occupied parking spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking lot operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	feesCollected, err := meter.Float64Counter("parking_fees_collected",
		metric.WithDescription("Sum of fees collected at exit"),
		metric.WithUnit("{currency}"))
	if err != nil {
		return nil, err
	}

	totalSpots, err := meter.Int64UpDownCounter("parking_lot_total_spots",
		metric.WithDescription("Total number of parking spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}
	totalSpots.Add(context.Background(), int64(manager.registry.Capacity()))

	return &InstrumentedManager{
		Manager:           manager,
		telemetry:         telemetry,
		entryOperations:   entryOperations,
		exitOperations:    exitOperations,
		occupancyGauge:    occupancyGauge,
		operationDuration: operationDuration,
		feesCollected:     feesCollected,
	}, nil
}

func (im *InstrumentedManager) Enter(ctx context.Context, vehicle *Vehicle) (*Ticket, error) {
	ctx, span := im.telemetry.Tracer().Start(ctx, "parking_lot.enter",
		trace.WithAttributes(
			attribute.String("vehicle.plate", vehicle.Plate()),
			attribute.String("vehicle.class", vehicle.Class().String()),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_free_spot")

	ticket, err := im.Manager.Enter(ctx, vehicle)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "enter"),
		attribute.String("vehicle_class", vehicle.Class().String()),
	}

	if err != nil {
		span.AddEvent("lot_full")
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "lot_full"))
	} else {
		span.SetAttributes(
			attribute.Int64("ticket.id", int64(ticket.ID)),
			attribute.Int("spot.id", ticket.Spot.ID()),
		)
		span.AddEvent("ticket_issued", trace.WithAttributes(
			attribute.Int("spot_id", ticket.Spot.ID()),
		))
		labels = append(labels, attribute.String("status", "success"))
		im.occupancyGauge.Add(ctx, 1)
	}

	im.entryOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	im.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (im *InstrumentedManager) Exit(ctx context.Context, ticketID uint64, method PaymentMethod) (*Receipt, error) {
	ctx, span := im.telemetry.Tracer().Start(ctx, "parking_lot.exit",
		trace.WithAttributes(
			attribute.Int64("ticket.id", int64(ticketID)),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("collecting_fee")

	receipt, err := im.Manager.Exit(ctx, ticketID, method)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "exit"),
	}

	var declined *DeclinedError
	switch {
	case err == nil:
		span.SetAttributes(
			attribute.Float64("payment.amount", receipt.Fee),
			attribute.Int("spot.id", receipt.SpotID),
		)
		span.AddEvent("spot_released")
		labels = append(labels, attribute.String("status", "success"))
		im.occupancyGauge.Add(ctx, -1)
		im.feesCollected.Add(ctx, receipt.Fee)
	case errors.As(err, &declined):
		span.SetAttributes(attribute.Float64("payment.amount", declined.Fee))
		span.AddEvent("payment_declined")
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "payment_declined"))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "invalid_ticket"))
	}

	im.exitOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	im.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return receipt, err
}

func (im *InstrumentedManager) Status(ctx context.Context) LotStatus {
	_, span := im.telemetry.Tracer().Start(ctx, "parking_lot.status")
	defer span.End()

	start := time.Now()

	status := im.Manager.Status()

	span.SetAttributes(
		attribute.Int("occupied_spots_count", status.Occupied),
		attribute.Int("total_capacity", status.Capacity),
	)

	im.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "status"),
		attribute.String("status", "success"),
	))

	return status
}

func (im *InstrumentedManager) Quote(ctx context.Context, ticketID uint64) (float64, error) {
	ctx, span := im.telemetry.Tracer().Start(ctx, "parking_lot.quote",
		trace.WithAttributes(
			attribute.Int64("ticket.id", int64(ticketID)),
		))
	defer span.End()

	start := time.Now()

	fee, err := im.Manager.Quote(ticketID)

	status := "success"
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		status = "invalid_ticket"
	} else {
		span.SetAttributes(attribute.Float64("payment.amount", fee))
	}

	im.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "quote"),
		attribute.String("status", status),
	))

	return fee, err
}
