package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedShell is a line-oriented operator console over a lot.
type InstrumentedShell struct {
	lot          *InstrumentedManager
	entrance     *EntranceGate
	scanner      *bufio.Scanner
	out          io.Writer
	telemetry    *TelemetryProvider
	paymentTries uint
}

func NewInstrumentedShell(lot *InstrumentedManager, telemetry *TelemetryProvider, in io.Reader, out io.Writer) *InstrumentedShell {
	return &InstrumentedShell{
		lot:          lot,
		entrance:     NewEntranceGate(lot),
		scanner:      bufio.NewScanner(in),
		out:          out,
		telemetry:    telemetry,
		paymentTries: 1,
	}
}

// WithPaymentRetries makes exits retry declined payments up to tries times.
func (s *InstrumentedShell) WithPaymentRetries(tries uint) *InstrumentedShell {
	s.paymentTries = tries
	return s
}

func (s *InstrumentedShell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil {
		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *InstrumentedShell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("command.name", command))

	switch command {
	case "enter":
		s.handleEnter(ctx, parts)
	case "exit":
		s.handleExit(ctx, parts)
	case "quote":
		s.handleQuote(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	default:
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *InstrumentedShell) handleEnter(ctx context.Context, parts []string) {
	if len(parts) != 3 {
		s.printf("Usage: enter <plate> <small|standard|oversized>\n")
		return
	}

	class, err := ParseVehicleClass(parts[2])
	if err != nil {
		s.printf("Invalid vehicle class: %s\n", parts[2])
		return
	}

	ticket, err := s.entrance.Enter(ctx, NewVehicle(parts[1], class))
	if errors.Is(err, ErrLotFull) {
		s.printf("Sorry, no free %s spot\n", class)
		return
	}
	if err != nil {
		s.printf("Error: %s\n", err)
		return
	}

	s.printf("Ticket %d issued, spot %d\n", ticket.ID, ticket.Spot.ID())
}

func (s *InstrumentedShell) handleExit(ctx context.Context, parts []string) {
	if len(parts) < 2 || len(parts) > 3 {
		s.printf("Usage: exit <ticket_id> [cash|declined|card:<balance>]\n")
		return
	}

	ticketID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		s.printf("Invalid ticket id: %s\n", parts[1])
		return
	}

	method := PaymentMethod(NewCashPayment())
	if len(parts) == 3 {
		method, err = parseShellPayment(parts[2])
		if err != nil {
			s.printf("Error: %s\n", err)
			return
		}
	}

	receipt, err := NewExitGate(s.lot, WithRetries(method, s.paymentTries)).Exit(ctx, ticketID)
	var declined *DeclinedError
	switch {
	case err == nil:
		s.printf("Paid %.2f, spot %d is free\n", receipt.Fee, receipt.SpotID)
	case errors.As(err, &declined):
		s.printf("Payment of %.2f declined, ticket %d still valid\n", declined.Fee, ticketID)
	case errors.Is(err, ErrInvalidTicket):
		s.printf("Invalid ticket\n")
	default:
		s.printf("Error: %s\n", err)
	}
}

func (s *InstrumentedShell) handleQuote(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.printf("Usage: quote <ticket_id>\n")
		return
	}

	ticketID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		s.printf("Invalid ticket id: %s\n", parts[1])
		return
	}

	fee, err := s.lot.Quote(ctx, ticketID)
	if err != nil {
		s.printf("Invalid ticket\n")
		return
	}

	s.printf("%.2f\n", fee)
}

func (s *InstrumentedShell) handleStatus(ctx context.Context) {
	status := s.lot.Status(ctx)
	if status.Occupied == 0 {
		s.printf("Parking lot is empty\n")
		return
	}

	s.printf("Spot\tClass\tTicket\tPlate\n")
	for _, spot := range status.Spots {
		if !spot.Occupied {
			continue
		}
		s.printf("%d\t%s\t%d\t%s\n", spot.SpotID, spot.Class, spot.TicketID, spot.Plate)
	}
}

func (s *InstrumentedShell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func parseShellPayment(arg string) (PaymentMethod, error) {
	kind, balance, hasBalance := strings.Cut(arg, ":")
	var amount float64
	if hasBalance {
		var err error
		amount, err = strconv.ParseFloat(balance, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid card balance %q", balance)
		}
	}
	return NewPaymentMethod(kind, amount)
}
