package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-lot-manager/internal/config"
	"parking-lot-manager/internal/events"
	"parking-lot-manager/internal/logging"
	"parking-lot-manager/internal/parking"
	"parking-lot-manager/internal/server"
)

var (
	mode = flag.String("mode", "", "Mode to run: cli, server, or both (default from APP_MODE)")
	port = flag.String("port", "", "Port for HTTP server (default from APP_PORT)")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *port != "" {
		cfg.Port = *port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := parking.NewTelemetryProvider(ctx, cfg.Telemetry())
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	logger := logging.Init(cfg.OTelServiceName, cfg.Environment)

	lot, closeEvents, err := buildLot(cfg, telemetryProvider, logger)
	if err != nil {
		logger.Error("failed to build parking lot", slog.Any("error", err))
		shutdownTelemetry(telemetryProvider)
		os.Exit(1)
	}
	defer closeEvents()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch cfg.Mode {
	case "cli":
		runCLI(ctx, cancel, cfg, lot, telemetryProvider, sigChan)
	case "server":
		runServer(ctx, cancel, cfg, lot, telemetryProvider, sigChan)
	case "both":
		runBoth(ctx, cancel, cfg, lot, telemetryProvider, sigChan)
	default:
		logger.Error("invalid mode, must be cli, server, or both", slog.String("mode", cfg.Mode))
		shutdownTelemetry(telemetryProvider)
		os.Exit(1)
	}
}

func buildLot(cfg *config.Config, telemetryProvider *parking.TelemetryProvider, logger *slog.Logger) (*parking.InstrumentedManager, func(), error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, nil, err
	}

	feePolicy, err := cfg.BuildFeePolicy()
	if err != nil {
		return nil, nil, err
	}

	opts := []parking.Option{
		parking.WithFeePolicy(feePolicy),
		parking.WithLogger(logger),
	}

	closeEvents := func() {}
	if cfg.NATSURL != "" {
		nc, err := events.Connect(cfg.NATSURL, cfg.OTelServiceName)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, parking.WithEventSink(events.NewNATSPublisher(nc, cfg.NATSSubjectPrefix)))
		closeEvents = func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("failed to drain NATS connection", slog.Any("error", err))
			}
		}
		logger.Info("publishing lot events", slog.String("nats_url", cfg.NATSURL))
	}

	lot, err := parking.NewInstrumentedManager(parking.NewManager(registry, opts...), telemetryProvider)
	if err != nil {
		closeEvents()
		return nil, nil, err
	}

	logger.Info("parking lot ready",
		slog.Int("capacity", registry.Capacity()),
		slog.String("fee_policy", cfg.FeePolicy),
	)
	return lot, closeEvents, nil
}

func newServer(cfg *config.Config, lot *parking.InstrumentedManager) *server.Server {
	return server.NewServer(server.Config{
		Port:         cfg.Port,
		ServiceName:  cfg.OTelServiceName,
		RateLimit:    cfg.GateRateLimit,
		RateBurst:    cfg.GateRateBurst,
		PaymentTries: uint(max(cfg.PaymentRetryAttempts, 1)),
	}, lot)
}

func newShell(cfg *config.Config, lot *parking.InstrumentedManager, telemetryProvider *parking.TelemetryProvider) *parking.InstrumentedShell {
	return parking.NewInstrumentedShell(lot, telemetryProvider, os.Stdin, os.Stdout).
		WithPaymentRetries(uint(max(cfg.PaymentRetryAttempts, 1)))
}

func runCLI(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, lot *parking.InstrumentedManager, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Info(ctx, "shutting down")
		cancel()
	}()

	newShell(cfg, lot, telemetryProvider).Run(ctx)

	shutdownTelemetry(telemetryProvider)
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, lot *parking.InstrumentedManager, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	srv := newServer(cfg, lot)

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error(ctx, "server shutdown error", slog.Any("error", err))
		}

		cancel()
	}()

	logging.Info(ctx, "starting server mode", slog.String("port", cfg.Port))
	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		logging.Error(ctx, "server error", slog.Any("error", err))
	}

	shutdownTelemetry(telemetryProvider)
}

func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, lot *parking.InstrumentedManager, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	srv := newServer(cfg, lot)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		newShell(cfg, lot, telemetryProvider).Run(ctx)
		cliDone <- true
	}()

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && err != http.ErrServerClosed {
			logging.Error(ctx, "server error", slog.Any("error", err))
		}
	case <-cliDone:
		logging.Info(ctx, "CLI exited")
	case <-ctx.Done():
		logging.Info(ctx, "context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "server shutdown error", slog.Any("error", err))
	}

	shutdownTelemetry(telemetryProvider)
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider) {
	log.Println("Shutting down telemetry...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down telemetry: %v", err)
	}
}
