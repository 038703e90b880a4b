package main

import (
	"chat-rooms/auth"
	grpc2 "chat-rooms/infrastructure/grpc"
	"chat-rooms/infrastructure/http/server"
	"chat-rooms/internal"
	"chat-rooms/moderation"
	"chat-rooms/observability"
	"chat-rooms/runtime"
	"chat-rooms/runtime/workers"
	"chat-rooms/services"
	"chat-rooms/stream"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and owns the server lifecycle, so deferred
// cleanups always execute before the process exits.
func run() error {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Storage
	store, err := internal.OpenStore(ctx, config, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing store...")
		if err := store.Close(); err != nil {
			log.Error("Store close failed", "error", err)
		}
	}()

	// 4. Domain services
	replacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	censor, err := moderation.NewModerator(moderation.ParseWords(config.CensoredWords), replacement, log)
	if err != nil {
		return fmt.Errorf("moderation dictionary: %w", err)
	}
	bus := runtime.NewBus(log, config.BusCapacity)
	signer := auth.NewStreamSigner(config.StreamSecret, config.StreamTokenDuration)
	authService := services.NewAuthService(log, store.Users, bus, signer)
	fanout := runtime.NewRoomFanout(log, bus, store.Rooms, store.Messages)
	chatService := services.NewChatService(log, authService, store, fanout, censor)
	streams := stream.NewServer(log, authService, bus, store.Rooms, store.Messages)

	// 5. Supervision
	monitor := observability.NewMonitor()
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewMonitorWorker(log, bus, monitor, config.MetricInterval))
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		sup.Run(ctx)
	}()

	// 6. HTTP & gRPC health servers
	handlers := server.NewServer(ctx, log, authService, chatService, streams, bus, monitor)
	httpServer := server.NewHTTPServer(config.Addr(), handlers.Routes())

	grpcListener, err := net.Listen("tcp", config.GRPCAddr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", config.GRPCAddr(), err)
	}
	health := grpc2.NewHealthServer(log)

	errChan := make(chan error, 2)
	go func() {
		log.Info("Starting HTTP server", "address", httpServer.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	go func() {
		if err := health.Serve(grpcListener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	health.SetServing(true)

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err = <-errChan:
		log.Error("Server failed, shutting down", "error", err)
	}

	// 8. Final Cleanup, streams end with ctx
	health.SetServing(false)
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("HTTP server shutdown error", "error", shutdownErr)
	}
	health.Stop()
	sup.Stop()
	<-supervisorDone
	log.Info("Program stopped cleanly")

	return err
}
