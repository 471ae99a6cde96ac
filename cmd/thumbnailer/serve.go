package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/giobyte8/thumbvariants/internal/consumer"
	"github.com/giobyte8/thumbvariants/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Consume original saved/deleted events from AMQP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func prepareAMQPConsumer(d *deps) (consumer.MessageConsumer, error) {
	amqpCfg := consumer.AMQPConfig{
		AMQPUri:                  d.settings.AMQP.URI,
		Exchange:                 d.settings.AMQP.Exchange,
		OriginalSavedQueueName:   d.settings.AMQP.OriginalSavedQueue,
		OriginalDeletedQueueName: d.settings.AMQP.OriginalDeletedQueue,
	}

	thumbsSvc := services.NewThumbnailsService(d.registry, d.storage, d.generator)
	return consumer.NewAMQPConsumer(amqpCfg, thumbsSvc, d.telemetry)
}

func runServe(cmd *cobra.Command, args []string) error {
	slog.Info("Starting Thumbnailer service...")
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	d, err := prepareDeps(ctx)
	if err != nil {
		return err
	}

	amqpConsumer, err := prepareAMQPConsumer(d)
	if err != nil {
		return fmt.Errorf("failed to create AMQP consumer: %w", err)
	}

	if err := amqpConsumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start AMQP consumer: %w", err)
	}
	slog.Info("Thumbnailer service is running. Press Ctrl+C to stop.")

	// Graceful shutdown (listen for OS signals)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sigChan:
		slog.Info("Received OS signal, shutting down...", "signal", s.String())
	case <-ctx.Done():
		slog.Info(
			"Parent context cancelled, shutting down...",
			"reason",
			ctx.Err(),
		)
	}

	// --- --- --- --- --- --- --- --- --- --- --- ---
	// Perform graceful shutdown operations
	// before cancelling context

	amqpConsumer.Stop()
	d.shutdown(context.WithoutCancel(ctx))

	// Trigger context cancellation
	cancel()
	slog.Info("Thumbnailer service exited gracefully.")
	return nil
}
