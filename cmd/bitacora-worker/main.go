// bitacora-worker consumes the domain events the server publishes and
// writes an audit trail. It is intentionally side-effect free beyond
// logging: the queue is the durable record.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"bitacora/internal/amqp"
	"bitacora/internal/cli"
	"bitacora/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	client, err := amqp.New(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	audit := logger.WithComponent(log.ComponentWorker)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Starting bitacora-worker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	err = client.ConsumeMessages(ctx,
		func(msg amqp.BatchIngestedMessage) error {
			audit.Info("batch ingested",
				log.FieldBatchID, msg.BatchID,
				log.FieldSource, msg.Source,
				log.FieldCount, msg.Count,
				"at", msg.Timestamp.Format(time.RFC3339))
			return nil
		},
		func(msg amqp.RecordEditedMessage) error {
			audit.Info("record edited",
				log.FieldIndex, msg.Index,
				"at", msg.Timestamp.Format(time.RFC3339))
			return nil
		})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", log.FieldError, err.Error())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
