package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/service"
	"github.com/RubachokBoss/classroom-gradebook/internal/worker/queue"
	"github.com/rs/zerolog"
)

type ExportWorker interface {
	Start(ctx context.Context) error
	Stop() error
	// Dispatch runs an export job on the pool without going through the broker.
	Dispatch(exportID string) error
	GetStats() WorkerStats
}

type WorkerStats struct {
	ActiveWorkers  int `json:"active_workers"`
	TotalProcessed int `json:"total_processed"`
	FailedJobs     int `json:"failed_jobs"`
	QueueLength    int `json:"queue_length"`
}

type exportWorker struct {
	workerPool    *WorkerPool
	queueConsumer queue.RabbitMQConsumer
	processor     service.ExportProcessor
	jobTimeout    time.Duration
	logger        zerolog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	stats      WorkerStats
	statsMutex sync.RWMutex
	startTime  time.Time
}

// NewExportWorker builds the worker. queueConsumer may be nil, in which case
// jobs only arrive through Dispatch.
func NewExportWorker(
	workerPool *WorkerPool,
	queueConsumer queue.RabbitMQConsumer,
	processor service.ExportProcessor,
	jobTimeout time.Duration,
	logger zerolog.Logger,
) ExportWorker {
	if jobTimeout <= 0 {
		jobTimeout = 2 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &exportWorker{
		workerPool:    workerPool,
		queueConsumer: queueConsumer,
		processor:     processor,
		jobTimeout:    jobTimeout,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		startTime:     time.Now(),
	}
}

func (w *exportWorker) Start(ctx context.Context) error {
	w.logger.Info().Msg("Starting export worker...")

	w.workerPool.Start()

	if w.queueConsumer == nil {
		w.logger.Warn().Msg("No queue consumer configured, export jobs run in-process only")
		return nil
	}

	msgs, err := w.queueConsumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	go w.processMessages(ctx, msgs)

	w.logger.Info().Msg("Export worker started successfully")
	return nil
}

func (w *exportWorker) Stop() error {
	w.logger.Info().Msg("Stopping export worker...")

	if w.queueConsumer != nil {
		if err := w.queueConsumer.Close(); err != nil {
			w.logger.Error().Err(err).Msg("Failed to close queue consumer")
		}
	}

	w.workerPool.Stop()
	w.cancel()

	w.statsMutex.RLock()
	w.logger.Info().
		Int("total_processed", w.stats.TotalProcessed).
		Int("failed_jobs", w.stats.FailedJobs).
		Dur("uptime", time.Since(w.startTime)).
		Msg("Export worker stopped")
	w.statsMutex.RUnlock()

	return nil
}

func (w *exportWorker) Dispatch(exportID string) error {
	return w.workerPool.Submit(func() {
		if err := w.process(w.ctx, exportID); err != nil {
			w.logger.Error().Err(err).Str("export_id", exportID).Msg("Failed to process dispatched export")
		}
	})
}

func (w *exportWorker) processMessages(ctx context.Context, msgs <-chan queue.RabbitMQMessage) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping message processing")
			return
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Warn().Msg("Message channel closed")
				return
			}

			err := w.workerPool.Submit(func() {
				w.handleMessage(ctx, msg)
			})
			if err != nil {
				w.logger.Error().Err(err).Msg("Failed to submit export message")
				if nackErr := msg.Nack(false, true); nackErr != nil {
					w.logger.Error().Err(nackErr).Msg("Failed to nack message")
				}
			}
		}
	}
}

func (w *exportWorker) handleMessage(ctx context.Context, msg queue.RabbitMQMessage) {
	err := w.processMessage(ctx, msg)
	if err == nil {
		if ackErr := msg.Ack(false); ackErr != nil {
			w.logger.Error().Err(ackErr).Msg("Failed to ack message")
		}
		return
	}

	w.logger.Error().Err(err).Msg("Failed to process message")

	// Повторная доставка только для временных ошибок
	if isPermanentError(err) || msg.Redelivered {
		if ackErr := msg.Ack(false); ackErr != nil {
			w.logger.Error().Err(ackErr).Msg("Failed to ack message")
		}
		return
	}

	if nackErr := msg.Nack(false, true); nackErr != nil {
		w.logger.Error().Err(nackErr).Msg("Failed to nack message")
	}
}

func (w *exportWorker) processMessage(ctx context.Context, msg queue.RabbitMQMessage) error {
	var event models.ExportRequestedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return permanent(fmt.Errorf("failed to unmarshal event: %w", err))
	}

	if strings.TrimSpace(event.ExportID) == "" {
		return permanent(errors.New("empty export_id"))
	}

	w.logger.Info().
		Str("export_id", event.ExportID).
		Str("classroom_id", event.ClassroomID).
		Msg("Processing gradebook export")

	err := w.process(ctx, event.ExportID)
	if errors.Is(err, service.ErrExportNotFound) {
		return permanent(err)
	}
	return err
}

func (w *exportWorker) process(ctx context.Context, exportID string) error {
	ctx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	err := w.processor.Process(ctx, exportID)

	w.statsMutex.Lock()
	if err != nil {
		w.stats.FailedJobs++
	} else {
		w.stats.TotalProcessed++
	}
	w.statsMutex.Unlock()

	return err
}

func (w *exportWorker) GetStats() WorkerStats {
	w.statsMutex.RLock()
	stats := w.stats
	w.statsMutex.RUnlock()

	if w.queueConsumer != nil {
		queueLength, err := w.queueConsumer.GetQueueLength()
		if err != nil {
			w.logger.Error().Err(err).Msg("Failed to get queue length")
		} else {
			stats.QueueLength = queueLength
		}
	}

	stats.ActiveWorkers = w.workerPool.GetActiveWorkers()
	return stats
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return permanentError{err: err}
}

func isPermanentError(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
