// Package worker keeps the auto district stream in step with the tithe and
// offering income rows.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Afatsiawu/FMS/internal/amqp"
	"github.com/Afatsiawu/FMS/internal/core"
)

// Allocator records the district entry of one income row.
type Allocator interface {
	AllocateIncome(ctx context.Context, incomeID int64) (core.AutoDistrictExpense, bool, error)
	ProcessPending(ctx context.Context, batchSize int) (allocated, failed int, err error)
}

// Consumer delivers allocation messages until ctx is cancelled.
type Consumer interface {
	ConsumeAllocations(ctx context.Context, handler func(context.Context, *amqp.AllocationMessage) error) error
}

type AllocationWorker struct {
	allocator Allocator
	batchSize int
	interval  time.Duration
}

func NewAllocationWorker(allocator Allocator, batchSize int, interval time.Duration) *AllocationWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &AllocationWorker{allocator: allocator, batchSize: batchSize, interval: interval}
}

// HandleMessage records the allocation of the announced income row. A row
// deleted before the message arrived is acknowledged and skipped.
func (w *AllocationWorker) HandleMessage(ctx context.Context, msg *amqp.AllocationMessage) error {
	slog.InfoContext(ctx, "Processing allocation message",
		"message_id", msg.MessageID,
		"income_id", msg.IncomeID,
		"version", msg.Version)

	_, created, err := w.allocator.AllocateIncome(ctx, msg.IncomeID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Income no longer exists, skipping allocation", "income_id", msg.IncomeID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("allocate income %d: %w", msg.IncomeID, err)
	}
	if !created {
		slog.DebugContext(ctx, "Allocation already recorded", "income_id", msg.IncomeID)
	}
	return nil
}

// StartupCheck drains a larger batch of missed allocations, covering
// messages lost while the worker was down.
func (w *AllocationWorker) StartupCheck(ctx context.Context) error {
	allocated, failed, err := w.allocator.ProcessPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup allocation check: %w", err)
	}
	slog.InfoContext(ctx, "Startup allocation check completed", "allocated", allocated, "failed", failed)
	return nil
}

// Run consumes messages when consumer is set and scans for pending rows
// every interval. It returns when ctx is cancelled or consumption fails.
func (w *AllocationWorker) Run(ctx context.Context, consumer Consumer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	consumeErr := make(chan error, 1)
	if consumer != nil {
		go func() {
			consumeErr <- consumer.ConsumeAllocations(ctx, w.HandleMessage)
		}()
	} else {
		slog.InfoContext(ctx, "No message consumer configured, relying on the pending scan")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-consumeErr:
			if err == nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("consume allocations: %w", err)
		case <-ticker.C:
			if _, _, err := w.allocator.ProcessPending(ctx, w.batchSize); err != nil {
				slog.ErrorContext(ctx, "Periodic allocation scan failed", "error", err)
			}
		}
	}
}
