package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Afatsiawu/FMS/internal/amqp"
	"github.com/Afatsiawu/FMS/internal/core"
)

type fakeAllocator struct {
	mu        sync.Mutex
	err       error
	allocated []int64
	scans     []int
}

func (f *fakeAllocator) AllocateIncome(_ context.Context, id int64) (core.AutoDistrictExpense, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return core.AutoDistrictExpense{}, false, f.err
	}
	f.allocated = append(f.allocated, id)
	return core.AutoDistrictExpense{ID: id}, true, nil
}

func (f *fakeAllocator) ProcessPending(_ context.Context, batch int) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans = append(f.scans, batch)
	return 0, 0, nil
}

func (f *fakeAllocator) scanCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scans)
}

type fakeConsumer struct {
	messages []*amqp.AllocationMessage
	err      error
	handled  chan error
}

func (c *fakeConsumer) ConsumeAllocations(ctx context.Context, handler func(context.Context, *amqp.AllocationMessage) error) error {
	for _, m := range c.messages {
		c.handled <- handler(ctx, m)
	}
	if c.err != nil {
		return c.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHandleMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"allocated", nil, false},
		{"income deleted", core.ErrNotFound, false},
		{"store failure", errors.New("disk full"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := &fakeAllocator{err: tt.err}
			w := NewAllocationWorker(alloc, 10, time.Minute)
			err := w.HandleMessage(context.Background(), amqp.NewAllocationMessage(42, 1))
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartupCheckUsesLargerBatch(t *testing.T) {
	alloc := &fakeAllocator{}
	w := NewAllocationWorker(alloc, 10, time.Minute)
	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(alloc.scans) != 1 || alloc.scans[0] != 50 {
		t.Errorf("scans = %v, want [50]", alloc.scans)
	}
}

func TestRun_ConsumesAndScans(t *testing.T) {
	alloc := &fakeAllocator{}
	consumer := &fakeConsumer{
		messages: []*amqp.AllocationMessage{amqp.NewAllocationMessage(7, 1)},
		handled:  make(chan error, 1),
	}
	w := NewAllocationWorker(alloc, 5, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, consumer) }()

	if err := <-consumer.handled; err != nil {
		t.Fatalf("handler error = %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for alloc.scanCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if alloc.scanCount() == 0 {
		t.Error("expected at least one pending scan")
	}
}

func TestRun_ConsumerFailure(t *testing.T) {
	w := NewAllocationWorker(&fakeAllocator{}, 5, time.Hour)
	consumer := &fakeConsumer{err: errors.New("channel closed"), handled: make(chan error)}
	if err := w.Run(context.Background(), consumer); err == nil {
		t.Fatal("expected consume error")
	}
}
