package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingProcessor struct {
	calls atomic.Int32
	err   error
}

func (c *countingProcessor) ProcessPendingEntries(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestDefaultSyncProcessorConfig(t *testing.T) {
	if got := DefaultSyncProcessorConfig().PollInterval; got != 30*time.Second {
		t.Errorf("expected PollInterval 30s, got %v", got)
	}
	p := NewSyncProcessor(&countingProcessor{}, SyncProcessorConfig{})
	if p.config.PollInterval != 30*time.Second {
		t.Errorf("zero interval should fall back to default, got %v", p.config.PollInterval)
	}
}

func TestSyncProcessor_Lifecycle(t *testing.T) {
	proc := &countingProcessor{err: errors.New("sheets unavailable")}
	p := NewSyncProcessor(proc, SyncProcessorConfig{PollInterval: 10 * time.Millisecond})

	if p.IsRunning() {
		t.Fatal("processor should not be running initially")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Start(ctx); err == nil {
		t.Error("expected error when starting already running processor")
	}

	deadline := time.Now().Add(2 * time.Second)
	for proc.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if proc.calls.Load() < 2 {
		t.Fatalf("expected repeated polling despite errors, got %d calls", proc.calls.Load())
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.IsRunning() {
		t.Fatal("processor should not be running after Stop")
	}

	// Restart after a clean stop is allowed.
	if err := p.Start(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	p.Stop(stopCtx)
}

func TestSyncProcessor_StopNotRunning(t *testing.T) {
	p := NewSyncProcessor(&countingProcessor{}, DefaultSyncProcessorConfig())
	if err := p.Stop(context.Background()); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}
}

func TestSyncProcessor_ConcurrentStop(t *testing.T) {
	p := NewSyncProcessor(&countingProcessor{}, SyncProcessorConfig{PollInterval: 5 * time.Millisecond})
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- p.Stop(stopCtx)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Stop: %v", err)
		}
	}
	if p.IsRunning() {
		t.Fatal("processor should not be running after Stop")
	}
}
