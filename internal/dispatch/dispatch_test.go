package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPoolRunsSubmittedJobs(t *testing.T) {
	var mu sync.Mutex
	got := map[string]bool{}
	var wg sync.WaitGroup

	wg.Add(2)
	pool := NewPool(2, 8, func(_ context.Context, job Job) {
		mu.Lock()
		got[job.Name] = true
		mu.Unlock()
		wg.Done()
	}, discardLogger())

	if err := pool.Submit(Job{Name: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := pool.Submit(Job{Name: "b"}); err != nil {
		t.Fatal(err)
	}

	wg.Wait()
	if !got["a"] || !got["b"] {
		t.Errorf("jobs run = %v", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pool.Stop(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestPoolSubmitNeverBlocksWhenFull(t *testing.T) {
	release := make(chan struct{})
	pool := NewPool(1, 1, func(_ context.Context, _ Job) {
		<-release
	}, discardLogger())
	defer func() {
		close(release)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		pool.Stop(ctx)
	}()

	// First job occupies the worker, second fills the queue. Give the worker
	// a moment to pick up the first so the queue slot frees deterministically.
	if err := pool.Submit(Job{Name: "running"}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := pool.Submit(Job{Name: "queued"}); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	err := pool.Submit(Job{Name: "rejected"})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("Submit blocked on a full queue")
	}
}

func TestPoolSubmitAfterStop(t *testing.T) {
	pool := NewPool(1, 1, func(_ context.Context, _ Job) {}, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pool.Stop(ctx); err != nil {
		t.Fatal(err)
	}

	if err := pool.Submit(Job{Name: "late"}); !errors.Is(err, ErrStopped) {
		t.Fatalf("err = %v, want ErrStopped", err)
	}

	// Stopping twice is a no-op.
	if err := pool.Stop(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestPoolSurvivesPanickingJob(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)
	pool := NewPool(1, 4, func(_ context.Context, job Job) {
		defer wg.Done()
		if job.Name == "bad" {
			panic("handler bug")
		}
	}, discardLogger())

	if err := pool.Submit(Job{Name: "bad"}); err != nil {
		t.Fatal(err)
	}
	if err := pool.Submit(Job{Name: "good"}); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic; second job never ran")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pool.Stop(ctx); err != nil {
		t.Fatal(err)
	}
}
