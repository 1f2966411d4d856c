package workerpool_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/shashiranjanraj/medcart/pkg/metrics"
	"github.com/shashiranjanraj/medcart/pkg/workerpool"
)

func panics(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.TaskPanics.Write(&m); err != nil {
		t.Fatalf("read panics counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestPool_SubmitAndExecute(t *testing.T) {
	const n = 100
	pool := workerpool.New(4, n)
	defer pool.Shutdown()

	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		err := pool.Submit(func() {
			defer wg.Done()
			count.Add(1)
		})
		if err != nil {
			t.Fatalf("Submit returned unexpected error: %v", err)
		}
	}
	wg.Wait()

	if got := count.Load(); got != n {
		t.Errorf("expected %d tasks to run, got %d", n, got)
	}
}

func TestPool_ErrPoolFull(t *testing.T) {
	pool := workerpool.New(1, 2)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	started := make(chan struct{})
	_ = pool.Submit(func() {
		close(started)
		<-blocker
	})
	<-started

	_ = pool.Submit(func() {})
	_ = pool.Submit(func() {})

	if err := pool.Submit(func() {}); !errors.Is(err, workerpool.ErrPoolFull) {
		t.Errorf("expected ErrPoolFull, got %v", err)
	}
	if got := pool.Pending(); got != 2 {
		t.Errorf("expected 2 pending tasks, got %d", got)
	}

	close(blocker)
}

func TestPool_ErrPoolClosed(t *testing.T) {
	pool := workerpool.New(2, 0)
	pool.Shutdown()
	pool.Shutdown()

	if err := pool.Submit(func() {}); !errors.Is(err, workerpool.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed after Shutdown, got %v", err)
	}
}

func TestPool_PanicRecovery(t *testing.T) {
	pool := workerpool.New(1, 0)
	defer pool.Shutdown()

	before := panics(t)
	done := make(chan struct{})
	_ = pool.Submit(func() {
		defer close(done)
		panic("boom")
	})
	<-done

	normal := make(chan struct{})
	_ = pool.Submit(func() { close(normal) })

	select {
	case <-normal:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not recover from panic")
	}
	if got := panics(t) - before; got != 1 {
		t.Errorf("expected 1 recorded panic, got %v", got)
	}
}

func TestPool_ShutdownDrainsQueue(t *testing.T) {
	pool := workerpool.New(2, 50)

	var ran atomic.Int64
	for i := 0; i < 50; i++ {
		if err := pool.Submit(func() {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	pool.Shutdown()

	if got := ran.Load(); got != 50 {
		t.Errorf("expected queued tasks to run before shutdown returns, got %d", got)
	}
}
