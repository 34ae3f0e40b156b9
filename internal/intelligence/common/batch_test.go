package common

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestBatchProcessorOrdersResults(t *testing.T) {
	p := NewBatchProcessor[int, string](WithMaxConcurrency(8))
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	res := p.Process(context.Background(), items, func(_ context.Context, n int) (string, error) {
		return fmt.Sprintf("r%d", n), nil
	})

	if res.Succeeded != 10 || res.Failed != 0 {
		t.Fatalf("succeeded=%d failed=%d", res.Succeeded, res.Failed)
	}
	for i, r := range res.Results {
		if r.Index != i || r.Result != fmt.Sprintf("r%d", i) {
			t.Fatalf("result %d out of order: %+v", i, r)
		}
	}
}

func TestBatchProcessorIsolatesFailures(t *testing.T) {
	p := NewBatchProcessor[int, int]()
	boom := errors.New("boom")

	res := p.Process(context.Background(), []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n * 10, nil
	})

	if res.Succeeded != 2 || res.Failed != 1 {
		t.Fatalf("succeeded=%d failed=%d", res.Succeeded, res.Failed)
	}
	if !errors.Is(res.Results[1].Err, boom) {
		t.Fatalf("item 1 err = %v", res.Results[1].Err)
	}
	if res.Results[0].Result != 10 || res.Results[2].Result != 30 {
		t.Fatal("successful items must still carry results")
	}
}

func TestBatchProcessorRetries(t *testing.T) {
	p := NewBatchProcessor[int, int](WithRetry(2, time.Millisecond))
	var calls atomic.Int32

	res := p.Process(context.Background(), []int{1}, func(_ context.Context, n int) (int, error) {
		if calls.Add(1) < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
	if res.Succeeded != 1 || res.Results[0].Result != 42 {
		t.Fatalf("unexpected result: %+v", res.Results[0])
	}
}

func TestBatchProcessorHonoursCancellation(t *testing.T) {
	p := NewBatchProcessor[int, int](WithMaxConcurrency(1), WithRetry(5, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan *BatchResult[int])
	go func() {
		done <- p.Process(ctx, []int{1}, func(_ context.Context, n int) (int, error) {
			return 0, errors.New("always fails")
		})
	}()
	cancel()

	select {
	case res := <-done:
		if res.Failed != 1 {
			t.Fatalf("failed = %d, want 1", res.Failed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled batch did not return promptly")
	}
}
