package agent

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRequestQueueFIFO(t *testing.T) {
	q := NewRequestQueue()
	for _, v := range []string{"a", "b", "c"} {
		if err := q.Put(v); err != nil {
			t.Fatalf("Put(%q): %v", v, err)
		}
	}
	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Get(context.Background())
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != want {
			t.Fatalf("Get = %q, want %q", got, want)
		}
	}
}

func TestRequestQueueGetBlocksUntilPut(t *testing.T) {
	q := NewRequestQueue()
	got := make(chan string, 1)
	go func() {
		v, _ := q.Get(context.Background())
		got <- v
	}()

	select {
	case v := <-got:
		t.Fatalf("Get returned %q before Put", v)
	case <-time.After(20 * time.Millisecond):
	}

	if err := q.Put("hello"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	select {
	case v := <-got:
		if v != "hello" {
			t.Fatalf("Get = %q, want hello", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Get did not wake after Put")
	}
}

func TestRequestQueueCloseIsIdempotent(t *testing.T) {
	q := NewRequestQueue()
	if !q.Close() {
		t.Fatal("first Close should report true")
	}
	if q.Close() {
		t.Fatal("second Close should report false")
	}
	if !q.Closed() {
		t.Fatal("Closed() = false after Close")
	}
	if err := q.Put("late"); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("Put after Close = %v, want ErrQueueClosed", err)
	}
}

func TestRequestQueueDrainsAfterClose(t *testing.T) {
	q := NewRequestQueue()
	_ = q.Put("queued")
	q.Close()

	v, err := q.Get(context.Background())
	if err != nil || v != "queued" {
		t.Fatalf("Get = %q, %v; want queued, nil", v, err)
	}
	if _, err := q.Get(context.Background()); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("Get on drained closed queue = %v, want ErrQueueClosed", err)
	}
}

func TestRequestQueueCloseWakesGetter(t *testing.T) {
	q := NewRequestQueue()
	errc := make(chan error, 1)
	go func() {
		_, err := q.Get(context.Background())
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrQueueClosed) {
			t.Fatalf("Get = %v, want ErrQueueClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not wake Get")
	}
}

func TestRequestQueueGetHonoursContext(t *testing.T) {
	q := NewRequestQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := q.Get(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Get = %v, want DeadlineExceeded", err)
	}
}
