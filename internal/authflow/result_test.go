package authflow

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResultCompletesOnce(t *testing.T) {
	r := newResult[string]()
	r.resolve("first")
	r.reject(errors.New("late"))
	r.resolve("second")

	select {
	case <-r.Done():
	default:
		t.Fatal("Done not closed after resolve")
	}
	v, err := r.Await(context.Background())
	if err != nil || v != "first" {
		t.Fatalf("Await() = %q, %v; want first, nil", v, err)
	}
}

func TestResultReject(t *testing.T) {
	r := newResult[*int]()
	want := errors.New("failed")
	go r.reject(want)

	v, err := r.Await(context.Background())
	if !errors.Is(err, want) || v != nil {
		t.Fatalf("Await() = %v, %v; want nil, %v", v, err, want)
	}
}

func TestResultAwaitHonoursContext(t *testing.T) {
	r := newResult[struct{}]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := r.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	r.resolve(struct{}{})
	if _, err := r.Await(context.Background()); err != nil {
		t.Fatalf("result should still complete after a timed out Await: %v", err)
	}
}
