package resource

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		r    Resource[int]
		want Status
		term bool
	}{
		{"loading", Loading[int]{}, StatusLoading, false},
		{"success", Success[int]{Data: 7}, StatusSuccess, true},
		{"error", Error[int]{Message: "boom"}, StatusError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Status(); got != tt.want {
				t.Fatalf("Status() = %v, want %v", got, tt.want)
			}
			if got := IsTerminal(tt.r); got != tt.term {
				t.Fatalf("IsTerminal() = %v, want %v", got, tt.term)
			}
		})
	}
}

func TestAwaitReturnsTerminal(t *testing.T) {
	ch := make(chan Resource[string], 2)
	ch <- Loading[string]{}
	ch <- Success[string]{Data: "done"}
	close(ch)

	got, err := Await(context.Background(), ch)
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	s, ok := got.(Success[string])
	if !ok {
		t.Fatalf("Await() = %T, want Success", got)
	}
	if s.Data != "done" {
		t.Fatalf("Data = %q, want %q", s.Data, "done")
	}
}

func TestAwaitClosedWithoutTerminal(t *testing.T) {
	ch := make(chan Resource[string], 1)
	ch <- Loading[string]{}
	close(ch)

	if _, err := Await(context.Background(), ch); !errors.Is(err, ErrNoTerminal) {
		t.Fatalf("Await() error = %v, want ErrNoTerminal", err)
	}
}

func TestAwaitContextCancelled(t *testing.T) {
	ch := make(chan Resource[string])
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := Await(ctx, ch); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Await() error = %v, want deadline exceeded", err)
	}
}

func TestCollect(t *testing.T) {
	ch := make(chan Resource[int], 2)
	ch <- Loading[int]{}
	ch <- Error[int]{Message: "nope"}
	close(ch)

	got := Collect(ch)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Status() != StatusLoading || got[1].Status() != StatusError {
		t.Fatalf("statuses = %v, %v", got[0].Status(), got[1].Status())
	}
}

func TestIsTerminalAcrossPayloadTypes(t *testing.T) {
	seq := []interface{ Status() Status }{
		Loading[string]{},
		Success[[]float64]{Data: []float64{1.5}},
		Error[struct{ Name string }]{Message: "not found"},
	}
	want := []bool{false, true, true}

	for i, r := range seq {
		if got := IsTerminal(r); got != want[i] {
			t.Errorf("IsTerminal(%T) = %v, want %v", r, got, want[i])
		}
	}

	var r Resource[int] = Error[int]{Message: "boom"}
	if !IsTerminal(r) {
		t.Fatal("IsTerminal(Resource[int] error) = false, want true")
	}
}
