package drive

import (
	"context"
	"errors"
	"testing"
)

func TestApplyEachIsolatesFailures(t *testing.T) {
	applied := make([]int, 0)
	boom := errors.New("boom")

	failures := ApplyEach(context.Background(), []int{1, 2, 3, 4}, "configure", func(ctx context.Context, id int) error {
		applied = append(applied, id)
		if id == 2 || id == 4 {
			return boom
		}
		return nil
	})

	if len(applied) != 4 {
		t.Errorf("expected all motors attempted, got %v", applied)
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(failures))
	}

	if failures[0].MotorID != 2 || failures[1].MotorID != 4 {
		t.Errorf("unexpected failure order: %v", failures)
	}
	for _, f := range failures {
		if !errors.Is(f, boom) {
			t.Errorf("expected wrapped cause, got %v", f)
		}
		if f.Op != "configure" {
			t.Errorf("expected op configure, got %s", f.Op)
		}
	}
}

func TestApplyEachEmpty(t *testing.T) {
	failures := ApplyEach(context.Background(), nil, "disable", func(ctx context.Context, id int) error {
		t.Fatal("op should not be called")
		return nil
	})
	if len(failures) != 0 {
		t.Errorf("expected no failures, got %v", failures)
	}
}
