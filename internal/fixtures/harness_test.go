package fixtures

import (
	"context"
	"testing"
	"time"
)

func TestRunConformanceMatchesGoldenScenarios(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	results, err := RunConformance(ctx, s, time.Now())
	if err != nil {
		t.Fatalf("RunConformance: %v", err)
	}
	if len(results) != len(Scenarios) {
		t.Fatalf("got %d results, want %d", len(results), len(Scenarios))
	}

	for _, sc := range Scenarios {
		got, ok, err := s.Get(ctx, sc.ID, digestOf(sc.ID))
		if err != nil || !ok {
			t.Fatalf("Get(%s): got=%v ok=%v err=%v", sc.ID, got, ok, err)
		}
		if got.ExpectRepr != sc.Want {
			t.Errorf("%s: stored %q, want %q", sc.ID, got.ExpectRepr, sc.Want)
		}
	}
}

func TestRunConformanceRerunIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := RunConformance(ctx, s, time.Now()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := RunConformance(ctx, s, time.Now()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	all, err := s.ByScenario(ctx, "S1")
	if err != nil {
		t.Fatalf("ByScenario: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d recorded S1 digests, want 1 (Put overwrites, not appends)", len(all))
	}
}
