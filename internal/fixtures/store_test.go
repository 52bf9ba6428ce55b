package fixtures

import (
	"context"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDriverForDialects(t *testing.T) {
	cases := []struct {
		dsn    string
		driver string
	}{
		{"", "sqlite"},
		{":memory:", "sqlite"},
		{"postgres://u:p@host/db", "postgres"},
		{"mysql://u:p@tcp(host:3306)/db", "mysql"},
		{"sqlserver://u:p@host", "sqlserver"},
	}
	for _, c := range cases {
		got, _ := driverFor(c.dsn)
		if got != c.driver {
			t.Errorf("driverFor(%q) = %q, want %q", c.dsn, got, c.driver)
		}
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := Result{
		Scenario:   "S1",
		Digest:     "abc123",
		ExpectRepr: "5",
		RecordedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.Put(ctx, want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, "S1", "abc123")
	if err != nil || !ok {
		t.Fatalf("Get: got=%v ok=%v err=%v", got, ok, err)
	}
	if got.ExpectRepr != want.ExpectRepr {
		t.Fatalf("ExpectRepr = %q, want %q", got.ExpectRepr, want.ExpectRepr)
	}
}

func TestGetMissingReturnsFalse(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Get(context.Background(), "S1", "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for an unrecorded digest")
	}
}

func TestPutOverwritesPriorRecording(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := Result{Scenario: "S2", Digest: "d", ExpectRepr: "1", RecordedAt: time.Now()}
	second := Result{Scenario: "S2", Digest: "d", ExpectRepr: "2", RecordedAt: time.Now()}
	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("Put first: %v", err)
	}
	if err := s.Put(ctx, second); err != nil {
		t.Fatalf("Put second: %v", err)
	}

	got, ok, err := s.Get(ctx, "S2", "d")
	if err != nil || !ok {
		t.Fatalf("Get: got=%v ok=%v err=%v", got, ok, err)
	}
	if got.ExpectRepr != "2" {
		t.Fatalf("ExpectRepr = %q, want %q (overwritten)", got.ExpectRepr, "2")
	}
}

func TestByScenarioListsAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, d := range []string{"a", "b", "c"} {
		if err := s.Put(ctx, Result{Scenario: "S3", Digest: d, ExpectRepr: d, RecordedAt: time.Now()}); err != nil {
			t.Fatalf("Put %s: %v", d, err)
		}
	}

	results, err := s.ByScenario(ctx, "S3")
	if err != nil {
		t.Fatalf("ByScenario: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
}
