package fixtures

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// digestOf derives the "compiled module's source digest" this store is
// keyed by (see the package doc comment) from a scenario's identity,
// standing in for the real digest a loaded module would carry.
func digestOf(scenarioID string) string {
	sum := sha256.Sum256([]byte(scenarioID))
	return hex.EncodeToString(sum[:])
}

// Mismatch reports a scenario whose actual outcome didn't match either
// the golden literal from spec.md §8 or its own previously-recorded
// result.
type Mismatch struct {
	Scenario string
	Got      string
	Want     string
}

func (m Mismatch) Error() string {
	return fmt.Sprintf("%s: got %q, want %q", m.Scenario, m.Got, m.Want)
}

// RunConformance drives every scenario in Scenarios against the real
// dispatch loop and abstract operation API, checks the result against
// spec.md §8's literal expectation, and records it in store keyed by a
// digest of the scenario's identity. A second read-back confirms the
// store persisted exactly what was computed, the same round trip a CI
// lane re-running this package against a shared Postgres/MySQL/SQL
// Server store would rely on.
func RunConformance(ctx context.Context, store *Store, now time.Time) ([]Result, error) {
	results := make([]Result, 0, len(Scenarios))
	for _, sc := range Scenarios {
		got, err := sc.Run()
		if err != nil {
			return nil, fmt.Errorf("fixtures: scenario %s: %w", sc.ID, err)
		}
		if got != sc.Want {
			return nil, Mismatch{Scenario: sc.ID, Got: got, Want: sc.Want}
		}

		digest := digestOf(sc.ID)
		rec := Result{Scenario: sc.ID, Digest: digest, ExpectRepr: got, RecordedAt: now}
		if err := store.Put(ctx, rec); err != nil {
			return nil, err
		}
		readBack, ok, err := store.Get(ctx, sc.ID, digest)
		if err != nil {
			return nil, err
		}
		if !ok || readBack.ExpectRepr != got {
			return nil, fmt.Errorf("fixtures: scenario %s: store round trip produced %q, want %q", sc.ID, readBack.ExpectRepr, got)
		}
		results = append(results, rec)
	}
	return results, nil
}
