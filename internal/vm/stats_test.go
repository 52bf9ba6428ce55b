package vm

import (
	"strings"
	"testing"
)

func TestStatsStringFormatsCounters(t *testing.T) {
	Stats.recordInstr()
	Stats.recordStackDepth(3)
	Stats.recordStackDepth(1) // should not lower the high-water mark

	s := Stats.String()
	if !strings.Contains(s, "instructions=") || !strings.Contains(s, "stack_high_water=") {
		t.Fatalf("String() = %q, missing expected fields", s)
	}
}
