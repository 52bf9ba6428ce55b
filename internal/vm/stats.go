package vm

import (
	"fmt"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// Stats accumulates process-wide interpreter counters across every
// RunFrame call: total instructions dispatched and the deepest value
// stack any single frame reached. It exists purely for diagnostics -
// no dispatch decision ever reads it back.
var Stats = &stats{}

type stats struct {
	instrCount     int64
	stackHighWater int64
}

func (s *stats) recordInstr() { atomic.AddInt64(&s.instrCount, 1) }

func (s *stats) recordStackDepth(depth int) {
	for {
		cur := atomic.LoadInt64(&s.stackHighWater)
		if int64(depth) <= cur {
			return
		}
		if atomic.CompareAndSwapInt64(&s.stackHighWater, cur, int64(depth)) {
			return
		}
	}
}

// String renders the counters with thousands separators, matching the
// teacher's own debug reporting style for large counts.
func (s *stats) String() string {
	return fmt.Sprintf("instructions=%s stack_high_water=%s",
		humanize.Comma(atomic.LoadInt64(&s.instrCount)),
		humanize.Comma(atomic.LoadInt64(&s.stackHighWater)))
}
