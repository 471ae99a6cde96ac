package workers

import (
	"runtime"
)

// Count returns the number of workers to run.
//
// A positive override wins. Otherwise it is one worker per available
// CPU, which respects container CPU limits via GOMAXPROCS. The result
// is capped at limit when limit > 0 and is never below 1.
func Count(override, limit int) int {
	workers := override
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}
