package enrollment

import (
	"math"

	"github.com/google/uuid"
)

// Derive returns the completion percentage of total covered by completed.
// Duplicates in either list are ignored and ids outside total never count.
func Derive(completed, total []uuid.UUID) int {
	if len(total) == 0 {
		return 0
	}

	lessons := make(map[uuid.UUID]bool, len(total))
	for _, id := range total {
		lessons[id] = false
	}

	done := 0
	for _, id := range completed {
		if seen, ok := lessons[id]; ok && !seen {
			lessons[id] = true
			done++
		}
	}

	pct := int(math.Round(100 * float64(done) / float64(len(lessons))))
	return min(max(pct, 0), 100)
}
