package exchange

import "time"

// DefaultChunkDays is the widest range the index archive serves per request.
const DefaultChunkDays = 30

const indexDateFormat = "02/01/2006"

// DateRange is an inclusive range of days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// SplitDateRange splits [from, to] into consecutive inclusive chunks of at
// most maxDays days. It returns nil when from is after to.
func SplitDateRange(from, to time.Time, maxDays int) []DateRange {
	if maxDays < 1 {
		maxDays = 1
	}

	var chunks []DateRange
	for start := from; !start.After(to); {
		end := start.AddDate(0, 0, maxDays-1)
		if end.After(to) {
			end = to
		}
		chunks = append(chunks, DateRange{From: start, To: end})
		start = end.AddDate(0, 0, 1)
	}
	return chunks
}
