package transcribe

import (
	"fmt"
	"math"
)

// SRTTimestamp formats a non-negative offset in seconds as HH:MM:SS,mmm
// with millisecond rounding. Hours are unbounded.
func SRTTimestamp(seconds float64) string {
	millis := int64(math.Round(seconds * 1000))
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	secs := millis / 1000
	millis -= secs * 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
