package export

import (
	"fmt"
	"math"
	"time"
)

const isoLayout = "2006-01-02T15:04:05"

// FormatDate renders an epoch-seconds wall time as a local ISO-8601
// timestamp without offset. Microseconds are appended only when non-zero.
func FormatDate(wallTime float64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	sec := math.Floor(wallTime)
	usec := int64(math.RoundToEven((wallTime - sec) * 1e6))
	if usec >= 1e6 {
		sec++
		usec -= 1e6
	}
	t := time.Unix(int64(sec), 0).In(loc)
	out := t.Format(isoLayout)
	if usec != 0 {
		out += fmt.Sprintf(".%06d", usec)
	}
	return out
}
