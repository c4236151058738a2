package frames

import (
	"fmt"
	"math"
)

const nanosPerSecond = 1_000_000_000

// Timestamp mirrors builtin_interfaces/Time.
type Timestamp struct {
	Sec     int32  `json:"sec"`
	Nanosec uint32 `json:"nanosec"`
}

// Seconds is the combined time sec + nanosec/1e9.
func (t Timestamp) Seconds() float64 {
	return float64(t.Sec) + float64(t.Nanosec)/nanosPerSecond
}

// IsZero reports whether t is the unset stamp.
func (t Timestamp) IsZero() bool {
	return t.Sec == 0 && t.Nanosec == 0
}

// TimestampToComponents splits t into seconds and nanoseconds.
func TimestampToComponents(t Timestamp) (sec int64, nsec int64) {
	return int64(t.Sec), int64(t.Nanosec)
}

// ComponentsToTimestamp builds a Timestamp. nsec outside [0, 1e9) carries
// into sec so the result is canonical.
func ComponentsToTimestamp(sec, nsec int64) (Timestamp, error) {
	sec += nsec / nanosPerSecond
	nsec %= nanosPerSecond
	if nsec < 0 {
		nsec += nanosPerSecond
		sec--
	}
	if sec > math.MaxInt32 || sec < math.MinInt32 {
		return Timestamp{}, fmt.Errorf("timestamp seconds %d out of range", sec)
	}
	return Timestamp{Sec: int32(sec), Nanosec: uint32(nsec)}, nil
}

// TimestampFromSlice reads [sec, nsec] as stored by the scene data field.
func TimestampFromSlice(s []int64) (Timestamp, error) {
	if len(s) < 2 {
		return Timestamp{}, &MalformedInputError{Field: "timestamp", Want: 2, Got: len(s)}
	}
	return ComponentsToTimestamp(s[0], s[1])
}
