package kinematics

import "fmt"

// UninitializedStateError is returned when external data is read before the
// first message of that kind has arrived.
type UninitializedStateError struct {
	What string
}

func (e *UninitializedStateError) Error() string {
	return fmt.Sprintf("no %s received yet", e.What)
}
