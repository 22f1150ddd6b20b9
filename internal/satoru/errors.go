package satoru

import (
	"errors"
	"fmt"
)

// ErrUnknownEvent is matched by errors for event keys with no registered decoder.
var ErrUnknownEvent = errors.New("unrecognized event type")

// UnknownEventError reports the event key that had no decoder.
type UnknownEventError struct {
	Key string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unrecognized event type: %s", e.Key)
}

func (e *UnknownEventError) Is(target error) bool {
	return target == ErrUnknownEvent
}
