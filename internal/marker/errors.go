package marker

import (
	"errors"
	"fmt"
)

// OutOfRangeError reports a marker ID that is not a current index.
type OutOfRangeError struct {
	ID  int
	Len int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("marker id %d out of range (have %d)", e.ID, e.Len)
}

// IsOutOfRange reports whether err wraps an *OutOfRangeError.
func IsOutOfRange(err error) bool {
	var target *OutOfRangeError
	return errors.As(err, &target)
}
