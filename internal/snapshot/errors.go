package snapshot

import (
	"errors"
	"fmt"
)

// ErrIO indicates a failed snapshot read or write.
var ErrIO = errors.New("snapshot: i/o failure")

// IOError carries the path and operation of a failed snapshot access.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("snapshot: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is makes every IOError match ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }
