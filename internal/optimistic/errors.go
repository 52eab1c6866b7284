package optimistic

import (
	"errors"
	"fmt"
)

// ErrPendingExists is matched by a MisuseError raised when Apply is called for an id
// that still has a live pending update.
var ErrPendingExists = errors.New("optimistic update already pending")

// ErrNoRemote is matched by a MisuseError raised when a Mutation has no remote step.
var ErrNoRemote = errors.New("mutation has no remote step")

// MisuseError reports a caller bug. It is never the result of a remote failure.
type MisuseError struct {
	ID  string
	Err error
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("optimistic misuse (id=%s): %v", e.ID, e.Err)
}

func (e *MisuseError) Unwrap() error { return e.Err }

// RemoteError wraps the failure of a mutation's remote step. Local state has
// already been rolled back when a caller sees it.
type RemoteError struct {
	ID  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote mutation failed (id=%s): %v", e.ID, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsMisuse returns true if err is or wraps a MisuseError.
func IsMisuse(err error) bool {
	var me *MisuseError
	return errors.As(err, &me)
}

// IsRemote returns true if err is or wraps a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
