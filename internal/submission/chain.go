package submission

import (
	"context"
	"fmt"
)

// State is the position of a submission in its lifecycle.
type State int

const (
	StateValidating State = iota
	StateWriting
	StateUploading
	StateReconciling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateWriting:
		return "writing"
	case StateUploading:
		return "uploading"
	case StateReconciling:
		return "reconciling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// step is one link of a chain over the shared attempt value T. A step whose
// skip func reports true is entered (the state is still announced) but not run.
type step[T any] struct {
	state State
	kind  Kind
	skip  func(*T) bool
	run   func(context.Context, *T) error
}

// runChain executes steps in order, announcing each state through enter. The
// first failing step ends the chain; its error is returned with the step's
// state and kind. ctx is checked before every step that is not skipped, so a
// cancelled caller stops at the next boundary with the kind of the step it
// did not start.
func runChain[T any](ctx context.Context, v *T, steps []step[T], enter func(State)) (State, Kind, error) {
	for _, s := range steps {
		enter(s.state)
		if s.skip != nil && s.skip(v) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return s.state, s.kind, err
		}
		if err := s.run(ctx, v); err != nil {
			return s.state, s.kind, err
		}
	}
	enter(StateDone)
	return StateDone, 0, nil
}
