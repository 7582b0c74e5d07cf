package run

import "fmt"

// bakeState tracks the fixed phase order of one run. Phases must execute in
// sequence; calling one out of order is a programming error surfaced as a
// state error, not a panic.
type bakeState int

const (
	stateIdle bakeState = iota
	stateGateChecked
	statePostsBaked
	statePagesBaked
	stateTagsBaked
	stateCategoriesBaked
	statePersisted
)

func (s bakeState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateGateChecked:
		return "gate-checked"
	case statePostsBaked:
		return "posts-baked"
	case statePagesBaked:
		return "pages-baked"
	case stateTagsBaked:
		return "tags-baked"
	case stateCategoriesBaked:
		return "categories-baked"
	case statePersisted:
		return "persisted"
	default:
		return "unknown"
	}
}

// advance moves the run from one phase to the next, rejecting out-of-order
// transitions.
func (b *Baker) advance(from, to bakeState) error {
	if b.state != from {
		return fmt.Errorf("bake phase out of order: in %s, cannot enter %s", b.state, to)
	}
	b.state = to
	return nil
}
