package reveal

import (
	"errors"
	"fmt"
)

// State is the position of a Controller in the reveal flow.
type State int

const (
	StateLoading State = iota
	StateError
	StateIdle
	StateListening
	StateBlown
)

var stateNames = [...]string{
	StateLoading:   "loading",
	StateError:     "error",
	StateIdle:      "idle",
	StateListening: "listening",
	StateBlown:     "blown",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no event can move the controller out of s.
func (s State) Terminal() bool {
	return s == StateError || s == StateBlown
}

// Candles is the number of candles on every card.
const Candles = 5

// CandlesLit reports whether the candles are still burning in s.
func (s State) CandlesLit() bool {
	return s == StateIdle || s == StateListening
}

// MessageVisible reports whether the card's message is shown in s.
func (s State) MessageVisible() bool {
	return s == StateBlown
}

// Event drives a transition.
type Event int

const (
	EventLoaded Event = iota
	EventLoadFailed
	EventListen
	EventBlow
)

var eventNames = [...]string{
	EventLoaded:     "loaded",
	EventLoadFailed: "load_failed",
	EventListen:     "listen",
	EventBlow:       "blow",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("Event(%d)", int(e))
	}
	return eventNames[e]
}

// ErrInvalidTransition is returned by Next for events that do not apply to
// the current state.
var ErrInvalidTransition = errors.New("invalid transition")

// Next is the transition function. Listen while already listening is
// accepted and leaves the state unchanged.
func Next(s State, e Event) (State, error) {
	switch {
	case s == StateLoading && e == EventLoaded:
		return StateIdle, nil
	case s == StateLoading && e == EventLoadFailed:
		return StateError, nil
	case s == StateIdle && e == EventListen:
		return StateListening, nil
	case s == StateListening && e == EventListen:
		return StateListening, nil
	case s == StateListening && e == EventBlow:
		return StateBlown, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}
