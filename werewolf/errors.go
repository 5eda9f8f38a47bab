package werewolf

import "errors"

var (
	ErrGameOver     = errors.New("game already over")
	ErrUnknownAgent = errors.New("unknown agent")
	ErrUnknownRound = errors.New("round not in log")
)

// InvalidStateError marks a broken engine invariant. The round that hit it is
// rolled back and never logged.
type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
