package chronicle

import "fmt"

const (
	ReasonInvalidSpec      = "invalid_spec"
	ReasonEngineInitFailed = "engine_init_failed"
	ReasonRoundFailed      = "round_failed"
	ReasonNoWinner         = "no_winner"
)

// ChronicleError reports why a tape could not be produced. StepIndex is the
// round that failed, or -1 before the first round.
type ChronicleError struct {
	StepIndex int32  `json:"step_index"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
}

func (e *ChronicleError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("chronicle error(step=%d reason=%s): %s", e.StepIndex, e.Reason, e.Message)
}

func specError(format string, args ...any) *ChronicleError {
	return &ChronicleError{StepIndex: -1, Reason: ReasonInvalidSpec, Message: fmt.Sprintf(format, args...)}
}
