//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"wolfsim/chronicle"
)

type generateRequest struct {
	Spec chronicle.GameSpec `json:"spec"`
}

type generateResponse struct {
	OK    bool                      `json:"ok"`
	Tape  *chronicle.WireTape       `json:"tape,omitempty"`
	Error *chronicle.ChronicleError `json:"error,omitempty"`
}

func main() {
	js.Global().Set("__chronicleGenerate", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(generateResponse{
				Error: &chronicle.ChronicleError{StepIndex: -1, Reason: "invalid_request", Message: "missing request payload"},
			})
		}
		return mustJSON(handleGenerate(args[0].String()))
	}))
	js.Global().Set("__chronicleDecode", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return ""
		}
		b, err := chronicle.EnvelopeJSON(args[0].String())
		if err != nil {
			return ""
		}
		return string(b)
	}))

	select {}
}

func handleGenerate(raw string) generateResponse {
	var req generateRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return generateResponse{
			Error: &chronicle.ChronicleError{StepIndex: -1, Reason: "invalid_json", Message: err.Error()},
		}
	}

	tape, err := chronicle.GenerateChronicle(req.Spec)
	if err != nil {
		var ce *chronicle.ChronicleError
		if errors.As(err, &ce) {
			return generateResponse{Error: ce}
		}
		return generateResponse{
			Error: &chronicle.ChronicleError{StepIndex: -1, Reason: "generation_failed", Message: err.Error()},
		}
	}
	return generateResponse{OK: true, Tape: chronicle.ToWireTape(tape)}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		b2, _ := json.Marshal(generateResponse{
			Error: &chronicle.ChronicleError{StepIndex: -1, Reason: "marshal_failed", Message: err.Error()},
		})
		return string(b2)
	}
	return string(b)
}
