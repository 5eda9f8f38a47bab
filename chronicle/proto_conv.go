package chronicle

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"wolfsim/werewolf"
)

// Envelope payload types.
const (
	TypeGameStart = "gameStart"
	TypeRound     = "round"
	TypeGameEnd   = "gameEnd"
)

var marshalOpts = proto.MarshalOptions{Deterministic: true}

// NewEnvelope wraps a payload with game id, sequence and type.
func NewEnvelope(gameID string, seq uint64, typ string, payload map[string]any) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"gameId":  gameID,
		"seq":     float64(seq),
		"type":    typ,
		"payload": payload,
	})
}

// EncodeEnvelope is the deterministic base64 protobuf form used on tapes and
// in the ledger.
func EncodeEnvelope(env *structpb.Struct) (string, error) {
	bin, err := marshalOpts.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(bin), nil
}

func DecodeEnvelope(b64 string) (*structpb.Struct, error) {
	bin, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	env := &structpb.Struct{}
	if err := proto.Unmarshal(bin, env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}

// EnvelopeJSON renders an encoded envelope as JSON for debugging and HTTP.
func EnvelopeJSON(b64 string) ([]byte, error) {
	env, err := DecodeEnvelope(b64)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(env)
}

// GameStartPayload lists the seats; roles are included only in god view.
func GameStartPayload(seed int64, agents []werewolf.AgentView, godView bool) map[string]any {
	seats := make([]any, 0, len(agents))
	for _, a := range agents {
		seat := map[string]any{
			"name":        a.Name,
			"personality": a.Personality.String(),
		}
		if godView {
			seat["role"] = a.Role.String()
			seat["team"] = a.Role.Team().String()
		}
		seats = append(seats, seat)
	}
	return map[string]any{
		"seed":  float64(seed),
		"seats": seats,
	}
}

// RoundPayload converts a round record. Without god view the record is
// reduced to what spectators could see.
func RoundPayload(rec werewolf.RoundRecord, godView bool) map[string]any {
	if !godView {
		rec = rec.Public()
	}
	events := make([]any, 0, len(rec.Events))
	for _, e := range rec.Events {
		ev := map[string]any{
			"kind": e.Kind.String(),
			"text": e.Text,
		}
		if e.Actor != "" {
			ev["actor"] = e.Actor
		}
		if e.InnerThought != "" {
			ev["innerThought"] = e.InnerThought
		}
		if e.Role.Valid() {
			ev["role"] = e.Role.String()
		}
		if e.Strategy != werewolf.StrategyNone {
			ev["strategy"] = e.Strategy.String()
		}
		if e.Target != "" {
			ev["target"] = e.Target
		}
		events = append(events, ev)
	}

	res := rec.Resolution
	resolution := map[string]any{}
	setIf := func(k, v string) {
		if v != "" {
			resolution[k] = v
		}
	}
	setIf("executed", res.Executed)
	setIf("attacked", res.Attacked)
	setIf("guarded", res.Guarded)
	setIf("morningVictim", res.MorningVictim)
	if len(res.Votes) > 0 {
		votes := make([]any, 0, len(res.Votes))
		for _, v := range res.Votes {
			votes = append(votes, map[string]any{"voter": v.Voter, "target": v.Target})
		}
		resolution["votes"] = votes
	}
	if len(res.Sightings) > 0 {
		sightings := make([]any, 0, len(res.Sightings))
		for _, s := range res.Sightings {
			sightings = append(sightings, map[string]any{
				"observer": s.Observer,
				"target":   s.Target,
				"verdict":  s.Verdict.String(),
				"medium":   s.Medium,
			})
		}
		resolution["sightings"] = sightings
	}

	return map[string]any{
		"round":      float64(rec.Round),
		"events":     events,
		"resolution": resolution,
	}
}

// GameEndPayload summarizes a finished world.
func GameEndPayload(w *werewolf.World) map[string]any {
	survivors := make([]any, 0)
	for _, a := range w.LivingAgents() {
		survivors = append(survivors, a.Name)
	}
	o := w.CheckWin()
	return map[string]any{
		"winner":    w.WinningTeam().String(),
		"rounds":    float64(w.Round()),
		"survivors": survivors,
		"wolfTeam":  float64(o.WolfTeam),
		"others":    float64(o.Others),
	}
}
