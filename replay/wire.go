package replay

import "encoding/json"

// WireRunTape is the camelCase shape served to clients.
type WireRunTape struct {
	TapeVersion int            `json:"tapeVersion"`
	RunID       string         `json:"runId"`
	HeroSeat    int            `json:"heroSeat"`
	Events      []WireRunEvent `json:"events"`
}

type WireRunEvent struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func ToWireRunTape(tape *RunTape) *WireRunTape {
	if tape == nil {
		return nil
	}
	out := &WireRunTape{
		TapeVersion: tape.TapeVersion,
		RunID:       tape.RunID,
		HeroSeat:    tape.HeroSeat,
		Events:      make([]WireRunEvent, 0, len(tape.Events)),
	}
	for _, e := range tape.Events {
		out.Events = append(out.Events, WireRunEvent{
			Type:    e.Type,
			Seq:     e.Seq,
			Payload: e.Payload,
		})
	}
	return out
}
