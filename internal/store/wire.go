package store

import (
	"encoding/json"
	"strings"

	"countdown-cli/internal/model"
)

// EncodeEvents serializes the full list as a JSON array with field names preserved.
func EncodeEvents(events []model.CountdownEvent) ([]byte, error) {
	if events == nil {
		events = []model.CountdownEvent{}
	}
	return json.Marshal(events)
}

// DecodeEvents parses a persisted blob. Missing or malformed data decodes as "no data"
// (ok=false); callers never see a parse error.
func DecodeEvents(b []byte) ([]model.CountdownEvent, bool) {
	if isNullOrEmpty(b) {
		return nil, false
	}
	var events []model.CountdownEvent
	if err := json.Unmarshal(b, &events); err != nil {
		return nil, false
	}
	return events, true
}

// decodeLegacyEvents accepts both the bare array and the older {"events": [...]} wrapper.
func decodeLegacyEvents(b []byte) ([]model.CountdownEvent, bool) {
	if events, ok := DecodeEvents(b); ok {
		return events, true
	}
	var wrapped struct {
		Events []model.CountdownEvent `json:"events"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil || wrapped.Events == nil {
		return nil, false
	}
	return wrapped.Events, true
}

func isNullOrEmpty(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	s := strings.TrimSpace(string(b))
	return s == "" || s == "null"
}
