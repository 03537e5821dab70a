package models

import "encoding/json"

// ResultEnvelope is the conventional shape of a completed task's response:
// {"status": "...", "data": {...}}. Envelopes live only in the in-memory
// execution context of one run; they are never persisted.
type ResultEnvelope struct {
	Status string                 `json:"status"`
	Data   map[string]interface{} `json:"data"`
}

// ParseEnvelope decodes a raw response body into an envelope. Bodies that do
// not follow the convention decode to whatever fields match; a decode error
// is returned for non-JSON payloads.
func ParseEnvelope(raw string) (ResultEnvelope, error) {
	var env ResultEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return ResultEnvelope{}, err
	}
	return env, nil
}
