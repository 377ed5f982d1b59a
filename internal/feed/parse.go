package feed

import (
	"encoding/json"
	"errors"

	"github.com/finvue/marketsync/internal/model"
)

// ErrUnrecognizedPayload is returned when a payload is neither a bare record
// array nor a recognized envelope.
var ErrUnrecognizedPayload = errors.New("unrecognized feed payload shape")

// envelope covers the object-wrapped response shapes. Endpoints disagree on
// the wrapper key, so both are accepted.
type envelope struct {
	Items []json.RawMessage `json:"items"`
	Data  []json.RawMessage `json:"data"`
}

// ParseRecords normalizes a feed payload into records. Accepted shapes:
// a bare JSON array, {"items": [...]}, or {"data": [...]}.
//
// Individual records that fail to decode are skipped; the payload as a whole
// only errors when its overall shape is unrecognizable.
func ParseRecords(data []byte) ([]model.Record, error) {
	raws, err := extractArray(data)
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(raws))
	for _, raw := range raws {
		var r model.Record
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		records = append(records, r)
	}

	return records, nil
}

// extractArray finds the record array regardless of envelope shape.
func extractArray(data []byte) ([]json.RawMessage, error) {
	var bare []json.RawMessage
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrUnrecognizedPayload
	}

	switch {
	case env.Items != nil:
		return env.Items, nil
	case env.Data != nil:
		return env.Data, nil
	default:
		return nil, ErrUnrecognizedPayload
	}
}
