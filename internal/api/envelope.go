package api

import (
	"encoding/json"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

const envelopeVersion = 1

// Envelope is the shape of every JSON response body.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Details any    `json:"details,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Version int    `json:"v"`
	Success bool   `json:"success"`
}

// EnvelopeTransformer wraps response bodies in an Envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return Envelope{
			Version: envelopeVersion,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Details: apiErr.Details,
		}, nil
	}
	if model, ok := v.(*huma.ErrorModel); ok {
		return Envelope{Version: envelopeVersion, Error: model.Detail, Code: statusToCode(model.Status)}, nil
	}
	return Envelope{
		Version: envelopeVersion,
		Success: !strings.HasPrefix(status, "4") && !strings.HasPrefix(status, "5"),
		Data:    v,
	}, nil
}

// unwrapEnvelope returns the data of an enveloped document, or raw unchanged.
// It lets an exported response be imported as-is.
func unwrapEnvelope(raw []byte) []byte {
	var probe struct {
		Data    json.RawMessage `json:"data"`
		Version *int            `json:"v"`
		Success *bool           `json:"success"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return raw
	}
	if probe.Version == nil || probe.Success == nil || len(probe.Data) == 0 {
		return raw
	}
	return probe.Data
}
