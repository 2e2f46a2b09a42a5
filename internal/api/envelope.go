package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// successEnvelope wraps successful response bodies.
type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// errorEnvelope wraps error response bodies.
type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// EnvelopeTransformer wraps every response body in the API envelope:
// {"success":true,"data":…} for 2xx, {"success":false,"error":…}
// otherwise. Clients can branch on the success flag without inspecting
// status codes.
func EnvelopeTransformer(ctx huma.Context, status string, v any) (any, error) {
	if v == nil {
		return v, nil
	}

	if apiErr, ok := v.(*APIError); ok {
		return &errorEnvelope{Success: false, Error: apiErr}, nil
	}

	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		return &errorEnvelope{Success: false, Error: &APIError{
			Code:    statusToCode(0),
			Message: "request failed",
		}}, nil
	}

	return &successEnvelope{Success: true, Data: v}, nil
}
