package client

import (
	"github.com/dan-strohschein/websql-driver/mapper"
)

// Response is the decoded outcome of a successful (HTTP 200) exchange: one
// typed result item per result record, in the exact order the server returned
// them. It is read-only.
type Response struct {
	// StatusCode is the HTTP status of the exchange (always 200 for a
	// Response produced by Send).
	StatusCode int

	// Results holds the per-item outcomes, positionally aligned with the
	// sub-requests that were sent.
	Results []mapper.Item

	// requested is the number of sub-requests that produced this response.
	requested int
}

// AssertAligned verifies that the server returned exactly one result record
// per sub-request sent. The service contract implies strict 1:1 positional
// correspondence, but the client does not enforce it during decoding; callers
// that index results by sub-request position should check this first.
func (r *Response) AssertAligned() error {
	if len(r.Results) == r.requested {
		return nil
	}
	return &StateError{
		Code:    "RESULT_MISALIGNED",
		Type:    "STATE_ERROR",
		Message: "result count does not match sub-request count",
		Details: map[string]interface{}{
			"requested": r.requested,
			"received":  len(r.Results),
		},
	}
}
