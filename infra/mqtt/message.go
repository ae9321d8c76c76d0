package mqtt

import "encoding/json"

// SolveRequest asks the service to run a TNEP solve. The network document is
// carried inline; Model, Solver and Options override the configured defaults
// when set.
type SolveRequest struct {
	RequestID string          `json:"request_id"`
	Network   json.RawMessage `json:"network"`
	Model     string          `json:"model,omitempty"`
	Solver    string          `json:"solver,omitempty"`
	Options   map[string]any  `json:"options,omitempty"`
}

// SolveResponse carries the solve outcome back to the requester. Report is a
// JSON-encoded tnep.Report; Error is set instead when the solve failed.
type SolveResponse struct {
	RequestID string          `json:"request_id"`
	Report    json.RawMessage `json:"report,omitempty"`
	Error     string          `json:"error,omitempty"`
}
