package status

import "encoding/json"

// Envelope is the response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}) Envelope {
	return Envelope{Status: "success", Data: data}
}

// NewError returns an error envelope.
func NewError(code, message string) Envelope {
	return Envelope{Status: "error", Code: code, Error: message}
}

// String returns the JSON representation for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// View is the countdown snapshot served by GET /status.
type View struct {
	Active         bool   `json:"active"`
	CycleID        string `json:"cycle_id,omitempty"`
	Task           string `json:"task,omitempty"`
	Minutes        string `json:"minutes"`
	Seconds        string `json:"seconds"`
	CurrentSeconds int    `json:"current_seconds"`
	TotalSeconds   int    `json:"total_seconds"`
	Title          string `json:"title"`
}

// StartRequest is the body of POST /cycles.
type StartRequest struct {
	Task          string `json:"task"`
	MinutesAmount int    `json:"minutes_amount"`
}
