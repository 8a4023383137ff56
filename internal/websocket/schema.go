package websocket

import "github.com/gmprep/simulado-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAutosave Action = "autosave"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// Request is a client message. Index and Answer are only read for autosave.
type Request struct {
	Action Action `json:"action"`
	Index  *int   `json:"index,omitempty"`
	Answer string `json:"answer,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventSaved  Event = "saved"
	EventTick   Event = "tick"
	EventGraded Event = "graded"
	EventPong   Event = "pong"
)

// SavedResponse acknowledges an autosave.
type SavedResponse struct {
	Event Event `json:"event"`
	Index int   `json:"index"`
}

// TickResponse reports the time left, in whole seconds.
type TickResponse struct {
	Event     Event `json:"event"`
	Remaining int   `json:"remaining"`
}

// GradedResponse carries the final result of the simulation.
type GradedResponse struct {
	Event  Event                    `json:"event"`
	Result *model.SimulationOutcome `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
