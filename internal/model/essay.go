package model

import "time"

// EssayStatus enumerates the review states of an essay.
type EssayStatus string

const (
	EssayStatusPending EssayStatus = "PENDING"
)

// Essay is a written answer to one of the catalogue themes. Grading is
// deferred; essays stay PENDING until a reviewer picks them up.
type Essay struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Theme     string      `json:"theme"`
	Body      string      `json:"body"`
	Status    EssayStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// SubmitEssayRequest is the payload for sending an essay.
type SubmitEssayRequest struct {
	Theme string `json:"theme" binding:"required,max=255"`
	Body  string `json:"body" binding:"required,max=20000"`
}
