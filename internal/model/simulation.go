package model

import "time"

// BucketReport describes how one subject quota was filled.
type BucketReport struct {
	Subject   string `json:"subject"`
	Quota     int    `json:"quota"`
	Available int    `json:"available"`
	Selected  int    `json:"selected"`
	Shortfall int    `json:"shortfall"`
}

// SimulationSession is a mock exam in progress.
type SimulationSession struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Questions []Question     `json:"questions"`
	Buckets   []BucketReport `json:"buckets"`
	Target    int            `json:"target"`
	Shortfall int            `json:"shortfall"`
	StartedAt time.Time      `json:"started_at"`
	Deadline  time.Time      `json:"deadline"`
}

// Duration is the total time allowed for the session.
func (s *SimulationSession) Duration() time.Duration {
	return s.Deadline.Sub(s.StartedAt)
}

// SimulationPaper is the student-facing view of a started simulation.
type SimulationPaper struct {
	ID        string               `json:"id"`
	Questions []QuestionForStudent `json:"questions"`
	Buckets   []BucketReport       `json:"buckets"`
	Composed  int                  `json:"composed"`
	Target    int                  `json:"target"`
	Warning   string               `json:"warning,omitempty"`
	StartedAt time.Time            `json:"started_at"`
	Deadline  time.Time            `json:"deadline"`
}

// SimulationState lets a client resume after a reload.
type SimulationState struct {
	ID            string         `json:"id"`
	Answers       map[int]string `json:"answers"`
	RemainingTime float64        `json:"remaining_time"` // seconds
	Finished      bool           `json:"finished"`
}

// SimulationOutcome is the graded result returned to the client.
type SimulationOutcome struct {
	SimulationResult
	SimulationID   string `json:"simulation_id"`
	AnsweredCount  int    `json:"answered_count"`
	TotalQuestions int    `json:"total_questions"`
}

// SimulationAnswerRequest saves the chosen option for one question of the paper.
type SimulationAnswerRequest struct {
	Index  *int   `json:"index" binding:"required,min=0"`
	Answer string `json:"answer" binding:"required,option"`
}
