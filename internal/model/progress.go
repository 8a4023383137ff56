package model

import "time"

// AnswerRecord is the latest answer a user gave to a question. There is at
// most one record per question identity.
type AnswerRecord struct {
	QuestionID string    `json:"question_id"`
	Question   Question  `json:"question"`
	UserAnswer string    `json:"user_answer"`
	IsCorrect  bool      `json:"is_correct"`
	Subject    string    `json:"subject"`
	Timestamp  time.Time `json:"timestamp"`
}

// SubjectScore is the per-subject part of a graded simulation.
type SubjectScore struct {
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	Score   float64 `json:"score"`
}

// SimulationResult is a completed mock exam. Immutable once recorded.
type SimulationResult struct {
	Date           time.Time               `json:"date"`
	Score          float64                 `json:"score"`
	Passed         bool                    `json:"passed"`
	TimeSpent      int                     `json:"time_spent"` // seconds
	ScoreBySubject map[string]SubjectScore `json:"score_by_subject"`
}

// UserProgress is the aggregate view over a user's answers and simulations.
type UserProgress struct {
	QuestionsAnswered      []AnswerRecord     `json:"questions_answered"`
	SimulationsCompleted   []SimulationResult `json:"simulations_completed"`
	TotalQuestionsAnswered int                `json:"total_questions_answered"`
	TotalCorrectAnswers    int                `json:"total_correct_answers"`
	IsPremium              bool               `json:"is_premium"`
}

// Dashboard is the summary served to the progress page.
type Dashboard struct {
	TotalQuestionsAnswered int                    `json:"total_questions_answered"`
	TotalCorrectAnswers    int                    `json:"total_correct_answers"`
	IncorrectCount         int                    `json:"incorrect_count"`
	IsPremium              bool                   `json:"is_premium"`
	FreeLimitReached       bool                   `json:"free_limit_reached"`
	SimulationsCompleted   int                    `json:"simulations_completed"`
	LatestSimulation       *SimulationResult      `json:"latest_simulation"`
	AverageScore           int                    `json:"average_score"`
	TotalStudyTime         int                    `json:"total_study_time"`
	Subjects               map[string]SubjectStat `json:"subjects"`
}
