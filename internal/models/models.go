package models

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty labels. Passed through to the generation prompt and stored
// verbatim; not enforced beyond the default.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Attempt status values for a quiz. The only transition is
// unattempted -> attempted, performed by the submit operation.
const (
	AttemptStatusUnattempted = "unattempted"
	AttemptStatusAttempted   = "attempted"
)

// Question is one generated multiple-choice question. Questions are embedded
// in their quiz and not independently addressable.
type Question struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation"`
}

// SelectedAnswers maps a question index (as a string) to the option index the
// user picked on their latest attempt.
type SelectedAnswers map[string]int

// Quiz is the persisted quiz aggregate, including the latest attempt state.
type Quiz struct {
	ID              uuid.UUID       `json:"id"`
	Email           string          `json:"email"`
	Topic           string          `json:"topic"`
	Difficulty      string          `json:"difficulty"`
	Questions       []Question      `json:"questions"`
	SelectedAnswers SelectedAnswers `json:"selectedAnswers"`
	Score           int             `json:"score"`
	AttemptStatus   string          `json:"attemptStatus"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Attempted reports whether the quiz has a recorded attempt.
func (q Quiz) Attempted() bool {
	return q.AttemptStatus == AttemptStatusAttempted
}

// QuizSummary is the projection returned when listing a user's quizzes.
type QuizSummary struct {
	ID         uuid.UUID       `json:"id"`
	Topic      string          `json:"topic"`
	Difficulty string          `json:"difficulty"`
	Attempted  bool            `json:"attempted"`
	Score      int             `json:"score"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Quiz       Quiz            `json:"quiz"`
	Answers    SelectedAnswers `json:"answers"`
}

// Summary projects a quiz into its list view.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:         q.ID,
		Topic:      q.Topic,
		Difficulty: q.Difficulty,
		Attempted:  q.Attempted(),
		Score:      q.Score,
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
		Quiz:       q,
		Answers:    q.SelectedAnswers,
	}
}

// User is a profile record. Email is the natural key; there is no deletion
// path.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
