package domain

import (
	"math"
	"time"
)

// Category is one entry of the provider's category listing.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Question is a provider question record. Text fields are stored with HTML
// entities already decoded; comparisons and rendering operate on decoded text.
type Question struct {
	Text             string   `json:"question"`
	CorrectAnswer    string   `json:"correctAnswer"`
	IncorrectAnswers []string `json:"incorrectAnswers"`
	Difficulty       string   `json:"difficulty"`
}

// Answer records one submitted answer. Created once per answered question,
// appended to the session, never mutated afterwards.
type Answer struct {
	Question      string `json:"question"`
	Selected      string `json:"selectedAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"isCorrect"`
}

// Session is the persisted state of one in-progress quiz attempt.
// Invariants: len(Answers) == CurrentIndex outside the answer transition,
// and CurrentIndex <= len(Questions). CurrentIndex == len(Questions) marks a
// complete session that must be finalized and never re-entered.
type Session struct {
	Category     string     `json:"category"`
	Questions    []Question `json:"questions"`
	CurrentIndex int        `json:"currentIndex"`
	Answers      []Answer   `json:"answers"`
	TimerBudget  int        `json:"timer"` // seconds
	StartedAt    time.Time  `json:"startTime"`
}

// Complete reports whether every question has been answered.
func (s Session) Complete() bool {
	return s.CurrentIndex >= len(s.Questions)
}

// Remaining derives the seconds left on the session's budget from wall-clock
// time. It never goes negative and never depends on a locally ticking counter,
// so reloads and backgrounding cannot extend the budget.
func (s Session) Remaining(now time.Time) int {
	elapsed := int(now.Sub(s.StartedAt) / time.Second)
	if remaining := s.TimerBudget - elapsed; remaining > 0 {
		return remaining
	}
	return 0
}

// Validate checks the structural invariants of a session read back from a
// store. A violation means the persisted record is corrupt.
func (s Session) Validate() error {
	switch {
	case len(s.Questions) == 0,
		s.CurrentIndex < 0,
		s.CurrentIndex > len(s.Questions),
		len(s.Answers) != s.CurrentIndex,
		s.TimerBudget <= 0,
		s.StartedAt.IsZero():
		return ErrCorruptState
	}
	return nil
}

// QuizConfig is the user-chosen quiz configuration.
type QuizConfig struct {
	Amount       int    `json:"amount"`
	Difficulty   string `json:"difficulty"`
	TimerMinutes int    `json:"timerMinutes"`
}

// QuestionRequest parameterizes a provider fetch.
type QuestionRequest struct {
	Amount     int
	Category   int
	Difficulty string
}

// ResultSummary is the terminal record of a quiz attempt. It is written once
// at the terminal transition, read once by the presentation layer, then deleted.
type ResultSummary struct {
	Category  string     `json:"category"`
	Total     int        `json:"total"`
	Attempted int        `json:"attempted"`
	Correct   int        `json:"correct"`
	Incorrect int        `json:"incorrect"`
	Questions []Question `json:"questions,omitempty"`
	Answers   []Answer   `json:"answers,omitempty"`
	EndedAt   time.Time  `json:"endTime"`
}

// Percentage is the display score; derived, never stored.
func (r ResultSummary) Percentage() int {
	if r.Total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(r.Correct) / float64(r.Total)))
}

// User is a registered account. Credentials are compared as plain text; this
// service does not pretend to be a security boundary.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
