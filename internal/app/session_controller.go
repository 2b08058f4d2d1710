package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quizis-session-service/internal/domain"
)

// ProgressStore abstracts how in-progress sessions are stored (in-memory, Redis, etc).
type ProgressStore interface {
	Get(ctx context.Context, userID string) (domain.Session, bool, error)
	Save(ctx context.Context, userID string, session domain.Session) error
	Delete(ctx context.Context, userID string) (bool, error)
}

// ResultStore holds finalized results between the terminal transition and the
// presentation layer consuming them.
type ResultStore interface {
	Get(ctx context.Context, userID string) (domain.ResultSummary, bool, error)
	Save(ctx context.Context, userID string, result domain.ResultSummary) error
	Delete(ctx context.Context, userID string) (bool, error)
}

// Provider supplies the category listing and question content.
type Provider interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	FetchQuestions(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error)
}

// SessionController owns the quiz session lifecycle: initialization from
// provider results, per-answer transitions, timer-driven expiry, scoring, and
// the terminal handoff to the result store.
type SessionController struct {
	progress ProgressStore
	results  ResultStore
	provider Provider
	clock    func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionController(progress ProgressStore, results ResultStore, provider Provider) *SessionController {
	return &SessionController{
		progress: progress,
		results:  results,
		provider: provider,
		clock:    time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		locks:    make(map[string]*sync.Mutex),
	}
}

// WithClock is test-only for deterministic timestamps.
func (c *SessionController) WithClock(now func() time.Time) *SessionController {
	c.clock = now
	return c
}

// WithRand is test-only for deterministic shuffles.
func (c *SessionController) WithRand(rnd *rand.Rand) *SessionController {
	c.rnd = rnd
	return c
}

// userLock serializes all lifecycle transitions for one user, which makes the
// terminal transition atomic to observers and resolves the expiry race between
// a tick and an in-flight final answer.
func (c *SessionController) userLock(userID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[userID] = lock
	}
	return lock
}

// Start fetches questions for the chosen category and configuration and
// persists a fresh session. It fails with domain.ErrNoQuestions when the
// provider returns an empty (but valid) result, and with
// domain.ErrQuizInProgress while an incomplete session exists.
func (c *SessionController) Start(ctx context.Context, userID string, category domain.Category, cfg domain.QuizConfig) (domain.Session, error) {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	existing, ok, err := c.progress.Get(ctx, userID)
	if err != nil {
		return domain.Session{}, err
	}
	if ok {
		if !existing.Complete() {
			return domain.Session{}, domain.ErrQuizInProgress
		}
		// A complete session should never survive in the store; finalize the
		// straggler before starting anew.
		if _, err := c.finalizeLocked(ctx, userID, existing); err != nil {
			return domain.Session{}, err
		}
	}

	// A session cannot exist without a positive budget; Validate would reject
	// it on the next read.
	if cfg.TimerMinutes < 1 {
		cfg.TimerMinutes = 1
	}

	questions, err := c.provider.FetchQuestions(ctx, domain.QuestionRequest{
		Amount:     cfg.Amount,
		Category:   category.ID,
		Difficulty: cfg.Difficulty,
	})
	if err != nil {
		return domain.Session{}, err
	}
	if len(questions) == 0 {
		return domain.Session{}, domain.ErrNoQuestions
	}

	session := domain.Session{
		Category:     category.Name,
		Questions:    questions,
		CurrentIndex: 0,
		Answers:      []domain.Answer{},
		TimerBudget:  cfg.TimerMinutes * 60,
		StartedAt:    c.clock(),
	}
	if err := c.progress.Save(ctx, userID, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Resume reads the stored session and derives the remaining time from the
// absolute start timestamp. It never mutates progress; a stale complete
// session found here is finalized and reported as absent.
func (c *SessionController) Resume(ctx context.Context, userID string) (domain.Session, int, error) {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, ok, err := c.progress.Get(ctx, userID)
	if err != nil {
		return domain.Session{}, 0, err
	}
	if !ok {
		return domain.Session{}, 0, domain.ErrSessionNotFound
	}
	if err := session.Validate(); err != nil {
		// Drop the unreadable record so the user can start over.
		_, _ = c.progress.Delete(ctx, userID)
		return domain.Session{}, 0, err
	}
	if session.Complete() {
		if _, err := c.finalizeLocked(ctx, userID, session); err != nil {
			return domain.Session{}, 0, err
		}
		return domain.Session{}, 0, domain.ErrSessionNotFound
	}
	return session, session.Remaining(c.clock()), nil
}

// SubmitOutcome is the result of one answer submission: exactly one of Next
// (continuation) or Result (terminal transition) is set.
type SubmitOutcome struct {
	Next   *domain.Session
	Result *domain.ResultSummary
}

// SubmitAnswer records the user's answer for questionIndex and advances the
// session. Answering the final question performs the terminal transition:
// the result is persisted and the session removed, atomically from the
// caller's perspective. A submission for any index other than the current one
// is rejected with domain.ErrStaleSubmission, which also covers duplicate
// submissions for the same question.
func (c *SessionController) SubmitAnswer(ctx context.Context, userID string, questionIndex int, selected string) (SubmitOutcome, error) {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, ok, err := c.progress.Get(ctx, userID)
	if err != nil {
		return SubmitOutcome{}, err
	}
	if !ok {
		// Already terminated by expiry; the submission is a no-op.
		return SubmitOutcome{}, domain.ErrSessionNotFound
	}
	if err := session.Validate(); err != nil {
		_, _ = c.progress.Delete(ctx, userID)
		return SubmitOutcome{}, err
	}
	if session.Complete() || questionIndex != session.CurrentIndex {
		return SubmitOutcome{}, domain.ErrStaleSubmission
	}

	question := session.Questions[session.CurrentIndex]
	session.Answers = append(session.Answers, domain.Answer{
		Question:      question.Text,
		Selected:      selected,
		CorrectAnswer: question.CorrectAnswer,
		Correct:       selected == question.CorrectAnswer,
	})
	session.CurrentIndex++

	if session.Complete() {
		result, err := c.finalizeLocked(ctx, userID, session)
		if err != nil {
			return SubmitOutcome{}, err
		}
		return SubmitOutcome{Result: &result}, nil
	}

	if err := c.progress.Save(ctx, userID, session); err != nil {
		return SubmitOutcome{}, err
	}
	return SubmitOutcome{Next: &session}, nil
}

// Tick derives the remaining seconds for the user's active session. When the
// budget is exhausted it performs the terminal transition exactly once; a tick
// arriving after termination observes an absent session and is a no-op.
func (c *SessionController) Tick(ctx context.Context, userID string) (int, *domain.ResultSummary, error) {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, ok, err := c.progress.Get(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		return 0, nil, domain.ErrSessionNotFound
	}
	remaining := session.Remaining(c.clock())
	if remaining > 0 {
		return remaining, nil, nil
	}
	result, err := c.finalizeLocked(ctx, userID, session)
	if err != nil {
		return 0, nil, err
	}
	return 0, &result, nil
}

// ForceEnd terminates the session on timer expiry, scoring whatever answers
// have accumulated. It re-reads the store rather than trusting the caller's
// possibly stale copy, and is idempotent: once the session is gone, a second
// expiry trigger does nothing.
func (c *SessionController) ForceEnd(ctx context.Context, userID string) (domain.ResultSummary, error) {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, ok, err := c.progress.Get(ctx, userID)
	if err != nil {
		return domain.ResultSummary{}, err
	}
	if !ok {
		return domain.ResultSummary{}, domain.ErrSessionNotFound
	}
	return c.finalizeLocked(ctx, userID, session)
}

// finalizeLocked performs the terminal transition: persist the result, delete
// the session. Callers must hold the user lock and have observed the session
// present in the store.
func (c *SessionController) finalizeLocked(ctx context.Context, userID string, session domain.Session) (domain.ResultSummary, error) {
	result := DeriveResult(session)
	result.EndedAt = c.clock()
	if err := c.results.Save(ctx, userID, result); err != nil {
		return domain.ResultSummary{}, err
	}
	if _, err := c.progress.Delete(ctx, userID); err != nil {
		return domain.ResultSummary{}, err
	}
	return result, nil
}

// QuestionView is the presentation form of the current question, with the
// correct and incorrect answers shuffled into one option list.
type QuestionView struct {
	Index      int      `json:"index"`
	Total      int      `json:"total"`
	Text       string   `json:"question"`
	Difficulty string   `json:"difficulty"`
	Options    []string `json:"options"`
}

// PresentQuestion builds the view for the session's current question. The
// option order comes from a Fisher-Yates shuffle, so every option is equally
// likely to land in every position. Returns false for a complete session.
func (c *SessionController) PresentQuestion(session domain.Session) (QuestionView, bool) {
	if session.Complete() {
		return QuestionView{}, false
	}
	question := session.Questions[session.CurrentIndex]
	options := make([]string, 0, len(question.IncorrectAnswers)+1)
	options = append(options, question.IncorrectAnswers...)
	options = append(options, question.CorrectAnswer)

	c.rndMu.Lock()
	c.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	c.rndMu.Unlock()

	return QuestionView{
		Index:      session.CurrentIndex,
		Total:      len(session.Questions),
		Text:       question.Text,
		Difficulty: question.Difficulty,
		Options:    options,
	}, true
}

// ResumeNotice is advisory state for the home screen: an incomplete session
// exists and starting a new quiz should be suppressed until it is resumed or
// expires.
type ResumeNotice struct {
	Category  string `json:"category"`
	Answered  int    `json:"answered"`
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
}

// CheckResume reports whether an incomplete session exists for the user.
// It is read-only; finalizing stragglers is Resume's job.
func (c *SessionController) CheckResume(ctx context.Context, userID string) (*ResumeNotice, error) {
	session, ok, err := c.progress.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok || session.Complete() {
		return nil, nil
	}
	return &ResumeNotice{
		Category:  session.Category,
		Answered:  session.CurrentIndex,
		Total:     len(session.Questions),
		Remaining: session.Remaining(c.clock()),
	}, nil
}

// ConsumeResult hands the finalized result to the presentation layer with
// read-once semantics: the stored record is deleted as it is read.
func (c *SessionController) ConsumeResult(ctx context.Context, userID string) (domain.ResultSummary, error) {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	result, ok, err := c.results.Get(ctx, userID)
	if err != nil {
		return domain.ResultSummary{}, err
	}
	if !ok {
		return domain.ResultSummary{}, domain.ErrResultNotFound
	}
	if _, err := c.results.Delete(ctx, userID); err != nil {
		return domain.ResultSummary{}, err
	}
	return result, nil
}

// DeriveResult scores a session. It is a pure function over the accumulated
// answers; calling it repeatedly on the same session yields identical values.
func DeriveResult(session domain.Session) domain.ResultSummary {
	correct := 0
	for _, answer := range session.Answers {
		if answer.Correct {
			correct++
		}
	}
	return domain.ResultSummary{
		Category:  session.Category,
		Total:     len(session.Questions),
		Attempted: len(session.Answers),
		Correct:   correct,
		Incorrect: len(session.Answers) - correct,
		Questions: session.Questions,
		Answers:   session.Answers,
	}
}
