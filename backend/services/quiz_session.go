package services

import (
	"context"
	"errors"
	"math"
)

// SessionState is the quiz machine's position. Verifying is never a resting
// state: a failed verification reverts to Answering before Confirm returns.
type SessionState int

const (
	StateNotStarted SessionState = iota
	StateAnswering
	StateVerifying
	StateAnswered
	StateCompleted
	StateEmpty // quiz exists but has no questions
)

func (s SessionState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateAnswering:
		return "answering"
	case StateVerifying:
		return "verifying"
	case StateAnswered:
		return "answered"
	case StateCompleted:
		return "completed"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

var (
	ErrNoSelection     = errors.New("no option selected")
	ErrInvalidOption   = errors.New("selected option out of range")
	ErrBadTransition   = errors.New("operation not allowed in current state")
	ErrRetryNotAllowed = errors.New("retry is only available after a failed attempt")
)

// QuestionOutcome is one verified answer. The ordered outcome list is the
// sole source of truth for scoring; it is never recomputed from raw answers.
type QuestionOutcome struct {
	QuestionID     uint   `json:"question_id"`
	SelectedOption int    `json:"selected_option"`
	IsCorrect      bool   `json:"is_correct"`
	CorrectOption  int    `json:"correct_option"`
	Explanation    string `json:"explanation,omitempty"`
}

type QuizResult struct {
	Score        int  `json:"score"` // rounded percentage
	Correct      int  `json:"correct"`
	Total        int  `json:"total"`
	Passed       bool `json:"passed"`
	PointsEarned int  `json:"points_earned"`
}

// QuizScoreSaver is the slice of the progress tracker the session needs.
type QuizScoreSaver interface {
	SaveQuizScore(ctx context.Context, lessonID uint, score int) error
}

// QuizSession drives one user through a quiz's questions, one at a time.
// Transitions happen one at a time on discrete events; callers serialize
// access (see SessionManager).
type QuizSession struct {
	Quiz    QuizInfo
	prompts []QuestionPrompt

	verifier AnswerVerifier
	saver    QuizScoreSaver

	// AllowRetryAfterPass relaxes the retry policy. Off by default: a passing
	// outcome routes the user away from the quiz instead.
	AllowRetryAfterPass bool

	state     SessionState
	current   int
	selection int // pending selection for the current question, -1 = none
	outcomes  []QuestionOutcome
	result    *QuizResult
}

func NewQuizSession(quiz QuizInfo, prompts []QuestionPrompt, verifier AnswerVerifier, saver QuizScoreSaver) *QuizSession {
	return &QuizSession{
		Quiz:      quiz,
		prompts:   prompts,
		verifier:  verifier,
		saver:     saver,
		state:     StateNotStarted,
		selection: -1,
	}
}

// Start moves NotStarted to Answering(0), or straight to the Empty terminal
// state when the quiz has no questions. Empty performs no progress write.
func (qs *QuizSession) Start() error {
	if qs.state != StateNotStarted {
		return ErrBadTransition
	}
	if len(qs.prompts) == 0 {
		qs.state = StateEmpty
		return nil
	}
	qs.state = StateAnswering
	qs.current = 0
	qs.selection = -1
	return nil
}

// Select records a pending option for the current question. Re-selecting
// before Confirm simply replaces the previous choice.
func (qs *QuizSession) Select(option int) error {
	if qs.state != StateAnswering {
		return ErrBadTransition
	}
	if option < 0 || option >= len(qs.prompts[qs.current].Options) {
		return ErrInvalidOption
	}
	qs.selection = option
	return nil
}

// Confirm commits the pending selection and verifies it server-side. On a
// verification failure the machine reverts to Answering with the selection
// preserved and no outcome recorded, so the caller can retry.
func (qs *QuizSession) Confirm(ctx context.Context) (*QuestionOutcome, error) {
	if qs.state != StateAnswering {
		return nil, ErrBadTransition
	}
	if qs.selection < 0 {
		return nil, ErrNoSelection
	}

	prompt := qs.prompts[qs.current]
	qs.state = StateVerifying

	res, err := qs.verifier.Verify(ctx, prompt.ID, qs.selection)
	if err != nil {
		qs.state = StateAnswering // selection intact
		return nil, err
	}

	outcome := QuestionOutcome{
		QuestionID:     prompt.ID,
		SelectedOption: qs.selection,
		IsCorrect:      res.IsCorrect,
		CorrectOption:  res.CorrectOption,
		Explanation:    res.Explanation,
	}
	qs.outcomes = append(qs.outcomes, outcome)
	qs.state = StateAnswered
	return &outcome, nil
}

// Next advances past an answered question. After the last one it enters
// Completed, computes the tally and persists the score exactly once via the
// progress tracker, pass or fail. A failed persistence leaves the machine in
// Answered so Next can be retried.
func (qs *QuizSession) Next(ctx context.Context) error {
	if qs.state != StateAnswered {
		return ErrBadTransition
	}

	if qs.current < len(qs.prompts)-1 {
		qs.current++
		qs.selection = -1
		qs.state = StateAnswering
		return nil
	}

	correct := 0
	for _, o := range qs.outcomes {
		if o.IsCorrect {
			correct++
		}
	}
	total := len(qs.prompts)
	score := int(math.Round(float64(correct) / float64(total) * 100))
	passed := score >= qs.Quiz.PassingScore

	if err := qs.saver.SaveQuizScore(ctx, qs.Quiz.LessonID, score); err != nil {
		return err
	}

	points := 0
	if passed {
		points = qs.Quiz.PointsReward
	}
	qs.result = &QuizResult{
		Score:        score,
		Correct:      correct,
		Total:        total,
		Passed:       passed,
		PointsEarned: points,
	}
	qs.state = StateCompleted
	return nil
}

// Retry resets a completed failed attempt back to NotStarted with all
// accumulated answers cleared.
func (qs *QuizSession) Retry() error {
	if qs.state != StateCompleted {
		return ErrBadTransition
	}
	if qs.result.Passed && !qs.AllowRetryAfterPass {
		return ErrRetryNotAllowed
	}
	qs.state = StateNotStarted
	qs.current = 0
	qs.selection = -1
	qs.outcomes = nil
	qs.result = nil
	return nil
}

func (qs *QuizSession) State() SessionState { return qs.state }

// CurrentIndex is the zero-based index of the question in play.
func (qs *QuizSession) CurrentIndex() int { return qs.current }

// Selection returns the pending option for the current question, -1 if none.
func (qs *QuizSession) Selection() int { return qs.selection }

func (qs *QuizSession) Prompts() []QuestionPrompt { return qs.prompts }

// CurrentPrompt returns the question in play, or nil outside Answering,
// Verifying and Answered.
func (qs *QuizSession) CurrentPrompt() *QuestionPrompt {
	switch qs.state {
	case StateAnswering, StateVerifying, StateAnswered:
		return &qs.prompts[qs.current]
	}
	return nil
}

func (qs *QuizSession) Outcomes() []QuestionOutcome { return qs.outcomes }

// Result is non-nil only in Completed.
func (qs *QuizSession) Result() *QuizResult { return qs.result }
