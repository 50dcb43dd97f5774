package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyedVerifier struct {
	correct  map[uint]int
	failNext error
	calls    int
}

func (v *keyedVerifier) Verify(_ context.Context, questionID uint, selectedOption int) (VerifyResult, error) {
	v.calls++
	if v.failNext != nil {
		err := v.failNext
		v.failNext = nil
		return VerifyResult{}, err
	}
	c := v.correct[questionID]
	return VerifyResult{
		IsCorrect:     selectedOption == c,
		CorrectOption: c,
		Explanation:   fmt.Sprintf("option %d is right", c),
	}, nil
}

type recordingSaver struct {
	scores []int
	fail   error
}

func (s *recordingSaver) SaveQuizScore(_ context.Context, _ uint, score int) error {
	if s.fail != nil {
		return s.fail
	}
	s.scores = append(s.scores, score)
	return nil
}

func quizFixture(questions int) (QuizInfo, []QuestionPrompt, *keyedVerifier) {
	quiz := QuizInfo{ID: 1, LessonID: 42, Title: "Checkpoint", PassingScore: 70, PointsReward: 100}
	prompts := make([]QuestionPrompt, 0, questions)
	correct := make(map[uint]int, questions)
	for i := 0; i < questions; i++ {
		id := uint(i + 1)
		prompts = append(prompts, QuestionPrompt{
			ID:         id,
			Text:       fmt.Sprintf("question %d", id),
			Options:    []string{"a", "b", "c", "d"},
			OrderIndex: i,
		})
		correct[id] = 0
	}
	return quiz, prompts, &keyedVerifier{correct: correct}
}

// answer walks one question through Select, Confirm and Next.
func answer(t *testing.T, qs *QuizSession, option int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, qs.Select(option))
	_, err := qs.Confirm(ctx)
	require.NoError(t, err)
	require.NoError(t, qs.Next(ctx))
}

func TestQuizSessionPassAtBoundary(t *testing.T) {
	quiz, prompts, verifier := quizFixture(10)
	saver := &recordingSaver{}
	qs := NewQuizSession(quiz, prompts, verifier, saver)
	require.NoError(t, qs.Start())

	// 7 correct out of 10 with passing_score 70
	for i := 0; i < 10; i++ {
		if i < 7 {
			answer(t, qs, 0)
		} else {
			answer(t, qs, 1)
		}
	}

	assert.Equal(t, StateCompleted, qs.State())
	result := qs.Result()
	require.NotNil(t, result)
	assert.Equal(t, 70, result.Score)
	assert.Equal(t, 7, result.Correct)
	assert.Equal(t, 10, result.Total)
	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.PointsEarned)
	assert.Equal(t, []int{70}, saver.scores)
}

func TestQuizSessionFailBelowBoundary(t *testing.T) {
	quiz, prompts, verifier := quizFixture(10)
	saver := &recordingSaver{}
	qs := NewQuizSession(quiz, prompts, verifier, saver)
	require.NoError(t, qs.Start())

	// 6 correct out of 10 lands just under the passing score
	for i := 0; i < 10; i++ {
		if i < 6 {
			answer(t, qs, 0)
		} else {
			answer(t, qs, 1)
		}
	}

	result := qs.Result()
	require.NotNil(t, result)
	assert.Equal(t, 60, result.Score)
	assert.False(t, result.Passed)
	assert.Equal(t, 0, result.PointsEarned)
	// score is persisted even on a failed attempt
	assert.Equal(t, []int{60}, saver.scores)
}

func TestQuizSessionEmptyQuiz(t *testing.T) {
	quiz, _, verifier := quizFixture(0)
	saver := &recordingSaver{}
	qs := NewQuizSession(quiz, nil, verifier, saver)

	require.NoError(t, qs.Start())
	assert.Equal(t, StateEmpty, qs.State())
	assert.Nil(t, qs.CurrentPrompt())
	assert.Empty(t, saver.scores)

	assert.ErrorIs(t, qs.Select(0), ErrBadTransition)
	assert.ErrorIs(t, qs.Next(context.Background()), ErrBadTransition)
}

func TestQuizSessionVerificationFailureRecovers(t *testing.T) {
	quiz, prompts, verifier := quizFixture(3)
	saver := &recordingSaver{}
	qs := NewQuizSession(quiz, prompts, verifier, saver)
	require.NoError(t, qs.Start())
	ctx := context.Background()

	require.NoError(t, qs.Select(2))
	verifier.failNext = &TransientError{Err: errors.New("timeout")}

	_, err := qs.Confirm(ctx)
	require.Error(t, err)
	assert.True(t, IsTransient(err))

	// machine is back in Answering with the selection intact and no outcome
	assert.Equal(t, StateAnswering, qs.State())
	assert.Equal(t, 0, qs.CurrentIndex())
	assert.Equal(t, 2, qs.Selection())
	assert.Empty(t, qs.Outcomes())

	outcome, err := qs.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.SelectedOption)
	assert.Len(t, qs.Outcomes(), 1)
}

func TestQuizSessionSelectionRules(t *testing.T) {
	quiz, prompts, verifier := quizFixture(2)
	qs := NewQuizSession(quiz, prompts, verifier, &recordingSaver{})
	require.NoError(t, qs.Start())
	ctx := context.Background()

	_, err := qs.Confirm(ctx)
	assert.ErrorIs(t, err, ErrNoSelection)

	assert.ErrorIs(t, qs.Select(-1), ErrInvalidOption)
	assert.ErrorIs(t, qs.Select(4), ErrInvalidOption)

	// re-selecting replaces the pending choice
	require.NoError(t, qs.Select(1))
	require.NoError(t, qs.Select(3))
	assert.Equal(t, 3, qs.Selection())

	outcome, err := qs.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.SelectedOption)
	assert.False(t, outcome.IsCorrect)

	// selection resets when the next question opens
	require.NoError(t, qs.Next(ctx))
	assert.Equal(t, -1, qs.Selection())
	assert.Equal(t, 1, qs.CurrentIndex())
}

func TestQuizSessionBadTransitions(t *testing.T) {
	quiz, prompts, verifier := quizFixture(2)
	qs := NewQuizSession(quiz, prompts, verifier, &recordingSaver{})
	ctx := context.Background()

	assert.ErrorIs(t, qs.Select(0), ErrBadTransition)
	assert.ErrorIs(t, qs.Next(ctx), ErrBadTransition)
	assert.ErrorIs(t, qs.Retry(), ErrBadTransition)

	require.NoError(t, qs.Start())
	assert.ErrorIs(t, qs.Start(), ErrBadTransition)
	assert.ErrorIs(t, qs.Next(ctx), ErrBadTransition)
}

func TestQuizSessionRetryAfterFail(t *testing.T) {
	quiz, prompts, verifier := quizFixture(2)
	saver := &recordingSaver{}
	qs := NewQuizSession(quiz, prompts, verifier, saver)
	require.NoError(t, qs.Start())

	answer(t, qs, 1)
	answer(t, qs, 1)
	require.Equal(t, StateCompleted, qs.State())
	require.False(t, qs.Result().Passed)

	require.NoError(t, qs.Retry())
	assert.Equal(t, StateNotStarted, qs.State())
	assert.Empty(t, qs.Outcomes())
	assert.Nil(t, qs.Result())

	// second attempt passes and persists a second score
	require.NoError(t, qs.Start())
	answer(t, qs, 0)
	answer(t, qs, 0)
	require.NotNil(t, qs.Result())
	assert.True(t, qs.Result().Passed)
	assert.Equal(t, []int{0, 100}, saver.scores)
}

func TestQuizSessionRetryAfterPassBlocked(t *testing.T) {
	quiz, prompts, verifier := quizFixture(2)
	qs := NewQuizSession(quiz, prompts, verifier, &recordingSaver{})
	require.NoError(t, qs.Start())

	answer(t, qs, 0)
	answer(t, qs, 0)
	require.True(t, qs.Result().Passed)

	assert.ErrorIs(t, qs.Retry(), ErrRetryNotAllowed)

	qs.AllowRetryAfterPass = true
	assert.NoError(t, qs.Retry())
}

func TestQuizSessionSaveFailureStaysAnswered(t *testing.T) {
	quiz, prompts, verifier := quizFixture(1)
	saver := &recordingSaver{fail: &TransientError{Err: errors.New("write failed")}}
	qs := NewQuizSession(quiz, prompts, verifier, saver)
	require.NoError(t, qs.Start())
	ctx := context.Background()

	require.NoError(t, qs.Select(0))
	_, err := qs.Confirm(ctx)
	require.NoError(t, err)

	err = qs.Next(ctx)
	require.Error(t, err)
	assert.Equal(t, StateAnswered, qs.State())
	assert.Nil(t, qs.Result())

	saver.fail = nil
	require.NoError(t, qs.Next(ctx))
	assert.Equal(t, StateCompleted, qs.State())
	assert.Equal(t, []int{100}, saver.scores)
}

func TestQuestionPromptNeverCarriesAnswerKey(t *testing.T) {
	prompt := QuestionPrompt{
		ID:          1,
		Text:        "pick one",
		Options:     []string{"a", "b"},
		Explanation: "because",
		OrderIndex:  0,
	}

	raw, err := json.Marshal(prompt)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "correct_option")
	assert.NotContains(t, fields, "is_correct")
}
