package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManagerOwnership(t *testing.T) {
	m := NewSessionManager()
	quiz, prompts, verifier := quizFixture(1)
	token := m.Create(7, NewQuizSession(quiz, prompts, verifier, &recordingSaver{}))

	called := false
	err := m.With(token, 7, func(qs *QuizSession) error {
		called = true
		return qs.Start()
	})
	require.NoError(t, err)
	assert.True(t, called)

	// a different user cannot even learn the token exists
	err = m.With(token, 8, func(*QuizSession) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionManagerUnknownToken(t *testing.T) {
	m := NewSessionManager()
	err := m.With("no-such-token", 7, func(*QuizSession) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionManagerRemove(t *testing.T) {
	m := NewSessionManager()
	quiz, prompts, verifier := quizFixture(1)
	token := m.Create(7, NewQuizSession(quiz, prompts, verifier, &recordingSaver{}))

	m.Remove(token)
	err := m.With(token, 7, func(*QuizSession) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}
