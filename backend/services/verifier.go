package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/GabrielGB-web/academiadetreinamento/backend/models"

	"gorm.io/gorm"
)

// QuestionPrompt is a question as shown to a quiz taker. It never carries the
// correct-option index; that is only revealed by the verifier, one question
// at a time, after a guess is committed.
type QuestionPrompt struct {
	ID          uint     `json:"id"`
	Text        string   `json:"text"`
	Options     []string `json:"options"`
	Explanation string   `json:"explanation,omitempty"`
	OrderIndex  int      `json:"order_index"`
}

// VerifyResult is the verifier's answer to a single committed guess.
type VerifyResult struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectOption int    `json:"correct_option"`
	Explanation   string `json:"explanation,omitempty"`
}

// AnswerVerifier checks one selection against the server-held answer key.
type AnswerVerifier interface {
	Verify(ctx context.Context, questionID uint, selectedOption int) (VerifyResult, error)
}

// GormAnswerVerifier resolves the answer key from the questions table.
type GormAnswerVerifier struct {
	DB *gorm.DB
}

func NewGormAnswerVerifier(db *gorm.DB) *GormAnswerVerifier {
	return &GormAnswerVerifier{DB: db}
}

func (v *GormAnswerVerifier) Verify(ctx context.Context, questionID uint, selectedOption int) (VerifyResult, error) {
	var question models.Question
	err := v.DB.WithContext(ctx).
		Select("correct_option", "explanation").
		First(&question, questionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VerifyResult{}, ErrNotFound
		}
		return VerifyResult{}, &TransientError{Err: err}
	}

	return VerifyResult{
		IsCorrect:     selectedOption == question.CorrectOption,
		CorrectOption: question.CorrectOption,
		Explanation:   question.Explanation,
	}, nil
}

// LoadQuizForLesson fetches the quiz attached to a lesson together with its
// prompts in order-index order. Prompts are built from an explicit column
// list, so the answer key never leaves this package in bulk.
func LoadQuizForLesson(db *gorm.DB, lessonID uint) (*QuizInfo, []QuestionPrompt, error) {
	var quiz models.Quiz
	if err := db.Where("lesson_id = ?", lessonID).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, &TransientError{Err: err}
	}

	var questions []models.Question
	err := db.Select("id", "text", "options", "explanation", "order_index").
		Where("quiz_id = ?", quiz.ID).
		Order("order_index ASC").
		Find(&questions).Error
	if err != nil {
		return nil, nil, &TransientError{Err: err}
	}

	prompts := make([]QuestionPrompt, 0, len(questions))
	for _, q := range questions {
		var options []string
		if len(q.Options) > 0 {
			if err := json.Unmarshal(q.Options, &options); err != nil {
				options = nil
			}
		}
		prompts = append(prompts, QuestionPrompt{
			ID:          q.ID,
			Text:        q.Text,
			Options:     options,
			Explanation: q.Explanation,
			OrderIndex:  q.OrderIndex,
		})
	}

	info := &QuizInfo{
		ID:           quiz.ID,
		LessonID:     quiz.LessonID,
		Title:        quiz.Title,
		PassingScore: quiz.PassingScore,
		PointsReward: quiz.PointsReward,
	}
	return info, prompts, nil
}
