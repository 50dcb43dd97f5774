package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/GabrielGB-web/academiadetreinamento/backend/config"
	"github.com/GabrielGB-web/academiadetreinamento/backend/models"
	"github.com/GabrielGB-web/academiadetreinamento/backend/services"
	"github.com/GabrielGB-web/academiadetreinamento/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// verifyTimeout bounds the answer-verification and score-persistence calls;
// past it the call counts as a transient failure and the session reverts.
const verifyTimeout = 15 * time.Second

type QuizzesController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Sessions *services.SessionManager
}

func NewQuizzesController(db *gorm.DB, cfg *config.Config, sessions *services.SessionManager) *QuizzesController {
	return &QuizzesController{DB: db, Cfg: cfg, Sessions: sessions}
}

// StartQuiz opens a quiz session for the lesson's quiz and returns its token
// together with the question prompts. Prompts never include the answer key.
func (qc *QuizzesController) StartQuiz(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	info, prompts, err := services.LoadQuizForLesson(qc.DB, uint(lessonID))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFound(c, "Lesson has no quiz")
		}
		return utils.InternalServerError(c, "Could not load quiz")
	}

	tracker := services.NewTracker(services.NewGormProgressStore(qc.DB), userID)
	session := services.NewQuizSession(*info, prompts, services.NewGormAnswerVerifier(qc.DB), tracker)
	if err := session.Start(); err != nil {
		return utils.InternalServerError(c, "Could not start quiz")
	}

	token := qc.Sessions.Create(userID, session)
	return utils.Success(c, fiber.StatusOK, sessionView(token, session))
}

func (qc *QuizzesController) GetSession(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	token := c.Params("token")
	var view fiber.Map
	err = qc.Sessions.With(token, userID, func(qs *services.QuizSession) error {
		view = sessionView(token, qs)
		return nil
	})
	if err != nil {
		return utils.NotFound(c, "Quiz session not found")
	}

	return utils.Success(c, fiber.StatusOK, view)
}

// SelectAnswer sets the pending option for the current question. Re-selecting
// before confirming just replaces the previous choice.
func (qc *QuizzesController) SelectAnswer(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Option int `json:"option"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	token := c.Params("token")
	var view fiber.Map
	err = qc.Sessions.With(token, userID, func(qs *services.QuizSession) error {
		if err := qs.Select(input.Option); err != nil {
			return err
		}
		view = sessionView(token, qs)
		return nil
	})
	if err != nil {
		return qc.sessionError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, view)
}

// ConfirmAnswer commits the pending selection and verifies it against the
// server-held answer key. On a backend failure the session stays on the same
// question with the selection preserved and the caller may confirm again.
func (qc *QuizzesController) ConfirmAnswer(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), verifyTimeout)
	defer cancel()

	token := c.Params("token")
	var view fiber.Map
	err = qc.Sessions.With(token, userID, func(qs *services.QuizSession) error {
		if _, err := qs.Confirm(ctx); err != nil {
			return err
		}
		view = sessionView(token, qs)
		return nil
	})
	if err != nil {
		return qc.sessionError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, view)
}

// NextQuestion advances the session. After the last answered question it
// completes the quiz: the score is persisted pass or fail, and on a pass the
// reward points are credited to the user.
func (qc *QuizzesController) NextQuestion(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), verifyTimeout)
	defer cancel()

	token := c.Params("token")
	var (
		view   fiber.Map
		result *services.QuizResult
	)
	err = qc.Sessions.With(token, userID, func(qs *services.QuizSession) error {
		if err := qs.Next(ctx); err != nil {
			return err
		}
		if qs.State() == services.StateCompleted {
			result = qs.Result()
		}
		view = sessionView(token, qs)
		return nil
	})
	if err != nil {
		return qc.sessionError(c, err)
	}

	// The Completed transition happens once per attempt, so the award cannot
	// double-fire.
	if result != nil && result.PointsEarned > 0 {
		err := qc.DB.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("points", gorm.Expr("points + ?", result.PointsEarned)).Error
		if err != nil {
			return utils.InternalServerError(c, "Could not credit points")
		}
	}

	return utils.Success(c, fiber.StatusOK, view)
}

// RetryQuiz resets a failed attempt and immediately starts a fresh one.
// Passing attempts are not retryable.
func (qc *QuizzesController) RetryQuiz(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	token := c.Params("token")
	var view fiber.Map
	err = qc.Sessions.With(token, userID, func(qs *services.QuizSession) error {
		if err := qs.Retry(); err != nil {
			return err
		}
		if err := qs.Start(); err != nil {
			return err
		}
		view = sessionView(token, qs)
		return nil
	})
	if err != nil {
		return qc.sessionError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, view)
}

func (qc *QuizzesController) sessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, "Not found")
	case errors.Is(err, services.ErrNoSelection), errors.Is(err, services.ErrInvalidOption):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrRetryNotAllowed):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrBadTransition):
		return utils.Error(c, fiber.StatusConflict, err)
	case services.IsTransient(err):
		return utils.Error(c, fiber.StatusServiceUnavailable,
			fiber.NewError(fiber.StatusServiceUnavailable, "Temporary failure, please try again"))
	default:
		return utils.InternalServerError(c, "Quiz session error")
	}
}

func sessionView(token string, qs *services.QuizSession) fiber.Map {
	view := fiber.Map{
		"token":           token,
		"state":           qs.State().String(),
		"quiz":            qs.Quiz,
		"total_questions": len(qs.Prompts()),
		"current_index":   qs.CurrentIndex(),
		"outcomes":        qs.Outcomes(),
	}
	if prompt := qs.CurrentPrompt(); prompt != nil {
		view["question"] = prompt
	}
	if qs.Selection() >= 0 {
		view["selection"] = qs.Selection()
	}
	if result := qs.Result(); result != nil {
		view["result"] = result
	}
	return view
}

// Admin surface below: quizzes and questions are curated here, the
// quiz-taking endpoints above never expose the answer key.

func (qc *QuizzesController) ListQuizzes(c *fiber.Ctx) error {
	var quizzes []models.Quiz
	if err := qc.DB.Order("created_at DESC").Find(&quizzes).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var questions []models.Question
	if err := qc.DB.Order("order_index ASC").Find(&questions).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(quizzes))
	for _, quiz := range quizzes {
		qviews := []fiber.Map{}
		for _, q := range questions {
			if q.QuizID != quiz.ID {
				continue
			}
			var options []string
			json.Unmarshal(q.Options, &options)
			qviews = append(qviews, fiber.Map{
				"id":             q.ID,
				"text":           q.Text,
				"options":        options,
				"correct_option": q.CorrectOption,
				"explanation":    q.Explanation,
				"order_index":    q.OrderIndex,
			})
		}
		result = append(result, fiber.Map{
			"id":            quiz.ID,
			"lesson_id":     quiz.LessonID,
			"title":         quiz.Title,
			"passing_score": quiz.PassingScore,
			"points_reward": quiz.PointsReward,
			"questions":     qviews,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

type QuizInput struct {
	LessonID     uint   `json:"lesson_id" validate:"required"`
	Title        string `json:"title" validate:"required"`
	PassingScore *int   `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
	PointsReward *int   `json:"points_reward" validate:"omitempty,gte=0"`
}

func (qc *QuizzesController) CreateQuiz(c *fiber.Ctx) error {
	var input QuizInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var lesson models.Lesson
	if err := qc.DB.First(&lesson, input.LessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var existing models.Quiz
	if err := qc.DB.Where("lesson_id = ?", input.LessonID).First(&existing).Error; err == nil {
		return utils.ValidationError(c, map[string]string{"lesson_id": "lesson already has a quiz"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	quiz := models.Quiz{
		LessonID:     input.LessonID,
		Title:        input.Title,
		PassingScore: 70,
		PointsReward: 100,
	}
	if input.PassingScore != nil {
		quiz.PassingScore = *input.PassingScore
	}
	if input.PointsReward != nil {
		quiz.PointsReward = *input.PointsReward
	}

	if err := qc.DB.Create(&quiz).Error; err != nil {
		return utils.InternalServerError(c, "Could not create quiz")
	}

	return utils.Created(c, quiz)
}

func (qc *QuizzesController) UpdateQuiz(c *fiber.Ctx) error {
	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var input struct {
		Title        string `json:"title"`
		PassingScore *int   `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
		PointsReward *int   `json:"points_reward" validate:"omitempty,gte=0"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var quiz models.Quiz
	if err := qc.DB.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.Title != "" {
		quiz.Title = input.Title
	}
	if input.PassingScore != nil {
		quiz.PassingScore = *input.PassingScore
	}
	if input.PointsReward != nil {
		quiz.PointsReward = *input.PointsReward
	}

	if err := qc.DB.Save(&quiz).Error; err != nil {
		return utils.InternalServerError(c, "Could not update quiz")
	}

	return utils.Success(c, fiber.StatusOK, quiz)
}

func (qc *QuizzesController) DeleteQuiz(c *fiber.Ctx) error {
	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	res := qc.DB.Unscoped().Delete(&models.Quiz{}, quizID)
	if res.Error != nil {
		return utils.InternalServerError(c, "Could not delete quiz")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Quiz not found")
	}

	return utils.NoContent(c)
}

type QuestionInput struct {
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,max=4,dive,required"`
	CorrectOption int      `json:"correct_option" validate:"gte=0"`
	Explanation   string   `json:"explanation"`
	OrderIndex    *int     `json:"order_index" validate:"omitempty,gte=0"`
}

func (qc *QuizzesController) AddQuestion(c *fiber.Ctx) error {
	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var input QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}
	if input.CorrectOption >= len(input.Options) {
		return utils.ValidationError(c, map[string]string{"correct_option": "out of range for options"})
	}

	var quiz models.Quiz
	if err := qc.DB.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	optionsJSON, err := json.Marshal(input.Options)
	if err != nil {
		return utils.InternalServerError(c, "Could not encode options")
	}

	question := models.Question{
		QuizID:        quiz.ID,
		Text:          input.Text,
		Options:       datatypes.JSON(optionsJSON),
		CorrectOption: input.CorrectOption,
		Explanation:   input.Explanation,
	}
	if input.OrderIndex != nil {
		question.OrderIndex = *input.OrderIndex
	} else {
		var count int64
		qc.DB.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Count(&count)
		question.OrderIndex = int(count)
	}

	if err := qc.DB.Create(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}

	return utils.Created(c, fiber.Map{
		"id":             question.ID,
		"quiz_id":        question.QuizID,
		"text":           question.Text,
		"options":        input.Options,
		"correct_option": question.CorrectOption,
		"explanation":    question.Explanation,
		"order_index":    question.OrderIndex,
	})
}

func (qc *QuizzesController) UpdateQuestion(c *fiber.Ctx) error {
	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var input QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}
	if input.CorrectOption >= len(input.Options) {
		return utils.ValidationError(c, map[string]string{"correct_option": "out of range for options"})
	}

	var question models.Question
	if err := qc.DB.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	optionsJSON, err := json.Marshal(input.Options)
	if err != nil {
		return utils.InternalServerError(c, "Could not encode options")
	}

	question.Text = input.Text
	question.Options = datatypes.JSON(optionsJSON)
	question.CorrectOption = input.CorrectOption
	question.Explanation = input.Explanation
	if input.OrderIndex != nil {
		question.OrderIndex = *input.OrderIndex
	}

	if err := qc.DB.Save(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not update question")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":             question.ID,
		"quiz_id":        question.QuizID,
		"text":           question.Text,
		"options":        input.Options,
		"correct_option": question.CorrectOption,
		"explanation":    question.Explanation,
		"order_index":    question.OrderIndex,
	})
}

func (qc *QuizzesController) DeleteQuestion(c *fiber.Ctx) error {
	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	res := qc.DB.Unscoped().Delete(&models.Question{}, questionID)
	if res.Error != nil {
		return utils.InternalServerError(c, "Could not delete question")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Question not found")
	}

	return utils.NoContent(c)
}
