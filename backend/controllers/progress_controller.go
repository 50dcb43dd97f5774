package controllers

import (
	"errors"
	"strconv"

	"github.com/GabrielGB-web/academiadetreinamento/backend/config"
	"github.com/GabrielGB-web/academiadetreinamento/backend/models"
	"github.com/GabrielGB-web/academiadetreinamento/backend/services"
	"github.com/GabrielGB-web/academiadetreinamento/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Store services.ProgressStore
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Store: services.NewGormProgressStore(db)}
}

// GetProgress returns all of the caller's lesson progress records.
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	tracker := services.NewTracker(pc.Store, userID)
	if err := tracker.Load(c.UserContext()); err != nil {
		return utils.InternalServerError(c, "Could not load progress")
	}

	return utils.Success(c, fiber.StatusOK, tracker.Records())
}

// CompleteLesson marks a lesson finished for the caller. Calling it again
// just refreshes the completion timestamp; there is never more than one
// record per (user, lesson).
func (pc *ProgressController) CompleteLesson(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := pc.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	tracker := services.NewTracker(pc.Store, userID)
	if err := tracker.MarkCompleted(c.UserContext(), lesson.ID); err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			return utils.Unauthorized(c, "Unauthorized")
		}
		return utils.Error(c, fiber.StatusServiceUnavailable,
			fiber.NewError(fiber.StatusServiceUnavailable, "Could not save progress, please try again"))
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"lesson_id": lesson.ID,
		"completed": true,
	})
}
