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

type CoursesController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Catalog *services.CatalogService
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Catalog: services.NewCatalogService(db)}
}

// GetCourses returns the full course catalog as denormalized trees annotated
// with the caller's progress. Anonymous callers get the same tree with zero
// progress.
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	userID := utils.CurrentUserID(c, cc.Cfg)

	views, err := cc.Catalog.CourseViews(userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not load courses")
	}

	return utils.Success(c, fiber.StatusOK, views)
}

func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	userID := utils.CurrentUserID(c, cc.Cfg)

	view, err := cc.Catalog.CourseView(uint(courseID), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not load course")
	}

	return utils.Success(c, fiber.StatusOK, view)
}

// GetLesson returns a single lesson with its course context and quiz-presence
// marker. Question content is never included here.
func (cc *CoursesController) GetLesson(c *fiber.Ctx) error {
	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	userID := utils.CurrentUserID(c, cc.Cfg)

	detail, err := cc.Catalog.LessonDetail(uint(lessonID), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not load lesson")
	}

	return utils.Success(c, fiber.StatusOK, detail)
}

type CourseInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Difficulty  string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Category    string `json:"category"`
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var input CourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	course := models.Course{
		Title:       input.Title,
		Description: input.Description,
		Thumbnail:   input.Thumbnail,
		Difficulty:  input.Difficulty,
		Category:    input.Category,
	}
	if course.Difficulty == "" {
		course.Difficulty = "beginner"
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return utils.Created(c, course)
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input CourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	course.Title = input.Title
	course.Description = input.Description
	if input.Thumbnail != "" {
		course.Thumbnail = input.Thumbnail
	}
	if input.Difficulty != "" {
		course.Difficulty = input.Difficulty
	}
	if input.Category != "" {
		course.Category = input.Category
	}

	if err := cc.DB.Save(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return utils.Success(c, fiber.StatusOK, course)
}

// DeleteCourse removes a course; modules, lessons, quizzes and questions go
// with it through the FK cascade.
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	res := cc.DB.Unscoped().Delete(&models.Course{}, courseID)
	if res.Error != nil {
		return utils.InternalServerError(c, "Could not delete course")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Course not found")
	}

	return utils.NoContent(c)
}

type ModuleInput struct {
	Title      string `json:"title" validate:"required"`
	OrderIndex *int   `json:"order_index" validate:"omitempty,gte=0"`
}

func (cc *CoursesController) CreateModule(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input ModuleInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	module := models.Module{
		CourseID: course.ID,
		Title:    input.Title,
	}
	if input.OrderIndex != nil {
		module.OrderIndex = *input.OrderIndex
	} else {
		var count int64
		cc.DB.Model(&models.Module{}).Where("course_id = ?", course.ID).Count(&count)
		module.OrderIndex = int(count)
	}

	if err := cc.DB.Create(&module).Error; err != nil {
		return utils.InternalServerError(c, "Could not create module")
	}

	return utils.Created(c, module)
}

func (cc *CoursesController) UpdateModule(c *fiber.Ctx) error {
	moduleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid module ID")
	}

	var input ModuleInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var module models.Module
	if err := cc.DB.First(&module, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Module not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	module.Title = input.Title
	if input.OrderIndex != nil {
		module.OrderIndex = *input.OrderIndex
	}

	if err := cc.DB.Save(&module).Error; err != nil {
		return utils.InternalServerError(c, "Could not update module")
	}

	return utils.Success(c, fiber.StatusOK, module)
}

func (cc *CoursesController) DeleteModule(c *fiber.Ctx) error {
	moduleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid module ID")
	}

	res := cc.DB.Unscoped().Delete(&models.Module{}, moduleID)
	if res.Error != nil {
		return utils.InternalServerError(c, "Could not delete module")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Module not found")
	}

	return utils.NoContent(c)
}

type LessonInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url" validate:"omitempty,url"`
	Duration    string `json:"duration"`
	OrderIndex  *int   `json:"order_index" validate:"omitempty,gte=0"`
}

func (cc *CoursesController) CreateLesson(c *fiber.Ctx) error {
	moduleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid module ID")
	}

	var input LessonInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var module models.Module
	if err := cc.DB.First(&module, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Module not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	lesson := models.Lesson{
		ModuleID:    module.ID,
		Title:       input.Title,
		Description: input.Description,
		VideoURL:    input.VideoURL,
		Duration:    input.Duration,
	}
	if input.OrderIndex != nil {
		lesson.OrderIndex = *input.OrderIndex
	} else {
		var count int64
		cc.DB.Model(&models.Lesson{}).Where("module_id = ?", module.ID).Count(&count)
		lesson.OrderIndex = int(count)
	}

	if err := cc.DB.Create(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not create lesson")
	}

	return utils.Created(c, lesson)
}

func (cc *CoursesController) UpdateLesson(c *fiber.Ctx) error {
	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var input LessonInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var lesson models.Lesson
	if err := cc.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	lesson.Title = input.Title
	lesson.Description = input.Description
	if input.VideoURL != "" {
		lesson.VideoURL = input.VideoURL
	}
	if input.Duration != "" {
		lesson.Duration = input.Duration
	}
	if input.OrderIndex != nil {
		lesson.OrderIndex = *input.OrderIndex
	}

	if err := cc.DB.Save(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not update lesson")
	}

	return utils.Success(c, fiber.StatusOK, lesson)
}

func (cc *CoursesController) DeleteLesson(c *fiber.Ctx) error {
	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	res := cc.DB.Unscoped().Delete(&models.Lesson{}, lessonID)
	if res.Error != nil {
		return utils.InternalServerError(c, "Could not delete lesson")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Lesson not found")
	}

	return utils.NoContent(c)
}
