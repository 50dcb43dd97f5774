package controllers

import (
	"errors"
	"strconv"

	"github.com/GabrielGB-web/academiadetreinamento/backend/config"
	"github.com/GabrielGB-web/academiadetreinamento/backend/models"
	"github.com/GabrielGB-web/academiadetreinamento/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MaterialsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewMaterialsController(db *gorm.DB, cfg *config.Config) *MaterialsController {
	return &MaterialsController{DB: db, Cfg: cfg}
}

// GetMaterials lists support materials, optionally filtered by category and a
// title/description search.
func (mc *MaterialsController) GetMaterials(c *fiber.Ctx) error {
	search := c.Query("search")
	category := c.Query("category")

	query := mc.DB.Model(&models.Material{})
	if search != "" {
		query = query.Where("title ILIKE ? OR description ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var materials []models.Material
	if err := query.Order("created_at DESC").Find(&materials).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, materials)
}

type MaterialInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Type        string `json:"type" validate:"required,oneof=pdf video link document"`
	URL         string `json:"url" validate:"required,url"`
	Category    string `json:"category"`
	CourseID    *uint  `json:"course_id"`
}

func (mc *MaterialsController) CreateMaterial(c *fiber.Ctx) error {
	var input MaterialInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	if input.CourseID != nil {
		var course models.Course
		if err := mc.DB.First(&course, *input.CourseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound(c, "Course not found")
			}
			return utils.InternalServerError(c, "Could not query database")
		}
	}

	material := models.Material{
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		URL:         input.URL,
		Category:    input.Category,
		CourseID:    input.CourseID,
	}

	if err := mc.DB.Create(&material).Error; err != nil {
		return utils.InternalServerError(c, "Could not create material")
	}

	return utils.Created(c, material)
}

func (mc *MaterialsController) UpdateMaterial(c *fiber.Ctx) error {
	materialID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid material ID")
	}

	var input MaterialInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var material models.Material
	if err := mc.DB.First(&material, materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Material not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	material.Title = input.Title
	material.Description = input.Description
	material.Type = input.Type
	material.URL = input.URL
	material.Category = input.Category
	material.CourseID = input.CourseID

	if err := mc.DB.Save(&material).Error; err != nil {
		return utils.InternalServerError(c, "Could not update material")
	}

	return utils.Success(c, fiber.StatusOK, material)
}

func (mc *MaterialsController) DeleteMaterial(c *fiber.Ctx) error {
	materialID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid material ID")
	}

	res := mc.DB.Unscoped().Delete(&models.Material{}, materialID)
	if res.Error != nil {
		return utils.InternalServerError(c, "Could not delete material")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Material not found")
	}

	return utils.NoContent(c)
}
