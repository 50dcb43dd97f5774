package controllers

import (
	"github.com/GabrielGB-web/academiadetreinamento/backend/config"
	"github.com/GabrielGB-web/academiadetreinamento/backend/models"
	"github.com/GabrielGB-web/academiadetreinamento/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UsersController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUsersController(db *gorm.DB, cfg *config.Config) *UsersController {
	return &UsersController{DB: db, Cfg: cfg}
}

func (uc *UsersController) GetProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	// Competition rank: one plus the number of users holding more points.
	var above int64
	uc.DB.Model(&models.User{}).Where("points > ?", user.Points).Count(&above)

	var lessonsCompleted int64
	uc.DB.Model(&models.LessonProgress{}).
		Where("user_id = ? AND completed = true", userID).
		Count(&lessonsCompleted)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":                user.ID,
		"name":              user.Name,
		"email":             user.Email,
		"avatar":            user.Avatar,
		"role":              user.Role,
		"points":            user.Points,
		"rank":              int(above) + 1,
		"lessons_completed": lessonsCompleted,
		"created_at":        user.CreatedAt,
	})
}

// GetRanking returns every user ordered by points, ties sharing a rank.
func (uc *UsersController) GetRanking(c *fiber.Ctx) error {
	var users []models.User
	if err := uc.DB.Order("points DESC, name ASC").Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	ranking := make([]models.RankedUser, 0, len(users))
	rank := 0
	prevPoints := -1
	for i, user := range users {
		if user.Points != prevPoints {
			rank = i + 1
			prevPoints = user.Points
		}
		ranking = append(ranking, models.RankedUser{
			ID:     user.ID,
			Name:   user.Name,
			Avatar: user.Avatar,
			Points: user.Points,
			Rank:   rank,
		})
	}

	return utils.Success(c, fiber.StatusOK, ranking)
}

func (uc *UsersController) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := uc.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(users))
	for _, user := range users {
		result = append(result, fiber.Map{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"role":       user.Role,
			"points":     user.Points,
			"created_at": user.CreatedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

type CreateUserInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// CreateUser is the privileged admin path for provisioning accounts with an
// explicit role.
func (uc *UsersController) CreateUser(c *fiber.Ctx) error {
	var input CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	role := input.Role
	if role == "" {
		role = "user"
	}

	user := models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	if err := uc.DB.Create(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not create user")
	}

	return utils.Created(c, fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}
