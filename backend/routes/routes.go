package routes

import (
	"github.com/GabrielGB-web/academiadetreinamento/backend/config"
	"github.com/GabrielGB-web/academiadetreinamento/backend/controllers"
	"github.com/GabrielGB-web/academiadetreinamento/backend/middleware"
	"github.com/GabrielGB-web/academiadetreinamento/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// Catalog routes: readable anonymously, progress annotations appear once
	// a token is supplied
	coursesController := controllers.NewCoursesController(db, cfg)
	app.Get("/api/courses", coursesController.GetCourses)
	app.Get("/api/courses/:id", coursesController.GetCourseDetails)
	app.Get("/api/lessons/:id", coursesController.GetLesson)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)
	app.Post("/api/lessons/:id/complete", authMiddleware, progressController.CompleteLesson)

	// Quiz-taking routes: one shared in-memory session registry
	sessions := services.NewSessionManager()
	quizzesController := controllers.NewQuizzesController(db, cfg, sessions)
	app.Post("/api/lessons/:id/quiz/start", authMiddleware, quizzesController.StartQuiz)
	quiz := app.Group("/api/quiz/sessions", authMiddleware)
	quiz.Get("/:token", quizzesController.GetSession)
	quiz.Post("/:token/select", quizzesController.SelectAnswer)
	quiz.Post("/:token/confirm", quizzesController.ConfirmAnswer)
	quiz.Post("/:token/next", quizzesController.NextQuestion)
	quiz.Post("/:token/retry", quizzesController.RetryQuiz)

	// Profile and ranking
	usersController := controllers.NewUsersController(db, cfg)
	app.Get("/api/profile", authMiddleware, usersController.GetProfile)
	app.Get("/api/ranking", authMiddleware, usersController.GetRanking)

	// Materials
	materialsController := controllers.NewMaterialsController(db, cfg)
	app.Get("/api/materials", authMiddleware, materialsController.GetMaterials)

	// Admin console: content curation and privileged user management
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)

	admin.Get("/users", usersController.ListUsers)
	admin.Post("/users", usersController.CreateUser)

	admin.Post("/courses", coursesController.CreateCourse)
	admin.Put("/courses/:id", coursesController.UpdateCourse)
	admin.Delete("/courses/:id", coursesController.DeleteCourse)
	admin.Post("/courses/:id/modules", coursesController.CreateModule)
	admin.Put("/modules/:id", coursesController.UpdateModule)
	admin.Delete("/modules/:id", coursesController.DeleteModule)
	admin.Post("/modules/:id/lessons", coursesController.CreateLesson)
	admin.Put("/lessons/:id", coursesController.UpdateLesson)
	admin.Delete("/lessons/:id", coursesController.DeleteLesson)

	admin.Get("/quizzes", quizzesController.ListQuizzes)
	admin.Post("/quizzes", quizzesController.CreateQuiz)
	admin.Put("/quizzes/:id", quizzesController.UpdateQuiz)
	admin.Delete("/quizzes/:id", quizzesController.DeleteQuiz)
	admin.Post("/quizzes/:id/questions", quizzesController.AddQuestion)
	admin.Put("/questions/:id", quizzesController.UpdateQuestion)
	admin.Delete("/questions/:id", quizzesController.DeleteQuestion)

	admin.Post("/materials", materialsController.CreateMaterial)
	admin.Put("/materials/:id", materialsController.UpdateMaterial)
	admin.Delete("/materials/:id", materialsController.DeleteMaterial)
}
