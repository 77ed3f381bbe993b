package api

import (
	"aula-rag/docs"
	"aula-rag/internal/api/handlers"
	"aula-rag/pkg/auth"
	"aula-rag/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Subject *handlers.SubjectHandler
	File    *handlers.FileHandler
	Chat    *handlers.ChatHandler
	Exam    *handlers.ExamHandler
	Webhook *handlers.WebhookHandler
}

func SetupRouter(h Handlers, jwtManager *auth.JWTManager, uploadsDir string, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Swagger - importing docs registers the spec through init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded materials are served statically
	app.Static("/uploads", uploadsDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Public routes
	authGroup := app.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.RefreshToken)

	app.Post("/webhooks/clerk", h.Webhook.HandleClerk)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))
	teacherOnly := middleware.RequireRole("teacher", "admin")

	subjects := protected.Group("/subjects")
	subjects.Post("", teacherOnly, h.Subject.CreateSubject)
	subjects.Get("", h.Subject.ListSubjects)
	subjects.Get("/:id", h.Subject.GetSubject)
	subjects.Delete("/:id", teacherOnly, h.Subject.DeleteSubject)
	subjects.Post("/:id/topics", teacherOnly, h.Subject.CreateTopic)
	subjects.Get("/:id/topics", h.Subject.ListTopics)
	subjects.Get("/:id/files", h.File.ListSubjectFiles)
	subjects.Post("/:id/enrollments", teacherOnly, h.Subject.EnrollStudent)
	subjects.Get("/:id/enrollments", teacherOnly, h.Subject.ListEnrollments)
	subjects.Delete("/:id/enrollments/:userId", teacherOnly, h.Subject.Unenroll)

	topics := protected.Group("/topics")
	topics.Delete("/:id", teacherOnly, h.Subject.DeleteTopic)
	topics.Post("/:id/files", teacherOnly, h.File.UploadFile)
	topics.Get("/:id/files", h.File.ListTopicFiles)
	topics.Post("/:id/reindex", teacherOnly, h.File.ReindexTopic)
	topics.Post("/:id/chat", h.Chat.Chat)
	topics.Post("/:id/exams", h.Exam.GenerateExam)
	topics.Get("/:id/results", teacherOnly, h.Exam.GetTopicResults)

	exams := protected.Group("/exams")
	exams.Get("/history", h.Exam.GetExamHistory)
	exams.Post("/:id/submit", h.Exam.SubmitAnswers)

	files := protected.Group("/files")
	files.Delete("/:id", teacherOnly, h.File.DeleteFile)

	return app
}
