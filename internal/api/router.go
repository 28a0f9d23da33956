package api

import (
	"contaflow/docs"
	"contaflow/internal/api/handlers"
	"contaflow/pkg/auth"
	"contaflow/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	docHandler *handlers.DocumentHandler,
	accountHandler *handlers.AccountHandler,
	expenseHandler *handlers.ExpenseHandler,
	connectionHandler *handlers.ConnectionHandler,
	jwtManager *auth.JWTManager,
	uploadDir string,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024,
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

	_ = docs.SwaggerInfo // ensure docs package is imported and init() is called
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Static("/uploads", uploadDir)

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	documents := protected.Group("/documents")
	documents.Post("/upload", docHandler.UploadDocument)
	documents.Get("", docHandler.ListDocuments)
	documents.Post("/:id/process", docHandler.ProcessDocument)

	accounts := protected.Group("/accounts")
	accounts.Post("", accountHandler.CreateAccount)
	accounts.Get("", accountHandler.ListAccounts)
	accounts.Delete("/:id", accountHandler.DeleteAccount)

	protected.Get("/expenses", expenseHandler.ListExpenses)
	protected.Get("/timeline", expenseHandler.ListTimeline)

	protected.Get("/connection/status", connectionHandler.Status)

	settings := protected.Group("/settings")
	settings.Get("/:key", connectionHandler.GetSetting)
	settings.Put("/:key", connectionHandler.SetSetting)
	settings.Delete("/:key", connectionHandler.RemoveSetting)

	protected.Get("/activity", connectionHandler.ListActivity)

	return app
}
