package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/jobs"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/messages"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/reviews"
	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/services/users"
)

// Deps is everything the HTTP layer is built from.
type Deps struct {
	JWTSecret     string
	CORSOrigins   string
	SecureCookies bool
	Log           *zap.Logger

	Users    *users.Directory
	Jobs     *jobs.Registry
	Messages *messages.Store
	Reviews  *reviews.Store
	Hub      *realtime.Hub
}

// NewApp builds the fiber application with every route mounted.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "gigmarket",
		ErrorHandler: middleware.ErrorHandler(d.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(d.Log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})

	auth := []fiber.Handler{middleware.JWT(d.JWTSecret), middleware.ResolveCaller(d.Users)}

	api := app.Group("/api", auth...)
	NewSessionHandler(d.Users, d.SecureCookies).Routes(api)
	NewUserHandler(d.Users).Routes(api)
	NewJobHandler(d.Jobs).Routes(api)
	chatH := NewChatHandler(d.Messages, d.Hub, d.Log)
	chatH.Routes(api)
	NewReviewHandler(d.Reviews).Routes(api)

	ws := append(auth, chatH.Upgrade, websocket.New(chatH.WebSocket))
	app.Get("/ws/chat", ws...)

	return app
}
