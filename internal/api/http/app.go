package httpapi

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// AppName identifies the server in responses and logs.
const AppName = "nimbus"

// NewApp builds the fiber app with the shared error handler and middleware.
// Access logs go to accessLog; nil disables them.
func NewApp(accessLog io.Writer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               AppName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	if accessLog != nil {
		app.Use(logger.New(logger.Config{Output: accessLog}))
	}
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": AppName,
		})
	})

	return app
}
