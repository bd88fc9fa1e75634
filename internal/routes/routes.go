package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sakin08/New-web-sub002/internal/auth"
	"github.com/Sakin08/New-web-sub002/internal/handler"
	wsserver "github.com/Sakin08/New-web-sub002/internal/ws"
)

func Register(app *fiber.App, h *handler.Handler, wsSrv *wsserver.Server, jv *auth.Validator) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(wsSrv.Handle()))

	api := app.Group("/api/v1/notifications", handler.RequireAuth(jv))
	api.Get("/", h.List)
	api.Get("/unread-count", h.UnreadCount)
	api.Patch("/read-all", h.MarkAllRead)
	api.Patch("/:id/read", h.MarkRead)
	api.Delete("/:id", h.Delete)
	api.Delete("/", h.DeleteAll)
}
