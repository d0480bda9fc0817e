package http

import (
	"github.com/gofiber/fiber/v2"
)

type Options struct {
	AppName string
}

func NewServer(opts Options, modules ...Module) *fiber.App {
	app := fiber.New(fiber.Config{AppName: opts.AppName})

	for _, m := range modules {
		m.Register(app)
	}

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })
	app.Get("/ping", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"mensaje": "pong"}) })
	return app
}
