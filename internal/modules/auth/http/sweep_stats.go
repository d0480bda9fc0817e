package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
)

func SweepStatsHandler(sweeper *service.Sweeper) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats := sweeper.Stats()
		resp := fiber.Map{
			"ejecutandose":    stats.Running,
			"total_limpiados": stats.TotalCleaned,
			"ultimo_conteo":   stats.LastCount,
		}
		if !stats.LastRun.IsZero() {
			resp["ultima_ejecucion"] = stats.LastRun.UTC().Format(time.RFC3339)
			resp["duracion_ms"] = stats.LastDuration.Milliseconds()
		}
		return c.JSON(resp)
	}
}
