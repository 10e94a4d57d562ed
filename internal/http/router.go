// Package http exposes the operational surface of the pipeline: health,
// metrics, and a manual run trigger. The user-facing CRUD API lives in a
// separate service.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tri-star/chase-light-sub003/internal/metrics"
)

func NewRouter(opsHandler *OpsHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	e.GET("/healthz", opsHandler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	ops := e.Group("/ops")
	ops.POST("/pipeline/run", opsHandler.TriggerRun)

	return e
}
