package api

import (
	"github.com/datallboy/rangefetch/internal/api/controllers"
	"github.com/datallboy/rangefetch/internal/app"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

// NewRouter builds the fixture server's echo instance.
func NewRouter(app *app.Context, blob *controllers.BlobController) *echo.Echo {
	e := echo.New()
	RegisterRoutes(e, app, blob)
	return e
}

func RegisterRoutes(e *echo.Echo, app *app.Context, blob *controllers.BlobController) {

	// Middleware: Request Logger
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c *echo.Context, v middleware.RequestLoggerValues) error {
			app.Logger.Info("%s %s | %s | %d | %s", v.Method, v.URI, c.Request().Header.Get("Range"), v.Status, v.Latency)
			return nil
		},
	}))

	// The same file under both paths
	e.GET("/", blob.Handle)
	e.GET("/:name", blob.Handle)
}
