package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter builds the echo instance with every route registered. gatherer
// backs /metrics.
func NewRouter(server *Server, gatherer prometheus.Gatherer, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := e.Group("/api/v1", ActorMiddleware())

	api.POST("/orders", server.CreateOrder)
	api.POST("/orders/:id/transitions", server.TransitionOrder)
	api.GET("/orders/:id/history", server.GetOrderHistory)

	api.GET("/transfers", server.GetPendingTransfers)
	api.POST("/transfers", server.CreateTransfer)
	api.POST("/transfers/:id/confirm", server.ConfirmTransfer)
	api.POST("/transfers/:id/complete", server.CompleteTransfer)
	api.POST("/transfers/:id/cancel", server.CancelTransfer)

	api.GET("/stock", server.GetStockLevels)
	api.GET("/stock/movements", server.GetStockMovements)
	api.GET("/stock/reconciliation", server.GetReconciliation)
	api.POST("/stock/receipts", server.ReceiveStock)

	api.PUT("/settings/:key", server.UpdateSetting)

	return e
}

// errorHandler renders errors returned by handlers as errorResponse. Echo
// HTTP errors keep their status; anything else is logged and hidden.
func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal error"
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		} else {
			log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("request failed")
		}

		if writeErr := c.JSON(status, errorResponse{Code: status, Message: message}); writeErr != nil {
			log.Error().Err(writeErr).Msg("writing error response")
		}
	}
}
