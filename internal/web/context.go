package web

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AppContext struct {
	echo.Context
	AppLogger *zap.Logger
}

// RequestLogger returns the application logger tagged with the request id
// set by the RequestID middleware.
func (c *AppContext) RequestLogger() *zap.Logger {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return c.AppLogger.With(zap.String("requestid", id))
	}
	return c.AppLogger
}

func CreateAppContext(
	logger *zap.Logger,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, logger}
			return next(cc)
		}
	}
}
