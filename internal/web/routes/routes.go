package routes

import (
	"github.com/labstack/echo/v4"
)

func CreateRoutes(e *echo.Echo, webhookController *WebhookController) {
	e.GET("/healthz/", Health)
	e.POST("/webhooks/github/", webhookController.ReceiveGithubEvent)
}
