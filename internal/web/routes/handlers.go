package routes

import (
	"context"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/google/go-github/v68/github"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tracker-hooks/internal/domain"
	"tracker-hooks/internal/web"
)

// maxPayloadSize caps webhook bodies. GitHub stops sending at 25 MB.
const maxPayloadSize = 25 << 20

// EventHandler applies a change event to the tracker.
type EventHandler interface {
	Handle(ctx context.Context, event domain.ChangeEvent) error
}

type WebhookController struct {
	Mapper EventHandler
	// Secret is the webhook secret. Deliveries are not verified when empty.
	Secret     []byte
	Deliveries *DeliveryLog
}

// ReceiveGithubEvent handles one webhook delivery. Anything that passes
// signature validation is answered 204, including ignored events and events
// whose tracker update failed.
func (controller *WebhookController) ReceiveGithubEvent(e echo.Context) error {
	cc := e.(*web.AppContext)
	request := e.Request()
	request.Body = http.MaxBytesReader(e.Response(), request.Body, maxPayloadSize)

	payload, err := github.ValidatePayload(request, controller.Secret)
	if err != nil {
		cc.AppLogger.Warn("rejected webhook delivery",
			zap.String("remoteip", e.RealIP()),
			zap.Error(err),
		)
		return e.NoContent(http.StatusUnauthorized)
	}

	eventType := github.WebHookType(request)
	deliveryID := github.DeliveryID(request)
	logger := cc.RequestLogger().With(zap.String("event", eventType), zap.String("delivery", deliveryID))

	if eventType == "" {
		logger.Warn("webhook delivery without event type")
		return e.NoContent(http.StatusBadRequest)
	}

	if controller.Deliveries != nil && controller.Deliveries.Seen(deliveryID) {
		logger.Info("duplicate delivery, ignoring")
		return e.NoContent(http.StatusNoContent)
	}

	parsed, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		logger.Info("unable to decode webhook payload", zap.Error(err))
		return e.NoContent(http.StatusNoContent)
	}

	event, ok := toChangeEvent(parsed)
	if !ok {
		logger.Debug("event not tracked, ignoring")
		return e.NoContent(http.StatusNoContent)
	}

	logger.Info("handling event", zap.String("kind", string(event.Kind)))
	if err := controller.Mapper.Handle(request.Context(), event); err != nil {
		logger.Error("failed to update tracker", zap.String("kind", string(event.Kind)), zap.Error(err))
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("github_event", eventType)
			scope.SetTag("kind", string(event.Kind))
			scope.SetExtra("delivery", deliveryID)
			sentry.CaptureException(err)
		})
		// A failed delivery can be retried from the GitHub UI.
		if controller.Deliveries != nil && !domain.IsNotFound(err) {
			controller.Deliveries.Forget(deliveryID)
		}
	}

	return e.NoContent(http.StatusNoContent)
}

func Health(e echo.Context) error {
	return e.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
