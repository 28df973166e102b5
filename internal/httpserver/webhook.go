package httpserver

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kurdotex/order-intake/internal/logging"
	"github.com/kurdotex/order-intake/internal/mykafka"
	"github.com/kurdotex/order-intake/internal/service"
	"github.com/kurdotex/order-intake/internal/transport"
)

const stripeSignatureHeader = "Stripe-Signature"

type WebhookHTTP struct {
	Svc      *service.WebhookService
	Producer *mykafka.Producer
}

// Handle ingests one provider delivery. Only transient persistence failures
// answer 5xx; everything else is a final (non-retry) outcome for the
// provider, including duplicates and unrecognized event types.
func (h *WebhookHTTP) Handle(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webhook.stripe")

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		l.Warn("webhook_error", "status", 400, "reason", "unreadable body", "error", err)
		return transport.Error(c, http.StatusBadRequest, "Invalid payload", map[string]string{"status": "error"})
	}

	res, err := h.Svc.Ingest(ctx, payload, c.Request().Header.Get(stripeSignatureHeader))
	if err != nil {
		l.Error("webhook_error", "status", 500, "payload_bytes", len(payload), "error", err)
		return transport.Error(c, http.StatusInternalServerError, "Error interno al procesar el evento", map[string]string{"status": "error"})
	}

	switch res.Status {
	case service.IngestInvalidSignature:
		l.Warn("webhook_error", "status", 400, "reason", "invalid signature")
		return transport.Error(c, http.StatusBadRequest, "Invalid signature", map[string]string{"status": "error"})

	case service.IngestInvalidPayload:
		l.Warn("webhook_error", "status", 400, "reason", "invalid payload", "payload_bytes", len(payload))
		return transport.Error(c, http.StatusBadRequest, "Invalid payload", map[string]string{"status": "error"})

	case service.IngestIgnored:
		l.Info("webhook_ignored")
		return transport.Success(c, http.StatusOK, "Ignored", map[string]string{"status": "ignored"})

	default:
		if res.Duplicate {
			l.Info("webhook_duplicate", "external_event_id", res.Event.ExternalEventID)
		} else {
			l.Info("webhook_recorded", "external_event_id", res.Event.ExternalEventID)
			h.publish(c, map[string]any{
				"type":              "payment_recorded",
				"event_id":          uuid.NewString(),
				"external_event_id": res.Event.ExternalEventID,
				"amount_paid":       res.Event.AmountPaid,
			})
		}
		return transport.Success(c, http.StatusOK, "Event successfully registered!", map[string]string{"status": "success"})
	}
}

func (h *WebhookHTTP) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "billing_events", event["external_event_id"].(string), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
