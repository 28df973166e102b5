package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kurdotex/order-intake/internal/models"
	"github.com/kurdotex/order-intake/internal/repo"
	"github.com/kurdotex/order-intake/internal/stripesig"
)

type IngestStatus string

const (
	IngestRecorded         IngestStatus = "recorded"
	IngestIgnored          IngestStatus = "ignored"
	IngestInvalidSignature IngestStatus = "invalid_signature"
	IngestInvalidPayload   IngestStatus = "invalid_payload"
)

type IngestResult struct {
	Status IngestStatus
	Event  *models.WebhookEvent

	// Duplicate marks an already-processed delivery; the stored row is
	// returned in Event and nothing new was written.
	Duplicate bool
}

const eventInvoicePaymentSucceeded = "invoice.payment_succeeded"

// providerEvent is the provider's wire envelope. Amounts arrive in minor
// currency units (cents).
type providerEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object struct {
			AmountPaid int64 `json:"amount_paid"`
		} `json:"object"`
	} `json:"data"`
}

// WebhookService records provider payment events exactly once. Secret and
// Tolerance are injected at construction; nothing is read from the
// environment at ingest time.
type WebhookService struct {
	Repo      *repo.GormRepo
	Secret    string
	Tolerance time.Duration

	// Now is overridable in tests. Nil means time.Now.
	Now func() time.Time
}

// Ingest authenticates, classifies and records one delivery. A non-nil error
// means a transient persistence failure the provider should retry; every
// client-side outcome is expressed through IngestResult.Status instead.
func (s *WebhookService) Ingest(ctx context.Context, payload []byte, sigHeader string) (IngestResult, error) {
	tolerance := s.Tolerance
	if tolerance <= 0 {
		tolerance = stripesig.DefaultTolerance
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	if err := stripesig.Verify(payload, sigHeader, s.Secret, tolerance, now); err != nil {
		return IngestResult{Status: IngestInvalidSignature}, nil
	}

	var ev providerEvent
	if err := json.Unmarshal(payload, &ev); err != nil || ev.ID == "" || ev.Type == "" || ev.Created <= 0 {
		return IngestResult{Status: IngestInvalidPayload}, nil
	}

	if ev.Type != eventInvoicePaymentSucceeded {
		return IngestResult{Status: IngestIgnored}, nil
	}

	record := &models.WebhookEvent{
		ExternalEventID: ev.ID,
		AmountPaid:      decimal.NewFromInt(ev.Data.Object.AmountPaid).Shift(-2),
		EventDate:       time.Unix(ev.Created, 0).UTC(),
	}

	stored, duplicate, err := s.Repo.CreateWebhookEvent(ctx, record)
	if err != nil {
		return IngestResult{}, err
	}

	return IngestResult{Status: IngestRecorded, Event: stored, Duplicate: duplicate}, nil
}
