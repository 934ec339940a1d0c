// Package event publishes booking side-channel events. Delivery and storage belong to the consumers.
package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"deskhub/config"
	"deskhub/infras/kafka"
	"deskhub/infras/otel"
	"deskhub/internal/domains/booking/model"
	"deskhub/shared/constant"
	"deskhub/shared/timezone"

	"github.com/rs/zerolog/log"
)

type Action string

const (
	ActionCreated       Action = "booking.created"
	ActionRescheduled   Action = "booking.rescheduled"
	ActionCancelled     Action = "booking.cancelled"
	ActionStatusChanged Action = "booking.status_changed"
	ActionPaymentUpdate Action = "booking.payment_updated"
	ActionDeleted       Action = "booking.deleted"
)

// Notification is the minimum a delivery channel needs to tell the booker what happened.
type Notification struct {
	Action       Action    `json:"action"`
	BookingID    string    `json:"booking_id"`
	RoomID       string    `json:"room_id"`
	NewStatus    string    `json:"new_status"`
	ContactEmail string    `json:"contact_email"`
	ContactName  string    `json:"contact_name,omitempty"`
	Date         string    `json:"date"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// State is the audited snapshot of a booking.
type State struct {
	RoomID      string  `json:"room_id"`
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Status      string  `json:"status"`
	Attendees   int     `json:"attendees"`
	TotalAmount float64 `json:"total_amount"`
	PaymentID   *string `json:"payment_id"`
}

type Audit struct {
	ActorID     string    `json:"actor_id"`
	Action      Action    `json:"action"`
	BookingID   string    `json:"booking_id"`
	BeforeState *State    `json:"before_state"`
	AfterState  *State    `json:"after_state"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// StateOf snapshots b, nil when b is nil.
func StateOf(b *model.Booking) *State {
	if b == nil {
		return nil
	}

	return &State{
		RoomID:      b.RoomID,
		Date:        b.BookingDate.Format(time.DateOnly),
		StartTime:   b.StartTime.String(),
		EndTime:     b.EndTime.String(),
		Status:      string(b.Status),
		Attendees:   b.Attendees,
		TotalAmount: b.TotalAmount,
		PaymentID:   b.PaymentID,
	}
}

// NotificationOf describes b after action.
func NotificationOf(action Action, b model.Booking) Notification {
	return Notification{
		Action:       action,
		BookingID:    b.ID,
		RoomID:       b.RoomID,
		NewStatus:    string(b.Status),
		ContactEmail: b.ContactEmail,
		ContactName:  b.ContactName,
		Date:         b.BookingDate.Format(time.DateOnly),
		StartTime:    b.StartTime.String(),
		EndTime:      b.EndTime.String(),
		OccurredAt:   timezone.Now(),
	}
}

type Publisher interface {
	Notify(ctx context.Context, notification Notification) error
	Audit(ctx context.Context, audit Audit) error
}

type publisher struct {
	client kafka.Client
	cfg    *config.Config
	otel   otel.Otel
}

func New(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &publisher{
		client: client,
		cfg:    cfg,
		otel:   otel,
	}
}

func (p *publisher) Notify(ctx context.Context, notification Notification) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Notify")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{"booking_id": notification.BookingID, "action": string(notification.Action)})

	err = p.client.SendMessages(ctx, p.cfg.Kafka.Topics.Notification, kafka.Message{Key: notification.BookingID, Value: notification})
	if err != nil {
		log.Error().Err(err).Str("booking_id", notification.BookingID).Msg("failed to publish booking notification")

		return fmt.Errorf("failed to publish booking notification: %w", err)
	}

	return nil
}

func (p *publisher) Audit(ctx context.Context, audit Audit) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Audit")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if audit.OccurredAt.IsZero() {
		audit.OccurredAt = timezone.Now()
	}

	err = p.client.SendMessages(ctx, p.cfg.Kafka.Topics.Audit, kafka.Message{Key: audit.BookingID, Value: audit})
	if err != nil {
		log.Error().Err(err).Str("booking_id", audit.BookingID).Msg("failed to publish booking audit")

		return fmt.Errorf("failed to publish booking audit: %w", err)
	}

	return nil
}
