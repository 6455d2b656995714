package notifications

import (
	"context"

	"spacebook/pkg/kafka"
	"spacebook/pkg/model"
)

// Publisher emits booking lifecycle events. Callers treat publishing as
// best-effort: a failed publish must never fail the booking operation
// that triggered it.
type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
	BookingStatusChanged(ctx context.Context, booking *model.Booking, previousStatus string) error
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) Publisher {
	return &kafkaPublisher{producer: producer, source: source}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(eventFromBooking(booking)).
		WithEventType(EventBookingCreated).
		WithSource(p.source).
		Build()
	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) BookingStatusChanged(ctx context.Context, booking *model.Booking, previousStatus string) error {
	event := eventFromBooking(booking)
	event.PreviousStatus = previousStatus
	event.Reason = booking.CancellationReason

	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(event).
		WithEventType(EventBookingStatusChanged).
		WithSource(p.source).
		Build()
	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}
