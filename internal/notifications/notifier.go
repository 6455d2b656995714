package notifications

import (
	"context"
	"fmt"

	"spacebook/pkg/kafka"
	"spacebook/pkg/logger"
)

// Sink delivers one rendered notification. The production sink is a
// structured log; an email or SMS gateway slots in behind the same
// interface.
type Sink interface {
	Deliver(ctx context.Context, recipient, subject, body string) error
}

type logSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) Sink {
	return &logSink{log: log}
}

func (s *logSink) Deliver(_ context.Context, recipient, subject, body string) error {
	s.log.Info("Notification delivered",
		"recipient", recipient,
		"subject", subject,
		"body", body,
	)
	return nil
}

// Notifier turns booking events into client-facing notifications.
type Notifier struct {
	sink Sink
	log  *logger.Logger
}

func NewNotifier(sink Sink, log *logger.Logger) *Notifier {
	return &Notifier{sink: sink, log: log}
}

// Handle is the kafka message handler. Unknown event types are
// committed without delivery so schema evolution on the topic never
// poisons the group.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()

	switch eventType {
	case EventBookingCreated, EventBookingStatusChanged:
	default:
		n.log.Warn("Skipping unknown event type",
			"event_type", eventType,
			"event_id", msg.GetEventID(),
		)
		return nil
	}

	var event BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("failed to decode booking event: %w", err)
	}

	subject, body := n.render(eventType, event)
	if err := n.sink.Deliver(ctx, event.ClientEmail, subject, body); err != nil {
		return fmt.Errorf("failed to deliver notification for booking %s: %w", event.BookingID, err)
	}

	n.log.Info("Processed booking event",
		"event_type", eventType,
		"event_id", msg.GetEventID(),
		"booking_id", event.BookingID,
	)
	return nil
}

func (n *Notifier) render(eventType string, event BookingEvent) (string, string) {
	switch eventType {
	case EventBookingCreated:
		return "Booking request received",
			fmt.Sprintf("Hi %s, we received your booking request for %s. The space owner will review it shortly.",
				event.ClientName, event.SlotStart.Format("Mon, 02 Jan 2006 15:04"))
	default:
		body := fmt.Sprintf("Hi %s, your booking for %s is now %s.",
			event.ClientName, event.SlotStart.Format("Mon, 02 Jan 2006 15:04"), event.Status)
		if event.Reason != "" {
			body += fmt.Sprintf(" Reason: %s.", event.Reason)
		}
		return fmt.Sprintf("Booking %s", event.Status), body
	}
}
