package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"spacebook/pkg/kafka"
	"spacebook/pkg/logger"
)

type recordingSink struct {
	recipients []string
	subjects   []string
	err        error
}

func (s *recordingSink) Deliver(_ context.Context, recipient, subject, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.recipients = append(s.recipients, recipient)
	s.subjects = append(s.subjects, subject)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.FormatText, Output: io.Discard})
}

func eventMessage(t *testing.T, eventType string, event BookingEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	return kafka.Message{
		Key:   event.BookingID,
		Value: value,
		Headers: map[string]string{
			kafka.HeaderEventType: eventType,
			kafka.HeaderEventID:   "evt-1",
		},
	}
}

func sampleEvent() BookingEvent {
	return BookingEvent{
		BookingID:   "665f1c0a9b3e2d0001a4f100",
		SpaceID:     "665f1c0a9b3e2d0001a4f001",
		ClientName:  "Amina Okello",
		ClientEmail: "amina@example.com",
		SlotStart:   time.Date(2026, 10, 3, 10, 0, 0, 0, time.UTC),
		SlotEnd:     time.Date(2026, 10, 3, 13, 0, 0, 0, time.UTC),
		Status:      "pending",
	}
}

func TestHandle_BookingCreated(t *testing.T) {
	sink := &recordingSink{}
	n := NewNotifier(sink, testLogger())

	msg := eventMessage(t, EventBookingCreated, sampleEvent())
	if err := n.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle() = %v", err)
	}

	if len(sink.recipients) != 1 || sink.recipients[0] != "amina@example.com" {
		t.Errorf("recipients = %v", sink.recipients)
	}
	if sink.subjects[0] != "Booking request received" {
		t.Errorf("subject = %q", sink.subjects[0])
	}
}

func TestHandle_StatusChanged(t *testing.T) {
	sink := &recordingSink{}
	n := NewNotifier(sink, testLogger())

	event := sampleEvent()
	event.Status = "declined"
	event.PreviousStatus = "pending"
	event.Reason = "space under renovation"

	if err := n.Handle(context.Background(), eventMessage(t, EventBookingStatusChanged, event)); err != nil {
		t.Fatalf("Handle() = %v", err)
	}
	if sink.subjects[0] != "Booking declined" {
		t.Errorf("subject = %q", sink.subjects[0])
	}
}

func TestHandle_UnknownEventTypeCommitted(t *testing.T) {
	sink := &recordingSink{}
	n := NewNotifier(sink, testLogger())

	msg := eventMessage(t, "space.updated", sampleEvent())
	if err := n.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unknown event types must be skipped, got %v", err)
	}
	if len(sink.recipients) != 0 {
		t.Errorf("unexpected delivery for unknown event type")
	}
}

func TestHandle_MalformedPayload(t *testing.T) {
	n := NewNotifier(&recordingSink{}, testLogger())

	msg := kafka.Message{
		Key:     "broken",
		Value:   []byte("{not json"),
		Headers: map[string]string{kafka.HeaderEventType: EventBookingCreated},
	}
	if err := n.Handle(context.Background(), msg); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestHandle_SinkFailurePropagates(t *testing.T) {
	sink := &recordingSink{err: errors.New("smtp gateway down")}
	n := NewNotifier(sink, testLogger())

	err := n.Handle(context.Background(), eventMessage(t, EventBookingCreated, sampleEvent()))
	if err == nil {
		t.Fatal("sink failures must propagate so the consumer can retry")
	}
}
