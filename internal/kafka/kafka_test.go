package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/Domenick1991/aircargo/internal/monitoring"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	failures int
	written  []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.failures > 0 {
		w.failures--
		return errors.New("leader not available")
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	msgs []kafka.Message
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		return kafka.Message{}, context.Canceled
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) Close() error { return nil }

func TestNewBookingEvent(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	b := domain.NewBooking("CRG1", "DEL", "BLR", 1, 2, nil, now)
	info := "AI101"
	ev, err := b.Apply(domain.TransitionDepart, domain.TransitionDetails{FlightInfo: &info}, now.Add(time.Hour))
	require.NoError(t, err)

	got := NewBookingEvent(b, ev)

	assert.Equal(t, EventBookingDeparted, got.Type)
	assert.Equal(t, "CRG1", got.RefID)
	assert.Equal(t, domain.BookingStatusDeparted, got.Status)
	assert.Equal(t, "DEL", got.Location)
	assert.Equal(t, &info, got.FlightInfo)

	created := NewBookingEvent(domain.NewBooking("CRG2", "DEL", "BLR", 1, 2, nil, now), domain.TimelineEvent{EventType: domain.BookingStatusBooked})
	assert.Equal(t, EventBookingCreated, created.Type)
}

func TestEventType(t *testing.T) {
	assert.Equal(t, EventBookingCreated, EventType(domain.BookingStatusBooked))
	assert.Equal(t, EventBookingArrived, EventType(domain.BookingStatusArrived))
	assert.Equal(t, EventBookingDelivered, EventType(domain.BookingStatusDelivered))
	assert.Equal(t, EventBookingCancelled, EventType(domain.BookingStatusCancelled))
}

func TestEventKind(t *testing.T) {
	assert.Equal(t, monitoring.BookingCreated, EventKind(EventBookingCreated))
	assert.Equal(t, monitoring.BookingUpdated, EventKind(EventBookingDeparted))
	assert.Equal(t, monitoring.BookingUpdated, EventKind(EventBookingDelivered))
	assert.Equal(t, monitoring.BookingCancelled, EventKind(EventBookingCancelled))
}

func TestProducer_PublishKeyedJSON(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, log: logger.Nop()}

	ev := BookingEvent{Type: EventBookingCreated, RefID: "CRG1", Status: domain.BookingStatusBooked}
	require.NoError(t, p.Publish(context.Background(), "booking-events", "CRG1", ev))

	require.Len(t, w.written, 1)
	assert.Equal(t, "booking-events", w.written[0].Topic)
	assert.Equal(t, []byte("CRG1"), w.written[0].Key)

	var decoded BookingEvent
	require.NoError(t, json.Unmarshal(w.written[0].Value, &decoded))
	assert.Equal(t, "CRG1", decoded.RefID)
}

func TestProducer_PublishWithRetry(t *testing.T) {
	w := &fakeWriter{failures: 1}
	p := &Producer{writer: w, log: logger.Nop()}

	err := p.PublishWithRetry(context.Background(), "t", "k", map[string]string{"a": "b"}, 2)

	require.NoError(t, err)
	assert.Len(t, w.written, 1)
}

func TestProducer_PublishWithRetryGivesUp(t *testing.T) {
	w := &fakeWriter{failures: 5}
	p := &Producer{writer: w, log: logger.Nop()}

	err := p.PublishWithRetry(context.Background(), "t", "k", "x", 1)

	assert.ErrorContains(t, err, "failed after 1 retries")
	assert.Empty(t, w.written)
}

func TestConsumer_ConsumeBookingEventsSkipsBadMessages(t *testing.T) {
	good, err := json.Marshal(BookingEvent{Type: EventBookingArrived, RefID: "CRG1"})
	require.NoError(t, err)

	c := &Consumer{
		reader: &fakeReader{msgs: []kafka.Message{
			{Value: []byte("not json")},
			{Value: good},
		}},
		log: logger.Nop(),
	}

	var seen []BookingEvent
	err = c.ConsumeBookingEvents(context.Background(), func(_ context.Context, ev BookingEvent) error {
		seen = append(seen, ev)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "CRG1", seen[0].RefID)
}

func TestDecodeBookingEvent_RequiresTypeAndRef(t *testing.T) {
	_, err := DecodeBookingEvent([]byte(`{"type":"booking.created"}`))
	assert.Error(t, err)
}
