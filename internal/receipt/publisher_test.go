package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/fjod/shopdesk/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPublisher(w *fakeWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: discard()}
}

func testBill() domain.Bill {
	return domain.Bill{
		ID: "bill-1",
		Lines: []domain.CartLine{
			{ProductID: "1", Name: "Rice", Unit: domain.UnitKg, Price: 60, Quantity: 5, Amount: 300},
		},
		Total:     300,
		CreatedAt: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newTestPublisher(w)

	require.NoError(t, p.Publish(context.Background(), testBill()))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "bill-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, EventType, string(msg.Headers[0].Value))

	var got domain.Bill
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	want := testBill()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Lines, got.Lines)
	assert.Equal(t, want.Total, got.Total)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	writeErr := errors.New("broker unreachable")
	p := newTestPublisher(&fakeWriter{err: writeErr})

	err := p.Publish(context.Background(), testBill())
	assert.ErrorIs(t, err, writeErr)
	assert.Contains(t, err.Error(), "bill-1")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newTestPublisher(w)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), testBill()))
	assert.NoError(t, p.Close())
}
