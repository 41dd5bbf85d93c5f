package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopdesk-be/internal/config"
	"shopdesk-be/internal/contact"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/order"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleMessage() Message {
	url := "https://rzp.io/i/abc"
	email := "ana@example.com"
	o := &order.Order{
		ID:            uuid.MustParse("3f0c2a52-5a3e-4d6b-9d1c-2f9b8f0e7a11"),
		TenantID:      4,
		OrderNumber:   "ORD-20260101-ABCDEF",
		Total:         decimal.RequireFromString("97.2"),
		Currency:      "USD",
		PaymentMethod: "razorpay",
		PaymentStatus: order.PaymentStatusPending,
		PaymentURL:    &url,
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	c := &contact.Contact{Name: "Ana", Phone: "+628123456789", Email: &email}
	return NewMessage(o, c)
}

func TestNewMessage(t *testing.T) {
	msg := sampleMessage()

	assert.Equal(t, "3f0c2a52-5a3e-4d6b-9d1c-2f9b8f0e7a11", msg.OrderID)
	assert.Equal(t, "97.20", msg.Total)
	assert.Equal(t, "pending", msg.PaymentStatus)
	assert.Equal(t, "https://rzp.io/i/abc", msg.PaymentURL)
	assert.Equal(t, "ana@example.com", msg.CustomerEmail)

	text := msg.Text()
	assert.Contains(t, text, "Hi Ana")
	assert.Contains(t, text, "USD 97.20")
	assert.Contains(t, text, "Pay here: https://rzp.io/i/abc")
}

func TestNewSender(t *testing.T) {
	s, err := NewSender(&config.Config{})
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = NewSender(&config.Config{NotifyDriver: "WhatsApp", WhatsAppBaseURL: "http://wa.local/"})
	require.NoError(t, err)
	assert.Equal(t, "http://wa.local", s.(*WhatsAppSender).BaseURL)

	_, err = NewSender(&config.Config{NotifyDriver: "kafka"})
	assert.ErrorIs(t, err, ErrKafkaDisabled)

	s, err = NewSender(&config.Config{NotifyDriver: "kafka", KafkaBrokers: "k1:9092, k2:9092", KafkaNotifyTopic: "orders.confirmed"})
	require.NoError(t, err)
	assert.IsType(t, &KafkaSender{}, s)

	_, err = NewSender(&config.Config{NotifyDriver: "pigeon"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	defer logger.Replace(zap.New(core))()

	require.NoError(t, NewLogSender().Send(context.Background(), sampleMessage()))

	entries := logs.FilterMessage("order confirmation").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ORD-20260101-ABCDEF", entries[0].ContextMap()["order_number"])
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaSender_Send(t *testing.T) {
	t.Run("Publishes", func(t *testing.T) {
		w := &fakeWriter{}
		s := &KafkaSender{writer: w, topic: "orders.confirmed"}

		require.NoError(t, s.Send(context.Background(), sampleMessage()))

		require.Len(t, w.msgs, 1)
		assert.Equal(t, "3f0c2a52-5a3e-4d6b-9d1c-2f9b8f0e7a11", string(w.msgs[0].Key))
		assert.Contains(t, string(w.msgs[0].Value), `"order_number":"ORD-20260101-ABCDEF"`)
	})

	t.Run("WriterError", func(t *testing.T) {
		s := &KafkaSender{writer: &fakeWriter{err: errors.New("broker down")}}
		assert.EqualError(t, s.Send(context.Background(), sampleMessage()), "broker down")
	})
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:1", "b:2"}, ParseBrokers(" a:1, ,b:2 "))
	assert.Empty(t, ParseBrokers(""))
}
