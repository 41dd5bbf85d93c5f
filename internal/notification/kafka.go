package notification

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"shopdesk-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var ErrKafkaDisabled = errors.New("kafka disabled: no brokers configured")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes confirmations as JSON, keyed by order id so every
// event of one order lands on the same partition.
type KafkaSender struct {
	writer messageWriter
	topic  string
}

func ParseBrokers(brokersCSV string) []string {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewKafkaSender(brokersCSV, topic string) (*KafkaSender, error) {
	brokers := ParseBrokers(brokersCSV)
	if len(brokers) == 0 {
		return nil, ErrKafkaDisabled
	}

	return &KafkaSender{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		topic: topic,
	}, nil
}

func (k *KafkaSender) Send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.OrderID),
		Value: data,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		logger.FromCtx(ctx).Warn("failed to publish order confirmation",
			zap.String("layer", "notification"),
			zap.String("topic", k.topic),
			zap.String("order_number", msg.OrderNumber),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (k *KafkaSender) Close() error {
	return k.writer.Close()
}
