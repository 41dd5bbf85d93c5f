package notification

import (
	"context"

	"shopdesk-be/internal/logger"

	"go.uber.org/zap"
)

type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (LogSender) Send(ctx context.Context, msg Message) error {
	logger.FromCtx(ctx).Info("order confirmation",
		zap.String("layer", "notification"),
		zap.String("order_number", msg.OrderNumber),
		zap.String("customer_phone", msg.CustomerPhone),
		zap.String("total", msg.Total),
	)
	return nil
}
