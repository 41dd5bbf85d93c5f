package payment

import (
	"context"
	"fmt"
	"time"

	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/metrics"

	"go.uber.org/zap"
)

// Dispatcher routes a charge to the gateway registered for its method.
// Dispatch never returns an error or panics: every failure becomes an
// error Result.
type Dispatcher struct {
	gateways map[Method]Gateway
	timeout  time.Duration
	metrics  *metrics.Metrics
}

func NewDispatcher(timeout time.Duration, m *metrics.Metrics, gateways ...Gateway) *Dispatcher {
	d := &Dispatcher{
		gateways: make(map[Method]Gateway, len(gateways)),
		timeout:  timeout,
		metrics:  m,
	}
	for _, gw := range gateways {
		d.gateways[gw.Method()] = gw
	}
	return d
}

func (d *Dispatcher) Supports(method string) bool {
	_, ok := d.gateways[Method(method)]
	return ok
}

func (d *Dispatcher) Dispatch(ctx context.Context, charge Charge, method string) (res Result) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "payment"),
		zap.String("method", "Dispatch"),
		zap.String("payment_method", method),
		zap.String("order_number", charge.OrderNumber),
	)

	timer := metrics.StartTimer()
	defer func() {
		if r := recover(); r != nil {
			log.Error("payment provider panicked", zap.Any("panic", r))
			res = Result{Status: ResultError, Message: fmt.Sprintf("payment provider failed: %v", r)}
		}
		d.metrics.ObservePayment(method, string(res.Status), timer.Duration())
	}()

	gw, ok := d.gateways[Method(method)]
	if !ok {
		log.Warn("unknown payment method")
		return Result{Status: ResultError, Message: ErrInvalidMethod.Error()}
	}

	if err := ctx.Err(); err != nil {
		return Result{Status: ResultError, Message: err.Error(), Retryable: true}
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	started, err := gw.Initiate(callCtx, charge)
	if err != nil {
		retryable := IsRetryable(err)
		log.Warn("payment dispatch failed", zap.Bool("retryable", retryable), zap.Error(err))
		return Result{Status: ResultError, Message: err.Error(), Retryable: retryable}
	}

	res = Result{
		Status:        ResultSuccess,
		PaymentStatus: StatusPending,
		Instructions:  started.Instructions,
	}
	if started.PaymentURL != "" {
		u := started.PaymentURL
		res.PaymentURL = &u
	}

	log.Info("payment dispatched", zap.String("provider_id", started.ProviderID))
	return res
}
