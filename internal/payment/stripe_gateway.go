package payment

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shopdesk-be/internal/logger"

	"go.uber.org/zap"
)

const stripeBaseURL = "https://api.stripe.com"

type StripeConfig struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
	Timeout    time.Duration
}

type stripeGateway struct {
	baseURL    string
	secretKey  string
	successURL string
	cancelURL  string
	httpClient *http.Client
}

type stripeSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func NewStripeGateway(cfg StripeConfig) Gateway {
	if cfg.SecretKey == "" {
		logger.L().Warn("Stripe secret key is empty")
	}

	return &stripeGateway{
		baseURL:    stripeBaseURL,
		secretKey:  cfg.SecretKey,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

func (s *stripeGateway) Method() Method { return MethodStripe }

// Initiate creates a hosted Checkout Session and returns its URL.
func (s *stripeGateway) Initiate(ctx context.Context, charge Charge) (*Initiation, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "payment"),
		zap.String("method", "StripeInitiate"),
		zap.String("order_number", charge.OrderNumber),
		zap.Int64("amount", charge.MinorUnits()),
	)

	if s.secretKey == "" {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", charge.Reference)
	form.Set("success_url", s.successURL)
	form.Set("cancel_url", s.cancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(charge.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(charge.MinorUnits(), 10))
	form.Set("line_items[0][price_data][product_data][name]", "Order "+charge.OrderNumber)
	form.Set("metadata[order_number]", charge.OrderNumber)
	if charge.Customer.Email != nil && *charge.Customer.Email != "" {
		form.Set("customer_email", *charge.Customer.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		log.Error("failed creating request", zap.Error(err))
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", charge.Reference)

	var session stripeSession
	if err := send(s.httpClient, req, "stripe", &session); err != nil {
		return nil, err
	}

	if session.URL == "" {
		log.Error("stripe session has no url", zap.String("session_id", session.ID))
		return nil, errors.New("stripe session has no url")
	}

	log.Info("stripe checkout session created", zap.String("session_id", session.ID))

	return &Initiation{ProviderID: session.ID, PaymentURL: session.URL}, nil
}
