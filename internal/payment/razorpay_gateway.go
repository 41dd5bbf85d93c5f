package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"shopdesk-be/internal/logger"

	"go.uber.org/zap"
)

const razorpayBaseURL = "https://api.razorpay.com"

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

type razorpayGateway struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

type razorpayCustomer struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Email   string `json:"email,omitempty"`
}

type razorpayLinkRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	ReferenceID string            `json:"reference_id"`
	Description string            `json:"description"`
	Customer    razorpayCustomer  `json:"customer"`
	Notes       map[string]string `json:"notes,omitempty"`
}

type razorpayLink struct {
	ID       string `json:"id"`
	ShortURL string `json:"short_url"`
	Status   string `json:"status"`
}

func NewRazorpayGateway(cfg RazorpayConfig) Gateway {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		logger.L().Warn("Razorpay credentials are empty")
	}

	return &razorpayGateway{
		baseURL:    razorpayBaseURL,
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

func (r *razorpayGateway) Method() Method { return MethodRazorpay }

// Initiate creates a payment link and returns its short URL.
func (r *razorpayGateway) Initiate(ctx context.Context, charge Charge) (*Initiation, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "payment"),
		zap.String("method", "RazorpayInitiate"),
		zap.String("order_number", charge.OrderNumber),
		zap.Int64("amount", charge.MinorUnits()),
	)

	if r.keyID == "" || r.keySecret == "" {
		return nil, ErrNotConfigured
	}

	body := razorpayLinkRequest{
		Amount:      charge.MinorUnits(),
		Currency:    strings.ToUpper(charge.Currency),
		ReferenceID: charge.OrderNumber,
		Description: "Order " + charge.OrderNumber,
		Customer: razorpayCustomer{
			Name:    charge.Customer.Name,
			Contact: charge.Customer.Phone,
		},
		Notes: map[string]string{"order_id": charge.Reference},
	}
	if charge.Customer.Email != nil {
		body.Customer.Email = *charge.Customer.Email
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Error("failed to marshal payment request", zap.Error(err))
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/payment_links", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("failed creating request", zap.Error(err))
		return nil, err
	}

	req.SetBasicAuth(r.keyID, r.keySecret)
	req.Header.Set("Content-Type", "application/json")

	var link razorpayLink
	if err := send(r.httpClient, req, "razorpay", &link); err != nil {
		return nil, err
	}

	if link.ShortURL == "" {
		log.Error("razorpay link has no short_url", zap.String("link_id", link.ID))
		return nil, errors.New("razorpay link has no short_url")
	}

	log.Info("razorpay payment link created", zap.String("link_id", link.ID))

	return &Initiation{ProviderID: link.ID, PaymentURL: link.ShortURL}, nil
}
