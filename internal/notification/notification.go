package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopdesk-be/internal/config"
	"shopdesk-be/internal/contact"
	"shopdesk-be/internal/order"
)

const (
	DriverLog      = "log"
	DriverKafka    = "kafka"
	DriverWhatsApp = "whatsapp"
)

var ErrUnknownDriver = errors.New("unknown notification driver")

// Sender delivers one order confirmation. Callers treat failures as
// non-fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	TenantID      int64     `json:"tenant_id"`
	Total         string    `json:"total"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	PaymentURL    string    `json:"payment_url,omitempty"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewMessage(o *order.Order, c *contact.Contact) Message {
	msg := Message{
		OrderID:       o.ID.String(),
		OrderNumber:   o.OrderNumber,
		TenantID:      o.TenantID,
		Total:         o.Total.StringFixed(2),
		Currency:      o.Currency,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: string(o.PaymentStatus),
		CreatedAt:     o.CreatedAt,
	}
	if o.PaymentURL != nil {
		msg.PaymentURL = *o.PaymentURL
	}
	if c != nil {
		msg.CustomerName = c.Name
		msg.CustomerPhone = c.Phone
		if c.Email != nil {
			msg.CustomerEmail = *c.Email
		}
	}
	return msg
}

// Text renders the customer-facing confirmation.
func (m Message) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, thanks for your order %s.\n", m.CustomerName, m.OrderNumber)
	fmt.Fprintf(&b, "Total: %s %s (%s, %s)", m.Currency, m.Total, m.PaymentMethod, m.PaymentStatus)
	if m.PaymentURL != "" {
		fmt.Fprintf(&b, "\nPay here: %s", m.PaymentURL)
	}
	return b.String()
}

// NewSender picks the sender configured by NOTIFY_DRIVER.
func NewSender(cfg *config.Config) (Sender, error) {
	switch strings.ToLower(cfg.NotifyDriver) {
	case "", DriverLog:
		return NewLogSender(), nil
	case DriverKafka:
		return NewKafkaSender(cfg.KafkaBrokers, cfg.KafkaNotifyTopic)
	case DriverWhatsApp:
		return NewWhatsAppSender(cfg.WhatsAppBaseURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.NotifyDriver)
	}
}
