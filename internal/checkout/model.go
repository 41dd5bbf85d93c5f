package checkout

import (
	"shopdesk-be/internal/contact"
	"shopdesk-be/internal/order"
	"shopdesk-be/internal/payment"

	"github.com/shopspring/decimal"
)

type Item struct {
	ProductID int64           `json:"id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Request struct {
	Items         []Item       `json:"items"`
	CustomerInfo  contact.Info `json:"customer_info"`
	PaymentMethod string       `json:"payment_method"`
	PromoCode     string       `json:"promo_code,omitempty"`
	Notes         *string      `json:"notes,omitempty"`
	Source        string       `json:"source,omitempty"`
}

type Result struct {
	Order   *order.Order
	Contact *contact.Contact
	Payment payment.Result
}

// Response is the success body of POST /checkout.
type Response struct {
	Status              string   `json:"status"`
	OrderID             string   `json:"order_id"`
	OrderNumber         string   `json:"order_number"`
	Total               float64  `json:"total"`
	PaymentStatus       string   `json:"payment_status"`
	PaymentURL          *string  `json:"payment_url,omitempty"`
	PaymentInstructions []string `json:"payment_instructions,omitempty"`
}

func ToResponse(r *Result) Response {
	return Response{
		Status:              "success",
		OrderID:             r.Order.ID.String(),
		OrderNumber:         r.Order.OrderNumber,
		Total:               r.Order.Total.InexactFloat64(),
		PaymentStatus:       string(r.Order.PaymentStatus),
		PaymentURL:          r.Order.PaymentURL,
		PaymentInstructions: r.Payment.Instructions,
	}
}

type reservation struct {
	productID int64
	quantity  int
}
