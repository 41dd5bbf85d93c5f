package order

import "time"

type ItemResponse struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	SKU         *string `json:"sku,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	LineTotal   float64 `json:"line_total"`
}

type Response struct {
	ID              string         `json:"id"`
	OrderNumber     string         `json:"order_number"`
	ContactID       int64          `json:"contact_id"`
	Status          Status         `json:"status"`
	PaymentStatus   PaymentStatus  `json:"payment_status"`
	PaymentMethod   string         `json:"payment_method"`
	PaymentURL      *string        `json:"payment_url,omitempty"`
	Subtotal        float64        `json:"subtotal"`
	Discount        float64        `json:"discount"`
	Tax             float64        `json:"tax"`
	Shipping        float64        `json:"shipping"`
	Total           float64        `json:"total"`
	PromoCode       *string        `json:"promo_code,omitempty"`
	Currency        string         `json:"currency"`
	Source          string         `json:"source"`
	Notes           *string        `json:"notes,omitempty"`
	Items           []ItemResponse `json:"items"`
	StatusUpdatedAt time.Time      `json:"status_updated_at"`
	CreatedAt       time.Time      `json:"created_at"`
}

type StatusChangeResponse struct {
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	Actor     string    `json:"actor"`
	ChangedAt time.Time `json:"changed_at"`
}

func ToResponse(o *Order) *Response {
	if o == nil {
		return nil
	}

	items := make([]ItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.SKU,
			UnitPrice:   it.UnitPrice.InexactFloat64(),
			Quantity:    it.Quantity,
			LineTotal:   it.LineTotal.InexactFloat64(),
		})
	}

	return &Response{
		ID:              o.ID.String(),
		OrderNumber:     o.OrderNumber,
		ContactID:       o.ContactID,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		PaymentURL:      o.PaymentURL,
		Subtotal:        o.Subtotal.InexactFloat64(),
		Discount:        o.Discount.InexactFloat64(),
		Tax:             o.Tax.InexactFloat64(),
		Shipping:        o.Shipping.InexactFloat64(),
		Total:           o.Total.InexactFloat64(),
		PromoCode:       o.PromoCode,
		Currency:        o.Currency,
		Source:          o.Source,
		Notes:           o.Notes,
		Items:           items,
		StatusUpdatedAt: o.StatusUpdatedAt,
		CreatedAt:       o.CreatedAt,
	}
}

func ToResponses(orders []*Order) []*Response {
	out := make([]*Response, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToResponse(o))
	}
	return out
}

func ToStatusChangeResponses(history []StatusChange) []StatusChangeResponse {
	out := make([]StatusChangeResponse, 0, len(history))
	for _, c := range history {
		out = append(out, StatusChangeResponse{
			OldStatus: c.OldStatus,
			NewStatus: c.NewStatus,
			Actor:     c.Actor,
			ChangedAt: c.ChangedAt,
		})
	}
	return out
}
