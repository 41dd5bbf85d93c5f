package payment

import "context"

// Gateway initiates a payment with one provider.
type Gateway interface {
	Method() Method
	Initiate(ctx context.Context, charge Charge) (*Initiation, error)
}
