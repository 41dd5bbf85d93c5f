package payment

import "github.com/shopspring/decimal"

type Method string

const (
	MethodCOD         Method = "cod"
	MethodStripe      Method = "stripe"
	MethodRazorpay    Method = "razorpay"
	MethodWhatsAppPay Method = "whatsapp_pay"
)

// StatusPending is the only payment status a synchronous dispatch produces.
// Settlement happens later, outside this service.
const StatusPending = "pending"

type Customer struct {
	Name  string
	Phone string
	Email *string
}

// Charge is what a provider is asked to collect for one order.
type Charge struct {
	Reference   string
	OrderNumber string
	Amount      decimal.Decimal
	Currency    string
	Customer    Customer
}

// MinorUnits converts Amount to the smallest currency unit (cents).
func (c Charge) MinorUnits() int64 {
	return c.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

type Initiation struct {
	ProviderID   string
	PaymentURL   string
	Instructions []string
}

type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultError   ResultStatus = "error"
)

type Result struct {
	Status        ResultStatus
	PaymentStatus string
	PaymentURL    *string
	Message       string
	Instructions  []string
	Retryable     bool
}

func (r Result) OK() bool {
	return r.Status == ResultSuccess
}

// Err converts a failed Result into a typed error. It returns nil on success.
func (r Result) Err(method string) error {
	if r.OK() {
		return nil
	}
	if r.Retryable {
		return &UnavailableError{Method: method, Message: r.Message}
	}
	return &DeclinedError{Method: method, Message: r.Message}
}
