package payment

import "context"

// offlineGateway covers methods settled outside any provider API: cash on
// delivery and WhatsApp payment requests. They always succeed as pending.
type offlineGateway struct {
	method Method
}

func NewCODGateway() Gateway {
	return &offlineGateway{method: MethodCOD}
}

func NewWhatsAppPayGateway() Gateway {
	return &offlineGateway{method: MethodWhatsAppPay}
}

func (g *offlineGateway) Method() Method { return g.method }

func (g *offlineGateway) Initiate(ctx context.Context, charge Charge) (*Initiation, error) {
	return &Initiation{
		ProviderID:   charge.Reference,
		Instructions: chargeInstructions(g.method, charge),
	}, nil
}
