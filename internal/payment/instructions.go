package payment

import "strings"

var InstructionMap = map[Method][]string{
	MethodCOD: {
		"Your order will be delivered to the address you provided",
		"Prepare {{amount}} in cash for the courier",
		"Pay the courier directly and keep the receipt",
	},
	MethodWhatsAppPay: {
		"We will message {{phone}} on WhatsApp with a payment request",
		"Approve the request of {{amount}} for order {{order_number}} in WhatsApp",
		"Your order ships once the payment is confirmed",
	},
}

func GetInstructions(method Method) []string {
	if steps, ok := InstructionMap[method]; ok {
		return steps
	}
	return []string{}
}

type InstructionVars map[string]string

func InjectVariables(steps []string, vars InstructionVars) []string {
	result := make([]string, 0, len(steps))

	for _, step := range steps {
		updated := step
		for key, value := range vars {
			updated = strings.ReplaceAll(updated, "{{"+key+"}}", value)
		}
		result = append(result, updated)
	}

	return result
}

func chargeInstructions(method Method, c Charge) []string {
	return InjectVariables(GetInstructions(method), InstructionVars{
		"amount":       c.Currency + " " + c.Amount.StringFixed(2),
		"phone":        c.Customer.Phone,
		"order_number": c.OrderNumber,
	})
}
