package report

var paymentLabels = map[string]string{
	"credit_card": "Credit Card",
	"boleto":      "Boleto",
	"voucher":     "Voucher",
	"debit_card":  "Debit Card",
}

// PaymentLabel maps a payment type code to its display label. Unknown codes
// are returned unchanged.
func PaymentLabel(code string) string {
	if label, ok := paymentLabels[code]; ok {
		return label
	}
	return code
}
