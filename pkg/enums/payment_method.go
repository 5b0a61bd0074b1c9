package enums

import "slices"

// PaymentMethod is the label a buyer picks at checkout. Nothing is charged.
type PaymentMethod string

const (
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodToss  PaymentMethod = "toss"
	PaymentMethodNaver PaymentMethod = "naver"
	PaymentMethodKakao PaymentMethod = "kakao"
	PaymentMethodBank  PaymentMethod = "bank"
	PaymentMethodPhone PaymentMethod = "phone"
)

var paymentMethods = []PaymentMethod{
	PaymentMethodCard, PaymentMethodToss, PaymentMethodNaver,
	PaymentMethodKakao, PaymentMethodBank, PaymentMethodPhone,
}

func (p PaymentMethod) IsValid() bool { return slices.Contains(paymentMethods, p) }

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	return parse(paymentMethods, "payment method", raw)
}
