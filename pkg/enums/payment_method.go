package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod is how the customer settles an order.
type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "COD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodVNPay        PaymentMethod = "VNPAY"
	PaymentMethodMomo         PaymentMethod = "MOMO"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCOD,
	PaymentMethodBankTransfer,
	PaymentMethodVNPay,
	PaymentMethodMomo,
}

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// InitialOrderStatus is the status a freshly placed order starts in.
func (m PaymentMethod) InitialOrderStatus() OrderStatus {
	if m == PaymentMethodCOD {
		return OrderStatusProcessing
	}
	return OrderStatusPendingPayment
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	normalized := PaymentMethod(strings.ToUpper(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
