package helpers

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/enums"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/money"
)

// BankAccount is the shop account customers transfer to.
type BankAccount struct {
	BankName      string
	AccountNumber string
	AccountName   string
}

// PaymentInstructions is the customer-facing next step for the chosen method.
// Bank transfers quote the order number as the transfer content so staff can
// reconcile the payment.
func PaymentInstructions(method enums.PaymentMethod, orderNumber string, amount decimal.Decimal, bank BankAccount) string {
	switch method {
	case enums.PaymentMethodBankTransfer:
		return fmt.Sprintf(
			"Please transfer %s to %s, account %s (%s). Use %s as the transfer content.",
			money.VND(amount), bank.BankName, bank.AccountNumber, bank.AccountName, orderNumber,
		)
	case enums.PaymentMethodCOD:
		return fmt.Sprintf("Please prepare %s to pay the courier on delivery.", money.VND(amount))
	case enums.PaymentMethodVNPay:
		return "You will be redirected to VNPay to complete the payment."
	case enums.PaymentMethodMomo:
		return "You will be redirected to MoMo to complete the payment."
	default:
		return ""
	}
}
