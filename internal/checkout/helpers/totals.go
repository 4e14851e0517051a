package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ShippingFee is free at or above the threshold, else the flat fee.
func ShippingFee(productTotal, freeThreshold, flatFee decimal.Decimal) decimal.Decimal {
	if productTotal.GreaterThanOrEqual(freeThreshold) {
		return decimal.Zero
	}
	return flatFee
}

// OrderNumber renders MS + yyyymmdd + 8 upper-case hex characters.
func OrderNumber(now time.Time) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("order number entropy: %w", err)
	}
	return "MS" + now.UTC().Format("20060102") + strings.ToUpper(hex.EncodeToString(buf)), nil
}
