package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"0":         "0",
		"999":       "999",
		"1000":      "1,000",
		"30000":     "30,000",
		"630000":    "630,000",
		"1234567.6": "1,234,568",
		"-45000":    "-45,000",
	}
	for in, want := range cases {
		if got := Format(decimal.RequireFromString(in)); got != want {
			t.Fatalf("Format(%s): expected %s got %s", in, want, got)
		}
	}
	if got := VND(decimal.NewFromInt(630000)); got != "630,000 VND" {
		t.Fatalf("unexpected VND rendering %q", got)
	}
}
