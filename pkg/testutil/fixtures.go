package testutil

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixed UUIDs for deterministic testing.
var (
	TestCustomerID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestCustomerID2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	TestLoanID1     = uuid.MustParse("00000000-0000-0000-0000-000000000100")
)

// Dec parses a decimal literal, panicking on malformed input. Test-only.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
