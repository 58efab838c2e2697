package enums

import "fmt"

// WalletEntryType classifies a single immutable wallet ledger line.
type WalletEntryType string

const (
	WalletEntryTypeTopupStripe   WalletEntryType = "TOPUP_STRIPE"
	WalletEntryTypeTopupReversal WalletEntryType = "TOPUP_REVERSAL"
	WalletEntryTypeOrderDebit    WalletEntryType = "ORDER_DEBIT"
	WalletEntryTypeLoyaltyCredit WalletEntryType = "LOYALTY_CREDIT"
)

var validWalletEntryTypes = []WalletEntryType{
	WalletEntryTypeTopupStripe,
	WalletEntryTypeTopupReversal,
	WalletEntryTypeOrderDebit,
	WalletEntryTypeLoyaltyCredit,
}

// String implements fmt.Stringer.
func (t WalletEntryType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known WalletEntryType.
func (t WalletEntryType) IsValid() bool {
	for _, candidate := range validWalletEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseWalletEntryType converts raw input into a WalletEntryType.
func ParseWalletEntryType(value string) (WalletEntryType, error) {
	for _, candidate := range validWalletEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet entry type %q", value)
}
