package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
)

// TopUpInput carries a top-up request.
type TopUpInput struct {
	Amount   decimal.Decimal
	Currency string
}

// TopUpResult is returned to the client so it can confirm the intent.
type TopUpResult struct {
	ClientSecret    string              `json:"client_secret"`
	PaymentIntentID string              `json:"payment_intent_id"`
	WalletEntryID   uuid.UUID           `json:"wallet_entry_id"`
	Status          enums.PaymentStatus `json:"status"`
}

// EntryView is the outward shape of one ledger line.
type EntryView struct {
	ID        uuid.UUID             `json:"id"`
	Amount    decimal.Decimal       `json:"amount"`
	Type      enums.WalletEntryType `json:"type"`
	Reference *string               `json:"reference,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// Summary is the wallet overview with its most recent entries.
type Summary struct {
	ID            uuid.UUID       `json:"id"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	RecentEntries []EntryView     `json:"recent_entries"`
}

// TransactionPage is one cursor page of wallet entries. NextCursor is nil
// once the final page has been served.
type TransactionPage struct {
	Entries    []EntryView `json:"entries"`
	NextCursor *string     `json:"next_cursor"`
}

func toEntryView(entry models.WalletEntry) EntryView {
	return EntryView{
		ID:        entry.ID,
		Amount:    entry.Amount,
		Type:      entry.Type,
		Reference: entry.Reference,
		CreatedAt: entry.CreatedAt,
	}
}

func toEntryViews(entries []models.WalletEntry) []EntryView {
	views := make([]EntryView, len(entries))
	for i, entry := range entries {
		views[i] = toEntryView(entry)
	}
	return views
}
