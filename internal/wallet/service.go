package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
	"github.com/orbit-delivery/orbit-backend/pkg/logger"
	"github.com/orbit-delivery/orbit-backend/pkg/pagination"
	pkgstripe "github.com/orbit-delivery/orbit-backend/pkg/stripe"
)

const recentEntryCount = 20

var minorUnitFactor = decimal.NewFromInt(100)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the wallet ledger operations.
type Service interface {
	EnsureWallet(ctx context.Context, userID uuid.UUID, currency string) (*models.Wallet, error)
	GetWallet(ctx context.Context, userID uuid.UUID) (*Summary, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*TransactionPage, error)
	TopUp(ctx context.Context, userID uuid.UUID, input TopUpInput) (*TopUpResult, error)
}

type service struct {
	repo            Repository
	txRunner        txRunner
	gateway         PaymentGateway
	logg            *logger.Logger
	topUpCeiling    decimal.Decimal
	defaultCurrency string
}

// NewService builds a wallet service backed by the ledger store and payment gateway.
func NewService(repo Repository, runner txRunner, gateway PaymentGateway, logg *logger.Logger, topUpCeiling float64, defaultCurrency string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if topUpCeiling <= 0 {
		return nil, fmt.Errorf("top-up ceiling must be positive")
	}
	currency := strings.ToLower(strings.TrimSpace(defaultCurrency))
	if currency == "" {
		currency = "usd"
	}
	return &service{
		repo:            repo,
		txRunner:        runner,
		gateway:         gateway,
		logg:            logg,
		topUpCeiling:    decimal.NewFromFloat(topUpCeiling),
		defaultCurrency: currency,
	}, nil
}

func (s *service) EnsureWallet(ctx context.Context, userID uuid.UUID, currency string) (*models.Wallet, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	wallet, err := s.repo.EnsureWallet(ctx, userID, s.normalizeCurrency(currency))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure wallet")
	}
	return wallet, nil
}

func (s *service) GetWallet(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	wallet, err := s.EnsureWallet(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListEntries(ctx, wallet.ID, recentEntryCount, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet entries")
	}

	return &Summary{
		ID:            wallet.ID,
		Balance:       wallet.Balance,
		Currency:      wallet.Currency,
		RecentEntries: toEntryViews(entries),
	}, nil
}

func (s *service) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*TransactionPage, error) {
	wallet, err := s.EnsureWallet(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	entries, err := s.repo.ListEntries(ctx, wallet.ID, limit, cursor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cursor does not reference a wallet entry")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet entries")
	}

	page := &TransactionPage{Entries: toEntryViews(entries)}
	if len(entries) == limit {
		next := pagination.EncodeCursor(entries[len(entries)-1].ID)
		page.NextCursor = &next
	}
	return page, nil
}

func (s *service) TopUp(ctx context.Context, userID uuid.UUID, input TopUpInput) (*TopUpResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.Amount.GreaterThan(s.topUpCeiling) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("amount exceeds the %s top-up ceiling", s.topUpCeiling.String()))
	}

	wallet, err := s.EnsureWallet(ctx, userID, input.Currency)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, toMinorUnits(input.Amount), wallet.Currency, map[string]string{
		"user_id":   userID.String(),
		"wallet_id": wallet.ID.String(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	reference := intent.ID
	entry := &models.WalletEntry{
		WalletID:  wallet.ID,
		Amount:    input.Amount,
		Type:      enums.WalletEntryTypeTopupStripe,
		Reference: &reference,
	}
	record := &models.PaymentIntentRecord{
		StripeIntentID: intent.ID,
		ClientSecret:   intent.ClientSecret,
		Status:         pkgstripe.MapIntentStatus(intent.Status),
		Amount:         input.Amount,
		Currency:       wallet.Currency,
	}

	// The balance is credited at intent-creation time; the webhook reversal
	// path corrects for canceled intents.
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wallet entry")
		}
		if err := repo.AdjustBalance(ctx, wallet.ID, input.Amount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet balance")
		}
		if err := repo.CreateIntentRecord(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create intent record")
		}
		ledger := &models.TransactionLedger{
			WalletEntryID:   entry.ID,
			PaymentIntentID: record.ID,
			Amount:          input.Amount,
			Status:          record.Status,
		}
		if err := repo.CreateLedger(ctx, ledger); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ledger row")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best-effort traceability patch; reconciliation works off the intent id
	// alone, so a failure here is logged and swallowed.
	if patchErr := s.gateway.UpdateIntentMetadata(ctx, intent.ID, map[string]string{
		"wallet_entry_id":  entry.ID.String(),
		"intent_record_id": record.ID.String(),
	}); patchErr != nil && s.logg != nil {
		s.logg.Error(ctx, "patch intent metadata", patchErr)
	}

	return &TopUpResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		WalletEntryID:   entry.ID,
		Status:          record.Status,
	}, nil
}

func (s *service) normalizeCurrency(currency string) string {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return s.defaultCurrency
	}
	return currency
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitFactor).Round(0).IntPart()
}
