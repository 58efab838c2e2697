package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
)

// Repository handles the reconciliation side of the payment ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindRecordByIntentID(ctx context.Context, stripeIntentID string) (*models.PaymentIntentRecord, error)
	UpdateRecordStatus(ctx context.Context, recordID uuid.UUID, status enums.PaymentStatus) error
	FindLedgerByIntentRecord(ctx context.Context, recordID uuid.UUID) (*models.TransactionLedger, error)
	UpdateLedgerStatus(ctx context.Context, ledgerID uuid.UUID, status enums.PaymentStatus) error
	FindEntryByID(ctx context.Context, entryID uuid.UUID) (*models.WalletEntry, error)
	ReversalExists(ctx context.Context, reference string) (bool, error)
	CreateEntry(ctx context.Context, entry *models.WalletEntry) error
	UpdateEntryLabel(ctx context.Context, entryID uuid.UUID, entryType enums.WalletEntryType, reference string) error
	AdjustBalance(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindRecordByIntentID(ctx context.Context, stripeIntentID string) (*models.PaymentIntentRecord, error) {
	if stripeIntentID == "" {
		return nil, nil
	}
	var record models.PaymentIntentRecord
	if err := r.db.WithContext(ctx).
		Where("stripe_intent_id = ?", stripeIntentID).
		First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) UpdateRecordStatus(ctx context.Context, recordID uuid.UUID, status enums.PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentIntentRecord{}).
		Where("id = ?", recordID).
		Update("status", status).Error
}

func (r *repository) FindLedgerByIntentRecord(ctx context.Context, recordID uuid.UUID) (*models.TransactionLedger, error) {
	var ledger models.TransactionLedger
	if err := r.db.WithContext(ctx).
		Where("payment_intent_id = ?", recordID).
		First(&ledger).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ledger, nil
}

func (r *repository) UpdateLedgerStatus(ctx context.Context, ledgerID uuid.UUID, status enums.PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.TransactionLedger{}).
		Where("id = ?", ledgerID).
		Update("status", status).Error
}

func (r *repository) FindEntryByID(ctx context.Context, entryID uuid.UUID) (*models.WalletEntry, error) {
	var entry models.WalletEntry
	if err := r.db.WithContext(ctx).
		Where("id = ?", entryID).
		First(&entry).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ReversalExists(ctx context.Context, reference string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WalletEntry{}).
		Where("type = ? AND reference = ?", enums.WalletEntryTypeTopupReversal, reference).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.WalletEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) UpdateEntryLabel(ctx context.Context, entryID uuid.UUID, entryType enums.WalletEntryType, reference string) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletEntry{}).
		Where("id = ?", entryID).
		Updates(map[string]any{
			"type":      entryType,
			"reference": reference,
		}).Error
}

func (r *repository) AdjustBalance(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", gorm.Expr("balance + ?", delta)).Error
}
