package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
)

// Repository handles wallet ledger persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EnsureWallet(ctx context.Context, userID uuid.UUID, currency string) (*models.Wallet, error)
	FindWalletByUser(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	ListEntries(ctx context.Context, walletID uuid.UUID, limit int, cursor *uuid.UUID) ([]models.WalletEntry, error)
	CreateEntry(ctx context.Context, entry *models.WalletEntry) error
	AdjustBalance(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) error
	CreateIntentRecord(ctx context.Context, record *models.PaymentIntentRecord) error
	CreateLedger(ctx context.Context, ledger *models.TransactionLedger) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// EnsureWallet upserts a wallet row keyed on user_id. The ON CONFLICT DO
// NOTHING plus re-read keeps concurrent first-access calls from creating
// duplicates.
func (r *repository) EnsureWallet(ctx context.Context, userID uuid.UUID, currency string) (*models.Wallet, error) {
	wallet := &models.Wallet{
		UserID:   userID,
		Balance:  decimal.Zero,
		Currency: currency,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(wallet).Error; err != nil {
		return nil, err
	}
	return r.FindWalletByUser(ctx, userID)
}

func (r *repository) FindWalletByUser(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ListEntries returns wallet entries newest-first using keyset pagination
// anchored on the cursor entry.
func (r *repository) ListEntries(ctx context.Context, walletID uuid.UUID, limit int, cursor *uuid.UUID) ([]models.WalletEntry, error) {
	query := r.db.WithContext(ctx).
		Model(&models.WalletEntry{}).
		Where("wallet_id = ?", walletID)

	if cursor != nil {
		var pivot models.WalletEntry
		if err := r.db.WithContext(ctx).
			Select("id", "created_at").
			Where("id = ? AND wallet_id = ?", *cursor, walletID).
			First(&pivot).Error; err != nil {
			return nil, err
		}
		query = query.Where("(created_at, id) < (?, ?)", pivot.CreatedAt, pivot.ID)
	}

	var entries []models.WalletEntry
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.WalletEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// AdjustBalance applies an atomic in-database increment so concurrent
// adjustments never lose updates.
func (r *repository) AdjustBalance(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateIntentRecord(ctx context.Context, record *models.PaymentIntentRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) CreateLedger(ctx context.Context, ledger *models.TransactionLedger) error {
	return r.db.WithContext(ctx).Create(ledger).Error
}
