package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/orbit-delivery/orbit-backend/pkg/db/models"
	"github.com/orbit-delivery/orbit-backend/pkg/enums"
	pkgerrors "github.com/orbit-delivery/orbit-backend/pkg/errors"
	"github.com/orbit-delivery/orbit-backend/pkg/logger"
	pkgstripe "github.com/orbit-delivery/orbit-backend/pkg/stripe"
)

const intentEventPrefix = "payment_intent."

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the reconciliation service dependencies.
type ServiceParams struct {
	Repo              Repository
	TransactionRunner txRunner
	Logger            *logger.Logger
}

// Service reconciles gateway webhook events against the wallet ledger.
type Service struct {
	repo     Repository
	txRunner txRunner
	logg     *logger.Logger
}

// NewService builds the webhook reconciliation service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		repo:     params.Repo,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
	}, nil
}

// HandleEvent applies one gateway event to the ledger. Events for intents this
// system never created are logged and dropped; they are not an error.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	if !strings.HasPrefix(string(event.Type), intentEventPrefix) {
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}

	record, err := s.repo.FindRecordByIntentID(ctx, intent.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup intent record")
	}
	if record == nil {
		if s.logg != nil {
			s.logg.Info(ctx, fmt.Sprintf("intent %s has no local record, skipping", intent.ID))
		}
		return nil
	}

	status := pkgstripe.MapIntentStatus(intent.Status)

	// Gateway deliveries can arrive out of order; a settled record never moves
	// back to an earlier status.
	if record.Status.IsTerminal() && status != record.Status {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("intent %s is already %s, ignoring stale %s event", intent.ID, record.Status, status))
		}
		return nil
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.UpdateRecordStatus(ctx, record.ID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update intent record status")
		}

		ledger, err := repo.FindLedgerByIntentRecord(ctx, record.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup ledger row")
		}
		if ledger == nil {
			return nil
		}
		if err := repo.UpdateLedgerStatus(ctx, ledger.ID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ledger status")
		}

		switch status {
		case enums.PaymentStatusCanceled:
			return s.reverseEntry(ctx, repo, ledger, intent.ID)
		case enums.PaymentStatusSucceeded:
			// Bookkeeping relabel only; the balance was credited at top-up time.
			if err := repo.UpdateEntryLabel(ctx, ledger.WalletEntryID, enums.WalletEntryTypeTopupStripe, intent.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "relabel wallet entry")
			}
			return nil
		default:
			return nil
		}
	})
}

// reverseEntry undoes an optimistic top-up credit. The reversal-presence check
// keeps webhook replays from double-debiting the wallet.
func (s *Service) reverseEntry(ctx context.Context, repo Repository, ledger *models.TransactionLedger, intentID string) error {
	entry, err := repo.FindEntryByID(ctx, ledger.WalletEntryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup wallet entry")
	}
	if entry == nil {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("original entry for intent %s is gone, skipping reversal", intentID))
		}
		return nil
	}

	exists, err := repo.ReversalExists(ctx, intentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check prior reversal")
	}
	if exists {
		return nil
	}

	if err := repo.AdjustBalance(ctx, entry.WalletID, entry.Amount.Neg()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit wallet balance")
	}

	reference := intentID
	reversal := &models.WalletEntry{
		WalletID:  entry.WalletID,
		Amount:    entry.Amount.Neg(),
		Type:      enums.WalletEntryTypeTopupReversal,
		Reference: &reference,
	}
	if err := repo.CreateEntry(ctx, reversal); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reversal entry")
	}
	return nil
}
