package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/models"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var tracer = otel.Tracer("dra-backend/workflow")

// The ledger engine is the sole writer of Center.AvailableFunds and
// Dra.RunningTotal. Every public operation here runs inside exactly one
// transaction under the center's advisory lock plus FOR UPDATE row locks on
// the center and folder rows; business-rule failures abort the transaction
// with no state change.

// inPostingTx runs fn inside one transaction serialized per center.
func inPostingTx(ctx context.Context, centerId int, fn func(tx *gorm.DB) error) error {
	ctx, span := tracer.Start(ctx, "ledger.postingTx")
	span.SetAttributes(attribute.Int("center.id", centerId))
	defer span.End()

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := AcquireCenterPostingLock(tx, centerId); err != nil {
		tx.Rollback()
		return err
	}
	if err := fn(tx); err != nil {
		ReleaseCenterPostingLock(tx, centerId)
		tx.Rollback()
		return err
	}
	ReleaseCenterPostingLock(tx, centerId)
	return tx.Commit().Error
}

func lockDra(tx *gorm.DB, ctx context.Context, num string) (*models.Dra, error) {
	var dra models.Dra
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("num = ?", num).First(&dra).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &dra, nil
}

func lockCenter(tx *gorm.DB, ctx context.Context, id int) (*models.Center, error) {
	var center models.Center
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&center, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &center, nil
}

func debitCenterFunds(tx *gorm.DB, ctx context.Context, center *models.Center, amount decimal.Decimal) error {
	if center.AvailableFunds.LessThan(amount) {
		return utils.ErrInsufficientFunds
	}
	center.AvailableFunds = center.AvailableFunds.Sub(amount)
	if config.ThresholdAlertsEnabled() && center.AvailableFunds.LessThan(center.Threshold) {
		logWorkflowInfo(config.GetLogger(), "CenterBelowThreshold", logrus.Fields{
			"centerId":       center.ID,
			"availableFunds": center.AvailableFunds,
			"threshold":      center.Threshold,
		})
	}
	return tx.WithContext(ctx).Model(center).Update("available_funds", center.AvailableFunds).Error
}

func creditCenterFunds(tx *gorm.DB, ctx context.Context, center *models.Center, amount decimal.Decimal) error {
	center.AvailableFunds = center.AvailableFunds.Add(amount)
	return tx.WithContext(ctx).Model(center).Update("available_funds", center.AvailableFunds).Error
}

// recomputeDraRunningTotal re-derives the folder total from scratch out of
// the folder's current documents (both kinds). The folder row is locked, so
// the document set read here is a consistent snapshot.
func recomputeDraRunningTotal(tx *gorm.DB, ctx context.Context, dra *models.Dra) error {
	var baSum, factureSum decimal.Decimal
	err := tx.WithContext(ctx).Model(&models.BonAchat{}).
		Where("dra_num = ?", dra.Num).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&baSum).Error
	if err != nil {
		return err
	}
	err = tx.WithContext(ctx).Model(&models.Facture{}).
		Where("dra_num = ?", dra.Num).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&factureSum).Error
	if err != nil {
		return err
	}
	dra.RunningTotal = baSum.Add(factureSum)
	return tx.WithContext(ctx).Model(dra).Update("running_total", dra.RunningTotal).Error
}

// syncableDocument is a document aggregate the engine can persist and whose
// line-item set it can replace wholesale.
type syncableDocument interface {
	models.Document
	SyncDetails(tx *gorm.DB, ctx context.Context, input *models.NewDocument, lines []models.DocumentLine) error
}

func checkCeiling(doc models.Document) error {
	if doc.GetTotalAmount().GreaterThan(doc.GetKind().Ceiling()) {
		return utils.ErrCeilingExceeded
	}
	return nil
}

/* document creation */

func CreateBonAchat(ctx context.Context, draNum string, input *models.NewDocument) (*models.BonAchat, error) {
	doc, err := createDocument(ctx, models.DocumentKindBonAchat, draNum, input)
	if err != nil {
		return nil, err
	}
	return doc.(*models.BonAchat), nil
}

func CreateFacture(ctx context.Context, draNum string, input *models.NewDocument) (*models.Facture, error) {
	doc, err := createDocument(ctx, models.DocumentKindFacture, draNum, input)
	if err != nil {
		return nil, err
	}
	return doc.(*models.Facture), nil
}

func createDocument(ctx context.Context, kind models.DocumentKind, draNum string, input *models.NewDocument) (models.Document, error) {
	logger := config.GetLogger()

	if err := input.Validate(ctx, kind); err != nil {
		return nil, err
	}
	lines, err := input.BuildDocumentLines(ctx, kind)
	if err != nil {
		return nil, err
	}
	if err := validateDocumentNumFree(ctx, kind, input.Num); err != nil {
		return nil, err
	}

	dra, err := models.GetDra(ctx, draNum)
	if err != nil {
		return nil, err
	}

	var doc syncableDocument
	err = inPostingTx(ctx, dra.CenterId, func(tx *gorm.DB) error {
		lockedDra, err := lockDra(tx, ctx, draNum)
		if err != nil {
			config.LogError(logger, "ledger.go", "createDocument", "LockDra", draNum, err)
			return err
		}
		if lockedDra.State != models.DraStateActive {
			return utils.ErrFolderNotEditable
		}
		center, err := lockCenter(tx, ctx, lockedDra.CenterId)
		if err != nil {
			config.LogError(logger, "ledger.go", "createDocument", "LockCenter", lockedDra.CenterId, err)
			return err
		}

		switch kind {
		case models.DocumentKindBonAchat:
			doc = models.NewBonAchatFromLines(draNum, input, lines)
		case models.DocumentKindFacture:
			doc = models.NewFactureFromLines(draNum, input, lines)
		default:
			return fmt.Errorf("unknown document kind %s", kind)
		}

		if err := checkCeiling(doc); err != nil {
			return err
		}
		if err := debitCenterFunds(tx, ctx, center, doc.GetTotalAmount()); err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Create(doc).Error; err != nil {
			config.LogError(logger, "ledger.go", "createDocument", "CreateDocument", input.Num, err)
			return err
		}
		return recomputeDraRunningTotal(tx, ctx, lockedDra)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func validateDocumentNumFree(ctx context.Context, kind models.DocumentKind, num string) error {
	db := config.GetDB()
	var count int64
	var err error
	if kind == models.DocumentKindBonAchat {
		err = db.WithContext(ctx).Model(&models.BonAchat{}).Where("num = ?", num).Count(&count).Error
	} else {
		err = db.WithContext(ctx).Model(&models.Facture{}).Where("num = ?", num).Count(&count).Error
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("document number %s already exists", num)
	}
	return nil
}

/* document edit */

func UpdateBonAchat(ctx context.Context, num string, input *models.NewDocument) (*models.BonAchat, error) {
	ba, err := models.GetBonAchat(ctx, num)
	if err != nil {
		return nil, err
	}
	if err := updateDocument(ctx, models.DocumentKindBonAchat, ba, input, func(tx *gorm.DB) (syncableDocument, error) {
		var fresh models.BonAchat
		if err := tx.WithContext(ctx).Preload("Details").Where("num = ?", num).First(&fresh).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.ErrorRecordNotFound
			}
			return nil, err
		}
		return &fresh, nil
	}); err != nil {
		return nil, err
	}
	return models.GetBonAchat(ctx, num)
}

func UpdateFacture(ctx context.Context, num string, input *models.NewDocument) (*models.Facture, error) {
	f, err := models.GetFacture(ctx, num)
	if err != nil {
		return nil, err
	}
	if err := updateDocument(ctx, models.DocumentKindFacture, f, input, func(tx *gorm.DB) (syncableDocument, error) {
		var fresh models.Facture
		if err := tx.WithContext(ctx).Preload("Details").Where("num = ?", num).First(&fresh).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.ErrorRecordNotFound
			}
			return nil, err
		}
		return &fresh, nil
	}); err != nil {
		return nil, err
	}
	return models.GetFacture(ctx, num)
}

// updateDocument restores funds for the old total, replaces the line-item
// set, then re-validates ceiling and funds against the restored balance.
// Restoration and re-debit commit or roll back together.
func updateDocument(ctx context.Context, kind models.DocumentKind, existing models.Document, input *models.NewDocument, fetchLocked func(tx *gorm.DB) (syncableDocument, error)) error {
	logger := config.GetLogger()

	if err := input.Validate(ctx, kind); err != nil {
		return err
	}
	lines, err := input.BuildDocumentLines(ctx, kind)
	if err != nil {
		return err
	}

	dra, err := models.GetDra(ctx, existing.GetDraNum())
	if err != nil {
		return err
	}

	return inPostingTx(ctx, dra.CenterId, func(tx *gorm.DB) error {
		lockedDra, err := lockDra(tx, ctx, dra.Num)
		if err != nil {
			return err
		}
		if lockedDra.State != models.DraStateActive {
			return utils.ErrFolderNotEditable
		}
		center, err := lockCenter(tx, ctx, lockedDra.CenterId)
		if err != nil {
			return err
		}

		doc, err := fetchLocked(tx)
		if err != nil {
			config.LogError(logger, "ledger.go", "updateDocument", "FetchDocument", existing.GetNum(), err)
			return err
		}
		oldTotal := doc.GetTotalAmount()

		// restore first; a failure after this point rolls the restore back too
		if err := creditCenterFunds(tx, ctx, center, oldTotal); err != nil {
			return err
		}
		if err := doc.SyncDetails(tx, ctx, input, lines); err != nil {
			config.LogError(logger, "ledger.go", "updateDocument", "SyncDetails", existing.GetNum(), err)
			return err
		}
		if err := checkCeiling(doc); err != nil {
			return err
		}
		if err := debitCenterFunds(tx, ctx, center, doc.GetTotalAmount()); err != nil {
			return err
		}
		return recomputeDraRunningTotal(tx, ctx, lockedDra)
	})
}

/* document deletion */

func DeleteBonAchat(ctx context.Context, num string) error {
	ba, err := models.GetBonAchat(ctx, num)
	if err != nil {
		return err
	}
	return deleteDocument(ctx, ba, func(tx *gorm.DB) (models.Document, error) {
		var fresh models.BonAchat
		if err := tx.WithContext(ctx).Where("num = ?", num).First(&fresh).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.ErrorRecordNotFound
			}
			return nil, err
		}
		return &fresh, nil
	}, func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Where("bon_achat_num = ?", num).Delete(&models.BonAchatDetail{}).Error; err != nil {
			return err
		}
		return tx.WithContext(ctx).Where("num = ?", num).Delete(&models.BonAchat{}).Error
	})
}

func DeleteFacture(ctx context.Context, num string) error {
	f, err := models.GetFacture(ctx, num)
	if err != nil {
		return err
	}
	return deleteDocument(ctx, f, func(tx *gorm.DB) (models.Document, error) {
		var fresh models.Facture
		if err := tx.WithContext(ctx).Where("num = ?", num).First(&fresh).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.ErrorRecordNotFound
			}
			return nil, err
		}
		return &fresh, nil
	}, func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Where("facture_num = ?", num).Delete(&models.FactureDetail{}).Error; err != nil {
			return err
		}
		return tx.WithContext(ctx).Where("num = ?", num).Delete(&models.Facture{}).Error
	})
}

// deleteDocument restores the document's funds and removes it with its
// details, then re-derives the folder total. The pre-lock fetch only locates
// the folder; the amount credited back comes from a fresh read under the
// posting lock, so an edit committed in between cannot skew the balance.
func deleteDocument(ctx context.Context, existing models.Document, fetchLocked func(tx *gorm.DB) (models.Document, error), remove func(tx *gorm.DB) error) error {
	logger := config.GetLogger()

	dra, err := models.GetDra(ctx, existing.GetDraNum())
	if err != nil {
		return err
	}

	return inPostingTx(ctx, dra.CenterId, func(tx *gorm.DB) error {
		lockedDra, err := lockDra(tx, ctx, dra.Num)
		if err != nil {
			return err
		}
		if lockedDra.State != models.DraStateActive {
			return utils.ErrFolderNotEditable
		}
		center, err := lockCenter(tx, ctx, lockedDra.CenterId)
		if err != nil {
			return err
		}
		doc, err := fetchLocked(tx)
		if err != nil {
			return err
		}
		if err := creditCenterFunds(tx, ctx, center, doc.GetTotalAmount()); err != nil {
			return err
		}
		if err := remove(tx); err != nil {
			config.LogError(logger, "ledger.go", "deleteDocument", "RemoveDocument", doc.GetNum(), err)
			return err
		}
		return recomputeDraRunningTotal(tx, ctx, lockedDra)
	})
}

func logWorkflowInfo(logger *logrus.Logger, funcName string, fields logrus.Fields) {
	if logger == nil {
		return
	}
	logger.WithFields(fields).Info(funcName)
}
