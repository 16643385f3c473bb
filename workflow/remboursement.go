package workflow

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/models"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateRemboursement authorizes replenishment for an accepted folder and
// moves it to Reimbursed. A folder carries at most one reimbursement.
func CreateRemboursement(ctx context.Context, draNum string, input *models.NewRemboursement) (*models.Remboursement, error) {
	logger := config.GetLogger()

	if err := input.Validate(ctx); err != nil {
		return nil, err
	}

	dra, err := models.GetDra(ctx, draNum)
	if err != nil {
		return nil, err
	}

	remboursement := models.Remboursement{
		DraNum: draNum,
		Date:   input.Date,
		Method: input.Method,
	}

	err = inPostingTx(ctx, dra.CenterId, func(tx *gorm.DB) error {
		lockedDra, err := lockDra(tx, ctx, draNum)
		if err != nil {
			return err
		}
		if lockedDra.State != models.DraStateAccepted {
			return utils.ErrFolderNotAccepted
		}

		var existing int64
		if err := tx.WithContext(ctx).Model(&models.Remboursement{}).
			Where("dra_num = ?", draNum).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return utils.ErrDuplicateRemboursement
		}

		if err := tx.WithContext(ctx).Create(&remboursement).Error; err != nil {
			config.LogError(logger, "remboursement.go", "CreateRemboursement", "CreateRemboursement", draNum, err)
			return err
		}
		return tx.WithContext(ctx).Model(lockedDra).
			Update("state", models.DraStateReimbursed).Error
	})
	if err != nil {
		return nil, err
	}

	// notification hook; delivery channel is out of band
	logWorkflowInfo(logger, "RemboursementAuthorized", logrus.Fields{
		"draNum":          draNum,
		"remboursementId": remboursement.ID,
		"method":          remboursement.Method,
	})
	return &remboursement, nil
}

// CreateEncaissement records the receipt of reimbursed money and credits the
// center's available funds by the folder's running total, captured on the
// receipt row itself.
func CreateEncaissement(ctx context.Context, remboursementId int, input *models.NewEncaissement) (*models.Encaissement, error) {
	logger := config.GetLogger()

	remboursement, err := models.GetRemboursement(ctx, remboursementId)
	if err != nil {
		return nil, err
	}
	dra, err := models.GetDra(ctx, remboursement.DraNum)
	if err != nil {
		return nil, err
	}
	if input.CenterId != dra.CenterId {
		return nil, errors.New("receipt center does not match the folder's center")
	}

	var encaissement models.Encaissement
	err = inPostingTx(ctx, dra.CenterId, func(tx *gorm.DB) error {
		lockedDra, err := lockDra(tx, ctx, dra.Num)
		if err != nil {
			return err
		}
		center, err := lockCenter(tx, ctx, input.CenterId)
		if err != nil {
			return err
		}

		var existing int64
		if err := tx.WithContext(ctx).Model(&models.Encaissement{}).
			Where("center_id = ? AND remboursement_id = ?", input.CenterId, remboursementId).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return utils.ErrDuplicateEncaissement
		}

		encaissement = models.Encaissement{
			CenterId:        input.CenterId,
			RemboursementId: remboursementId,
			Amount:          lockedDra.RunningTotal,
			Date:            input.Date,
		}
		if err := creditCenterFunds(tx, ctx, center, encaissement.Amount); err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Create(&encaissement).Error; err != nil {
			config.LogError(logger, "remboursement.go", "CreateEncaissement", "CreateEncaissement", remboursementId, err)
			return err
		}
		if lockedDra.State == models.DraStateAccepted {
			return tx.WithContext(ctx).Model(lockedDra).
				Update("state", models.DraStateReimbursed).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &encaissement, nil
}

// DeleteEncaissement reverses a receipt: the credited amount is debited back
// and the folder returns to Accepted. Fails when the center has since spent
// below the amount to reverse. The receipt is re-read under the posting lock
// so a reversal that already happened surfaces as not-found instead of a
// second debit.
func DeleteEncaissement(ctx context.Context, centerId int, remboursementId int) error {
	logger := config.GetLogger()

	remboursement, err := models.GetRemboursement(ctx, remboursementId)
	if err != nil {
		return err
	}

	return inPostingTx(ctx, centerId, func(tx *gorm.DB) error {
		lockedDra, err := lockDra(tx, ctx, remboursement.DraNum)
		if err != nil {
			return err
		}
		center, err := lockCenter(tx, ctx, centerId)
		if err != nil {
			return err
		}
		var encaissement models.Encaissement
		if err := tx.WithContext(ctx).
			Where("center_id = ? AND remboursement_id = ?", centerId, remboursementId).
			First(&encaissement).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		if center.AvailableFunds.LessThan(encaissement.Amount) {
			return utils.ErrInsufficientFundsToReverse
		}
		if err := debitCenterFunds(tx, ctx, center, encaissement.Amount); err != nil {
			return err
		}
		if err := tx.WithContext(ctx).
			Where("center_id = ? AND remboursement_id = ?", centerId, remboursementId).
			Delete(&models.Encaissement{}).Error; err != nil {
			config.LogError(logger, "remboursement.go", "DeleteEncaissement", "DeleteEncaissement", remboursementId, err)
			return err
		}
		if lockedDra.State == models.DraStateReimbursed {
			return tx.WithContext(ctx).Model(lockedDra).
				Update("state", models.DraStateAccepted).Error
		}
		return nil
	})
}
