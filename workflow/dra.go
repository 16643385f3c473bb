package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/models"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
	"gorm.io/gorm"
)

// CreateDra opens an expense folder for a center. At most one active folder
// may exist per center; the check runs under the center posting lock so two
// concurrent creations cannot both pass it.
func CreateDra(ctx context.Context, input *models.NewDra) (*models.Dra, error) {
	logger := config.GetLogger()

	if err := input.Validate(ctx); err != nil {
		return nil, err
	}

	seq, err := models.NextDraSequence(ctx, input.CenterId)
	if err != nil {
		config.LogError(logger, "dra.go", "CreateDra", "NextDraSequence", input.CenterId, err)
		return nil, err
	}

	dra := models.Dra{
		Num:          fmt.Sprintf("%d%d", input.CenterId, seq),
		CenterId:     input.CenterId,
		SequenceNo:   seq,
		CreationDate: input.CreationDate,
		State:        models.DraStateActive,
	}

	err = inPostingTx(ctx, input.CenterId, func(tx *gorm.DB) error {
		if _, err := lockCenter(tx, ctx, input.CenterId); err != nil {
			return err
		}
		var activeCount int64
		if err := tx.WithContext(ctx).Model(&models.Dra{}).
			Where("center_id = ? AND state = ?", input.CenterId, models.DraStateActive).
			Count(&activeCount).Error; err != nil {
			return err
		}
		if activeCount > 0 {
			return utils.ErrActiveFolderExists
		}
		return tx.WithContext(ctx).Create(&dra).Error
	})
	if err != nil {
		return nil, err
	}
	return &dra, nil
}

// TransitionDra moves a folder to a caller-requested state. Reimbursed is
// never reachable here; CreateRemboursement owns that edge.
func TransitionDra(ctx context.Context, num string, target models.DraState, reason *string) (*models.Dra, error) {
	if !target.IsValid() || target == models.DraStateActive || target == models.DraStateReimbursed {
		return nil, utils.ErrInvalidStateTransition
	}

	dra, err := models.GetDra(ctx, num)
	if err != nil {
		return nil, err
	}

	var transitioned *models.Dra
	err = inPostingTx(ctx, dra.CenterId, func(tx *gorm.DB) error {
		lockedDra, err := lockDra(tx, ctx, num)
		if err != nil {
			return err
		}
		if !CanTransitionDra(lockedDra.State, target) {
			return utils.ErrInvalidStateTransition
		}
		updates := map[string]interface{}{"State": target}
		if target == models.DraStateRefused {
			updates["Reason"] = reason
		}
		if err := tx.WithContext(ctx).Model(lockedDra).Updates(updates).Error; err != nil {
			return err
		}
		lockedDra.State = target
		if target == models.DraStateRefused {
			lockedDra.Reason = reason
		}
		transitioned = lockedDra
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transitioned, nil
}

// DeleteDra hard-deletes an active folder. Funds restoration is an explicit
// compensating sequence per document, not a storage-layer cascade, so the
// invariant holds regardless of the storage engine.
func DeleteDra(ctx context.Context, num string) error {
	logger := config.GetLogger()

	dra, err := models.GetDra(ctx, num)
	if err != nil {
		return err
	}

	return inPostingTx(ctx, dra.CenterId, func(tx *gorm.DB) error {
		lockedDra, err := lockDra(tx, ctx, num)
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

		var bonAchats []models.BonAchat
		if err := tx.WithContext(ctx).Where("dra_num = ?", num).Find(&bonAchats).Error; err != nil {
			return err
		}
		for i := range bonAchats {
			if err := creditCenterFunds(tx, ctx, center, bonAchats[i].TotalAmount); err != nil {
				return err
			}
			if err := tx.WithContext(ctx).Where("bon_achat_num = ?", bonAchats[i].Num).Delete(&models.BonAchatDetail{}).Error; err != nil {
				return err
			}
			if err := tx.WithContext(ctx).Delete(&bonAchats[i]).Error; err != nil {
				return err
			}
		}

		var factures []models.Facture
		if err := tx.WithContext(ctx).Where("dra_num = ?", num).Find(&factures).Error; err != nil {
			return err
		}
		for i := range factures {
			if err := creditCenterFunds(tx, ctx, center, factures[i].TotalAmount); err != nil {
				return err
			}
			if err := tx.WithContext(ctx).Where("facture_num = ?", factures[i].Num).Delete(&models.FactureDetail{}).Error; err != nil {
				return err
			}
			if err := tx.WithContext(ctx).Delete(&factures[i]).Error; err != nil {
				return err
			}
		}

		if err := tx.WithContext(ctx).Delete(lockedDra).Error; err != nil {
			config.LogError(logger, "dra.go", "DeleteDra", "DeleteFolder", num, err)
			return err
		}
		return nil
	})
}
