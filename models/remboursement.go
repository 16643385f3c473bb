package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
	"gorm.io/gorm"
)

// Remboursement authorizes fund replenishment for an accepted folder; at
// most one per folder (unique index on DraNum).
type Remboursement struct {
	ID        int                 `gorm:"primary_key" json:"id"`
	DraNum    string              `gorm:"uniqueIndex;not null" json:"dra_num"`
	Date      time.Time           `gorm:"not null" json:"date"`
	Method    RemboursementMethod `gorm:"type:enum('Cash','Check');not null" json:"method"`
	CreatedAt time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRemboursement struct {
	Date   time.Time           `json:"date" binding:"required"`
	Method RemboursementMethod `json:"method" binding:"required"`
}

func (input *NewRemboursement) Validate(_ context.Context) error {
	if !input.Method.IsValid() {
		return errors.New("reimbursement method must be Cash or Check")
	}
	return nil
}

func GetRemboursement(ctx context.Context, id int) (*Remboursement, error) {
	return utils.FetchModel[Remboursement](ctx, id)
}

func GetRemboursementByDra(ctx context.Context, draNum string) (*Remboursement, error) {
	db := config.GetDB()
	var r Remboursement
	if err := db.WithContext(ctx).Where("dra_num = ?", draNum).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &r, nil
}
