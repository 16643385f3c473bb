package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Encaissement is the crediting event that restores a center's available
// funds after reimbursement. Amount is the folder's running total captured
// at receipt time, never re-derived.
type Encaissement struct {
	CenterId        int             `gorm:"primaryKey;autoIncrement:false" json:"center_id"`
	RemboursementId int             `gorm:"primaryKey;autoIncrement:false" json:"remboursement_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Date            time.Time       `gorm:"not null" json:"date"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewEncaissement struct {
	CenterId int       `json:"center_id" binding:"required"`
	Date     time.Time `json:"date" binding:"required"`
}

func GetEncaissement(ctx context.Context, centerId int, remboursementId int) (*Encaissement, error) {
	db := config.GetDB()
	var e Encaissement
	err := db.WithContext(ctx).
		Where("center_id = ? AND remboursement_id = ?", centerId, remboursementId).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &e, nil
}
