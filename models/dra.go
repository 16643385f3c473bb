package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
	"github.com/shopspring/decimal"
)

// Dra is a petty-cash expense folder. Num is derived as
// "<centerID><sequence>" and never changes; RunningTotal is derived state,
// recomputed by the ledger workflow from the folder's documents on every
// document mutation.
type Dra struct {
	Num          string          `gorm:"primaryKey;size:64" json:"num"`
	CenterId     int             `gorm:"index;not null" json:"center_id"`
	SequenceNo   int64           `gorm:"not null" json:"sequence_no"`
	CreationDate time.Time       `gorm:"not null" json:"creation_date"`
	State        DraState        `gorm:"type:enum('Active','Closed','Refused','Accepted','Reimbursed');not null;default:'Active';index" json:"state"`
	RunningTotal decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"running_total"`
	Reason       *string         `gorm:"size:500" json:"reason"`
	BonAchats    []BonAchat      `gorm:"foreignKey:DraNum;references:Num" json:"bon_achats,omitempty"`
	Factures     []Facture       `gorm:"foreignKey:DraNum;references:Num" json:"factures,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDra struct {
	CenterId     int       `json:"center_id" binding:"required"`
	CreationDate time.Time `json:"creation_date" binding:"required"`
}

func (input *NewDra) Validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Center](ctx, input.CenterId); err != nil {
		return errors.New("center not found")
	}
	return nil
}

func GetDra(ctx context.Context, num string, associations ...string) (*Dra, error) {
	return utils.FetchModelByNum[Dra](ctx, num, associations...)
}

func GetDras(ctx context.Context, centerId *int, state *DraState) ([]*Dra, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if centerId != nil && *centerId > 0 {
		dbCtx = dbCtx.Where("center_id = ?", *centerId)
	}
	if state != nil && *state != "" {
		dbCtx = dbCtx.Where("state = ?", *state)
	}
	var dras []*Dra
	if err := dbCtx.Order("creation_date DESC").Find(&dras).Error; err != nil {
		return nil, err
	}
	return dras, nil
}

// NextDraSequence hands out the folder sequence for a center, redis counter
// first with a db fallback for the max committed value.
func NextDraSequence(ctx context.Context, centerId int) (int64, error) {
	db := config.GetDB()
	return utils.GetCenterSequence(ctx, centerId,
		func() (int64, error) {
			var dbSeq *int64
			if err := db.WithContext(ctx).Model(&Dra{}).Select("max(sequence_no)").
				Where("center_id = ?", centerId).Scan(&dbSeq).Error; err != nil {
				return 0, err
			}
			if dbSeq == nil {
				return 0, nil
			}
			return *dbSeq, nil
		},
		func(seq int64) (bool, error) {
			var count int64
			if err := db.WithContext(ctx).Model(&Dra{}).
				Where("center_id = ? AND sequence_no = ?", centerId, seq).
				Count(&count).Error; err != nil {
				return false, err
			}
			return count > 0, nil
		},
	)
}
