package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
	"github.com/shopspring/decimal"
)

// Center is a cost center owning a petty-cash balance. AvailableFunds is
// mutated only by the ledger workflow under row lock; center CRUD never
// touches it after creation.
type Center struct {
	ID             int             `gorm:"primary_key" json:"id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Address        string          `gorm:"size:255" json:"address"`
	Type           CenterType      `gorm:"type:enum('A','B');not null" json:"type"`
	Threshold      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"threshold"`
	AvailableFunds decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"available_funds"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCenter struct {
	Name           string          `json:"name" binding:"required"`
	Address        string          `json:"address"`
	Type           CenterType      `json:"type" binding:"required"`
	Threshold      decimal.Decimal `json:"threshold"`
	AvailableFunds decimal.Decimal `json:"available_funds"`
}

func (input *NewCenter) validate(_ context.Context) error {
	if !input.Type.IsValid() {
		return errors.New("center type must be A or B")
	}
	if input.Threshold.IsNegative() {
		return errors.New("threshold cannot be negative")
	}
	if input.AvailableFunds.IsNegative() {
		return errors.New("available funds cannot be negative")
	}
	return nil
}

func CreateCenter(ctx context.Context, input *NewCenter) (*Center, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	center := Center{
		Name:           input.Name,
		Address:        input.Address,
		Type:           input.Type,
		Threshold:      input.Threshold,
		AvailableFunds: input.AvailableFunds,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&center).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Center](); err != nil {
		return nil, err
	}
	return &center, nil
}

// UpdateCenter changes reference fields only. AvailableFunds is owned by the
// ledger workflow and deliberately absent here.
func UpdateCenter(ctx context.Context, id int, input *NewCenter) (*Center, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	center, err := utils.FetchModel[Center](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(center).Updates(map[string]interface{}{
		"Name":      input.Name,
		"Address":   input.Address,
		"Type":      input.Type,
		"Threshold": input.Threshold,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Center](); err != nil {
		return nil, err
	}
	return center, nil
}

func GetCenter(ctx context.Context, id int) (*Center, error) {
	return utils.FetchModel[Center](ctx, id)
}

func GetCenters(ctx context.Context) ([]*Center, error) {
	centers, err := utils.RetrieveRedisList[Center]()
	if err != nil {
		return nil, err
	}
	if centers == nil {
		centers, err = utils.FetchAllModels[Center](ctx)
		if err != nil {
			return nil, err
		}
		if err := utils.StoreRedisList[Center](centers); err != nil {
			return nil, err
		}
	}
	return centers, nil
}
