package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
)

type Supplier struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Address   string    `gorm:"size:255" json:"address"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	if input.Name == "" {
		return nil, errors.New("supplier name is required")
	}

	supplier := Supplier{
		Name:    input.Name,
		Address: input.Address,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Supplier](); err != nil {
		return nil, err
	}
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, id int, input *NewSupplier) (*Supplier, error) {
	if input.Name == "" {
		return nil, errors.New("supplier name is required")
	}

	supplier, err := utils.FetchModel[Supplier](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(supplier).Updates(map[string]interface{}{
		"Name":    input.Name,
		"Address": input.Address,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Supplier](); err != nil {
		return nil, err
	}
	return supplier, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return utils.FetchModel[Supplier](ctx, id)
}

func GetSuppliers(ctx context.Context) ([]*Supplier, error) {
	suppliers, err := utils.RetrieveRedisList[Supplier]()
	if err != nil {
		return nil, err
	}
	if suppliers == nil {
		suppliers, err = utils.FetchAllModels[Supplier](ctx)
		if err != nil {
			return nil, err
		}
		if err := utils.StoreRedisList[Supplier](suppliers); err != nil {
			return nil, err
		}
	}
	return suppliers, nil
}
