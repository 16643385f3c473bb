package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
	"github.com/shopspring/decimal"
)

// CatalogItem is read-mostly reference data (pieces, prestations, charges).
// UnitPrice is the live catalog price; document line items snapshot price and
// tax rate at attach time and never read back from here.
type CatalogItem struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Kind      CatalogKind     `gorm:"type:enum('Piece','Prestation','Charge');not null;index" json:"kind"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_rate"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCatalogItem struct {
	Name      string          `json:"name" binding:"required"`
	Kind      CatalogKind     `json:"kind" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}

func (input *NewCatalogItem) validate(_ context.Context) error {
	if !input.Kind.IsValid() {
		return errors.New("catalog kind must be Piece, Prestation or Charge")
	}
	if input.UnitPrice.IsNegative() {
		return errors.New("unit price cannot be negative")
	}
	if input.TaxRate.IsNegative() {
		return errors.New("tax rate cannot be negative")
	}
	return nil
}

func CreateCatalogItem(ctx context.Context, input *NewCatalogItem) (*CatalogItem, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	item := CatalogItem{
		Name:      input.Name,
		Kind:      input.Kind,
		UnitPrice: input.UnitPrice,
		TaxRate:   input.TaxRate,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[CatalogItem](); err != nil {
		return nil, err
	}
	return &item, nil
}

func UpdateCatalogItem(ctx context.Context, id int, input *NewCatalogItem) (*CatalogItem, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	item, err := utils.FetchModel[CatalogItem](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(item).Updates(map[string]interface{}{
		"Name":      input.Name,
		"Kind":      input.Kind,
		"UnitPrice": input.UnitPrice,
		"TaxRate":   input.TaxRate,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[CatalogItem](); err != nil {
		return nil, err
	}
	return item, nil
}

func GetCatalogItem(ctx context.Context, id int) (*CatalogItem, error) {
	return utils.FetchModel[CatalogItem](ctx, id)
}

func GetCatalogItems(ctx context.Context) ([]*CatalogItem, error) {
	items, err := utils.RetrieveRedisList[CatalogItem]()
	if err != nil {
		return nil, err
	}
	if items == nil {
		items, err = utils.FetchAllModels[CatalogItem](ctx)
		if err != nil {
			return nil, err
		}
		if err := utils.StoreRedisList[CatalogItem](items); err != nil {
			return nil, err
		}
	}
	return items, nil
}
