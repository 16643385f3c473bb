package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Facture is an invoice attached to an expense folder, capped at 20,000.
// Unlike a bon d'achat it may carry stamp duty and its lines may reference
// any catalog kind (piece, prestation, charge).
type Facture struct {
	Num          string          `gorm:"primaryKey;size:64" json:"num"`
	DraNum       string          `gorm:"index;not null" json:"dra_num"`
	SupplierId   int             `gorm:"index;not null" json:"supplier_id"`
	DocumentDate time.Time       `gorm:"not null" json:"document_date"`
	StampDuty    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stamp_duty"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Details      []FactureDetail `gorm:"foreignKey:FactureNum;references:Num" json:"details,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type FactureDetail struct {
	ID            int             `gorm:"primary_key" json:"id"`
	FactureNum    string          `gorm:"index;not null" json:"facture_num"`
	CatalogItemId int             `gorm:"index;not null" json:"catalog_item_id"`
	CatalogKind   CatalogKind     `gorm:"type:enum('Piece','Prestation','Charge');not null" json:"catalog_kind"`
	Qty           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"tax_rate"`
}

func (f *Facture) GetKind() DocumentKind           { return DocumentKindFacture }
func (f *Facture) GetNum() string                  { return f.Num }
func (f *Facture) GetDraNum() string               { return f.DraNum }
func (f *Facture) GetTotalAmount() decimal.Decimal { return f.TotalAmount }

func NewFactureFromLines(draNum string, input *NewDocument, lines []DocumentLine) *Facture {
	f := Facture{
		Num:          input.Num,
		DraNum:       draNum,
		SupplierId:   input.SupplierId,
		DocumentDate: input.DocumentDate,
		StampDuty:    input.StampDuty,
		TotalAmount:  utils.CalculateDocumentTotal(documentLineTotals(lines), input.StampDuty),
	}
	for _, line := range lines {
		f.Details = append(f.Details, FactureDetail{
			FactureNum:    input.Num,
			CatalogItemId: line.CatalogItemId,
			CatalogKind:   line.CatalogKind,
			Qty:           line.Qty,
			UnitPrice:     line.UnitPrice,
			TaxRate:       line.TaxRate,
		})
	}
	return &f
}

// SyncDetails mirrors BonAchat.SyncDetails with stamp duty folded into the
// recomputed total.
func (f *Facture) SyncDetails(tx *gorm.DB, ctx context.Context, input *NewDocument, lines []DocumentLine) error {
	wanted := make(map[int]DocumentLine, len(lines))
	for _, line := range lines {
		wanted[line.CatalogItemId] = line
	}

	kept := f.Details[:0]
	for i := range f.Details {
		if _, ok := wanted[f.Details[i].CatalogItemId]; !ok {
			if err := tx.WithContext(ctx).Delete(&f.Details[i]).Error; err != nil {
				return err
			}
			continue
		}
		kept = append(kept, f.Details[i])
	}
	f.Details = kept

	existing := make(map[int]*FactureDetail, len(f.Details))
	for i := range f.Details {
		existing[f.Details[i].CatalogItemId] = &f.Details[i]
	}

	for _, line := range lines {
		if item, ok := existing[line.CatalogItemId]; ok {
			item.Qty = line.Qty
			item.UnitPrice = line.UnitPrice
			item.TaxRate = line.TaxRate
			item.CatalogKind = line.CatalogKind
			if err := tx.WithContext(ctx).Save(item).Error; err != nil {
				return err
			}
		} else {
			newItem := FactureDetail{
				FactureNum:    f.Num,
				CatalogItemId: line.CatalogItemId,
				CatalogKind:   line.CatalogKind,
				Qty:           line.Qty,
				UnitPrice:     line.UnitPrice,
				TaxRate:       line.TaxRate,
			}
			if err := tx.WithContext(ctx).Create(&newItem).Error; err != nil {
				return err
			}
			f.Details = append(f.Details, newItem)
		}
	}

	f.SupplierId = input.SupplierId
	f.DocumentDate = input.DocumentDate
	f.StampDuty = input.StampDuty
	f.TotalAmount = utils.CalculateDocumentTotal(documentLineTotals(lines), input.StampDuty)
	return tx.WithContext(ctx).Model(f).Updates(map[string]interface{}{
		"SupplierId":   f.SupplierId,
		"DocumentDate": f.DocumentDate,
		"StampDuty":    f.StampDuty,
		"TotalAmount":  f.TotalAmount,
	}).Error
}

func GetFacture(ctx context.Context, num string) (*Facture, error) {
	return utils.FetchModelByNum[Facture](ctx, num, "Details")
}

func GetFactures(ctx context.Context, draNum *string) ([]*Facture, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Details")
	if draNum != nil && *draNum != "" {
		dbCtx = dbCtx.Where("dra_num = ?", *draNum)
	}
	var factures []*Facture
	if err := dbCtx.Order("document_date DESC").Find(&factures).Error; err != nil {
		return nil, err
	}
	return factures, nil
}
