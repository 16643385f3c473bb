package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BonAchat is a purchase order attached to an expense folder, capped at
// 10,000. Details snapshot price and tax rate at attachment time.
type BonAchat struct {
	Num          string           `gorm:"primaryKey;size:64" json:"num"`
	DraNum       string           `gorm:"index;not null" json:"dra_num"`
	SupplierId   int              `gorm:"index;not null" json:"supplier_id"`
	DocumentDate time.Time        `gorm:"not null" json:"document_date"`
	TotalAmount  decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Details      []BonAchatDetail `gorm:"foreignKey:BonAchatNum;references:Num" json:"details,omitempty"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type BonAchatDetail struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BonAchatNum   string          `gorm:"index;not null" json:"bon_achat_num"`
	CatalogItemId int             `gorm:"index;not null" json:"catalog_item_id"`
	CatalogKind   CatalogKind     `gorm:"type:enum('Piece','Prestation','Charge');not null" json:"catalog_kind"`
	Qty           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"tax_rate"`
}

func (b *BonAchat) GetKind() DocumentKind           { return DocumentKindBonAchat }
func (b *BonAchat) GetNum() string                  { return b.Num }
func (b *BonAchat) GetDraNum() string               { return b.DraNum }
func (b *BonAchat) GetTotalAmount() decimal.Decimal { return b.TotalAmount }

// NewBonAchatFromLines builds the aggregate with its total already computed;
// nothing is persisted here.
func NewBonAchatFromLines(draNum string, input *NewDocument, lines []DocumentLine) *BonAchat {
	ba := BonAchat{
		Num:          input.Num,
		DraNum:       draNum,
		SupplierId:   input.SupplierId,
		DocumentDate: input.DocumentDate,
		TotalAmount:  utils.CalculateDocumentTotal(documentLineTotals(lines), decimal.Zero),
	}
	for _, line := range lines {
		ba.Details = append(ba.Details, BonAchatDetail{
			BonAchatNum:   input.Num,
			CatalogItemId: line.CatalogItemId,
			CatalogKind:   line.CatalogKind,
			Qty:           line.Qty,
			UnitPrice:     line.UnitPrice,
			TaxRate:       line.TaxRate,
		})
	}
	return &ba
}

// SyncDetails replaces the full line-item set: details absent from lines are
// deleted, matching ones (same catalog item) updated in place, new ones
// inserted. The total is recomputed afterwards; the caller validates it
// against ceiling and funds before committing.
func (b *BonAchat) SyncDetails(tx *gorm.DB, ctx context.Context, input *NewDocument, lines []DocumentLine) error {
	wanted := make(map[int]DocumentLine, len(lines))
	for _, line := range lines {
		wanted[line.CatalogItemId] = line
	}

	kept := b.Details[:0]
	for i := range b.Details {
		if _, ok := wanted[b.Details[i].CatalogItemId]; !ok {
			if err := tx.WithContext(ctx).Delete(&b.Details[i]).Error; err != nil {
				return err
			}
			continue
		}
		kept = append(kept, b.Details[i])
	}
	b.Details = kept

	existing := make(map[int]*BonAchatDetail, len(b.Details))
	for i := range b.Details {
		existing[b.Details[i].CatalogItemId] = &b.Details[i]
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
			newItem := BonAchatDetail{
				BonAchatNum:   b.Num,
				CatalogItemId: line.CatalogItemId,
				CatalogKind:   line.CatalogKind,
				Qty:           line.Qty,
				UnitPrice:     line.UnitPrice,
				TaxRate:       line.TaxRate,
			}
			if err := tx.WithContext(ctx).Create(&newItem).Error; err != nil {
				return err
			}
			b.Details = append(b.Details, newItem)
		}
	}

	b.SupplierId = input.SupplierId
	b.DocumentDate = input.DocumentDate
	b.TotalAmount = utils.CalculateDocumentTotal(documentLineTotals(lines), decimal.Zero)
	return tx.WithContext(ctx).Model(b).Updates(map[string]interface{}{
		"SupplierId":   b.SupplierId,
		"DocumentDate": b.DocumentDate,
		"TotalAmount":  b.TotalAmount,
	}).Error
}

func GetBonAchat(ctx context.Context, num string) (*BonAchat, error) {
	return utils.FetchModelByNum[BonAchat](ctx, num, "Details")
}

func GetBonAchats(ctx context.Context, draNum *string) ([]*BonAchat, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Details")
	if draNum != nil && *draNum != "" {
		dbCtx = dbCtx.Where("dra_num = ?", *draNum)
	}
	var bas []*BonAchat
	if err := dbCtx.Order("document_date DESC").Find(&bas).Error; err != nil {
		return nil, err
	}
	return bas, nil
}
