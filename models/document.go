package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
	"github.com/shopspring/decimal"
)

// Document is what the ledger workflow needs to know about a purchase order
// or invoice without caring which one it is.
type Document interface {
	GetKind() DocumentKind
	GetNum() string
	GetDraNum() string
	GetTotalAmount() decimal.Decimal
}

// NewDocument is the shared input for creating/updating purchase orders and
// invoices; the route decides the kind. StampDuty must be zero for purchase
// orders.
type NewDocument struct {
	Num          string             `json:"num" binding:"required"`
	SupplierId   int                `json:"supplier_id" binding:"required"`
	DocumentDate time.Time          `json:"document_date" binding:"required"`
	StampDuty    decimal.Decimal    `json:"stamp_duty"`
	Details      []*NewDocumentItem `json:"details" binding:"required"`
}

type NewDocumentItem struct {
	CatalogItemId int             `json:"catalog_item_id" binding:"required"`
	Qty           decimal.Decimal `json:"qty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

// DocumentLine carries a validated line with price and tax rate captured at
// attachment time; documents of both kinds are built from these.
type DocumentLine struct {
	CatalogItemId int
	CatalogKind   CatalogKind
	Qty           decimal.Decimal
	UnitPrice     decimal.Decimal
	TaxRate       decimal.Decimal
}

func (l DocumentLine) LineTotal() decimal.Decimal {
	return utils.CalculateLineTotal(l.UnitPrice, l.Qty, l.TaxRate)
}

// Validate rejects malformed input before any transaction starts.
func (input *NewDocument) Validate(ctx context.Context, kind DocumentKind) error {
	if err := utils.ValidateResourceId[Supplier](ctx, input.SupplierId); err != nil {
		return errors.New("supplier not found")
	}
	if input.StampDuty.IsNegative() {
		return errors.New("stamp duty cannot be negative")
	}
	if kind == DocumentKindBonAchat && !input.StampDuty.IsZero() {
		return errors.New("stamp duty applies to invoices only")
	}
	if len(input.Details) == 0 {
		return errors.New("at least one line item is required")
	}
	seen := make(map[int]bool)
	for _, item := range input.Details {
		if item.Qty.LessThan(decimal.NewFromInt(1)) {
			return errors.New("line item qty must be at least 1")
		}
		if item.UnitPrice.IsNegative() {
			return errors.New("line item unit price cannot be negative")
		}
		if seen[item.CatalogItemId] {
			return fmt.Errorf("catalog item %d appears more than once", item.CatalogItemId)
		}
		seen[item.CatalogItemId] = true
	}
	return nil
}

// BuildDocumentLines resolves catalog items, enforces the kind's allowed
// catalog kinds and snapshots tax rates onto the lines.
func (input *NewDocument) BuildDocumentLines(ctx context.Context, kind DocumentKind) ([]DocumentLine, error) {
	db := config.GetDB()
	lines := make([]DocumentLine, 0, len(input.Details))
	for _, item := range input.Details {
		var catalogItem CatalogItem
		if err := db.WithContext(ctx).First(&catalogItem, item.CatalogItemId).Error; err != nil {
			return nil, fmt.Errorf("catalog item %d not found", item.CatalogItemId)
		}
		if !kind.AllowsCatalogKind(catalogItem.Kind) {
			return nil, fmt.Errorf("catalog item %d (%s) is not allowed on a %s", catalogItem.ID, catalogItem.Kind, kind)
		}
		lines = append(lines, DocumentLine{
			CatalogItemId: catalogItem.ID,
			CatalogKind:   catalogItem.Kind,
			Qty:           item.Qty,
			UnitPrice:     item.UnitPrice,
			TaxRate:       catalogItem.TaxRate,
		})
	}
	return lines, nil
}

func documentLineTotals(lines []DocumentLine) []decimal.Decimal {
	totals := make([]decimal.Decimal, 0, len(lines))
	for _, l := range lines {
		totals = append(totals, l.LineTotal())
	}
	return totals
}
