package models

import (
	"github.com/shopspring/decimal"
)

type CenterType string

const (
	CenterTypeA CenterType = "A"
	CenterTypeB CenterType = "B"
)

func (t CenterType) IsValid() bool {
	return t == CenterTypeA || t == CenterTypeB
}

type DraState string

const (
	DraStateActive     DraState = "Active"
	DraStateClosed     DraState = "Closed"
	DraStateRefused    DraState = "Refused"
	DraStateAccepted   DraState = "Accepted"
	DraStateReimbursed DraState = "Reimbursed"
)

func (s DraState) IsValid() bool {
	switch s {
	case DraStateActive, DraStateClosed, DraStateRefused, DraStateAccepted, DraStateReimbursed:
		return true
	}
	return false
}

type CatalogKind string

const (
	CatalogKindPiece      CatalogKind = "Piece"
	CatalogKindPrestation CatalogKind = "Prestation"
	CatalogKindCharge     CatalogKind = "Charge"
)

func (k CatalogKind) IsValid() bool {
	switch k {
	case CatalogKindPiece, CatalogKindPrestation, CatalogKindCharge:
		return true
	}
	return false
}

type RemboursementMethod string

const (
	RemboursementMethodCash  RemboursementMethod = "Cash"
	RemboursementMethodCheck RemboursementMethod = "Check"
)

func (m RemboursementMethod) IsValid() bool {
	return m == RemboursementMethodCash || m == RemboursementMethodCheck
}

// DocumentKind selects the per-kind rules (ceiling, allowed catalog kinds)
// so the ledger engine stays generic over purchase orders and invoices.
type DocumentKind string

const (
	DocumentKindBonAchat DocumentKind = "BonAchat"
	DocumentKindFacture  DocumentKind = "Facture"
)

func (k DocumentKind) Ceiling() decimal.Decimal {
	switch k {
	case DocumentKindBonAchat:
		return decimal.NewFromInt(10000)
	case DocumentKindFacture:
		return decimal.NewFromInt(20000)
	}
	return decimal.Zero
}

func (k DocumentKind) AllowsCatalogKind(c CatalogKind) bool {
	if k == DocumentKindBonAchat {
		return c == CatalogKindPiece
	}
	return c.IsValid()
}
