package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDocumentKindCeiling(t *testing.T) {
	if DocumentKindBonAchat.Ceiling().Cmp(decimal.NewFromInt(10000)) != 0 {
		t.Fatalf("purchase order ceiling: got %s", DocumentKindBonAchat.Ceiling())
	}
	if DocumentKindFacture.Ceiling().Cmp(decimal.NewFromInt(20000)) != 0 {
		t.Fatalf("invoice ceiling: got %s", DocumentKindFacture.Ceiling())
	}
}

func TestDocumentKindAllowsCatalogKind(t *testing.T) {
	if !DocumentKindBonAchat.AllowsCatalogKind(CatalogKindPiece) {
		t.Fatal("purchase orders must accept pieces")
	}
	if DocumentKindBonAchat.AllowsCatalogKind(CatalogKindPrestation) {
		t.Fatal("purchase orders must reject services")
	}
	if DocumentKindBonAchat.AllowsCatalogKind(CatalogKindCharge) {
		t.Fatal("purchase orders must reject charges")
	}
	for _, c := range []CatalogKind{CatalogKindPiece, CatalogKindPrestation, CatalogKindCharge} {
		if !DocumentKindFacture.AllowsCatalogKind(c) {
			t.Fatalf("invoices must accept %s", c)
		}
	}
	if DocumentKindFacture.AllowsCatalogKind(CatalogKind("Unknown")) {
		t.Fatal("invoices must reject unknown catalog kinds")
	}
}

func TestEnumValidity(t *testing.T) {
	if !DraStateActive.IsValid() || DraState("Draft").IsValid() {
		t.Fatal("folder state validity broken")
	}
	if !CenterTypeA.IsValid() || CenterType("C").IsValid() {
		t.Fatal("center type validity broken")
	}
	if !RemboursementMethodCheck.IsValid() || RemboursementMethod("Wire").IsValid() {
		t.Fatal("reimbursement method validity broken")
	}
}
