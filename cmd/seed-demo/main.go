// seed-demo loads a small demo dataset: two centers, a petty-cash catalog
// and a handful of suppliers. Safe to rerun; existing rows are matched by
// name and left alone.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... REDIS_ADDRESS=... go run ./cmd/seed-demo
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/models"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	centers := []models.NewCenter{
		{Name: "Centre Nord", Address: "Zone industrielle Nord", Type: models.CenterTypeA, Threshold: decimal.NewFromInt(1000), AvailableFunds: decimal.NewFromInt(30000)},
		{Name: "Centre Sud", Address: "Zone industrielle Sud", Type: models.CenterTypeB, Threshold: decimal.NewFromInt(500), AvailableFunds: decimal.NewFromInt(15000)},
	}
	for i := range centers {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Center{}).Where("name = ?", centers[i].Name).Count(&count).Error; err != nil {
			fail("lookup center", err)
		}
		if count > 0 {
			continue
		}
		if _, err := models.CreateCenter(ctx, &centers[i]); err != nil {
			fail("create center", err)
		}
		fmt.Printf("Created center %q\n", centers[i].Name)
	}

	items := []models.NewCatalogItem{
		{Name: "Filtre a huile", Kind: models.CatalogKindPiece, UnitPrice: decimal.NewFromInt(45), TaxRate: decimal.NewFromInt(19)},
		{Name: "Plaquettes de frein", Kind: models.CatalogKindPiece, UnitPrice: decimal.NewFromInt(120), TaxRate: decimal.NewFromInt(19)},
		{Name: "Remorquage", Kind: models.CatalogKindPrestation, UnitPrice: decimal.NewFromInt(200), TaxRate: decimal.NewFromInt(9)},
		{Name: "Carburant", Kind: models.CatalogKindCharge, UnitPrice: decimal.NewFromInt(50), TaxRate: decimal.Zero},
	}
	for i := range items {
		var count int64
		if err := db.WithContext(ctx).Model(&models.CatalogItem{}).Where("name = ?", items[i].Name).Count(&count).Error; err != nil {
			fail("lookup catalog item", err)
		}
		if count > 0 {
			continue
		}
		if _, err := models.CreateCatalogItem(ctx, &items[i]); err != nil {
			fail("create catalog item", err)
		}
		fmt.Printf("Created catalog item %q\n", items[i].Name)
	}

	suppliers := []models.NewSupplier{
		{Name: "Pieces Auto SARL", Address: "Rue des ateliers 12"},
		{Name: "Garage Central", Address: "Avenue principale 3"},
	}
	for i := range suppliers {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Supplier{}).Where("name = ?", suppliers[i].Name).Count(&count).Error; err != nil {
			fail("lookup supplier", err)
		}
		if count > 0 {
			continue
		}
		if _, err := models.CreateSupplier(ctx, &suppliers[i]); err != nil {
			fail("create supplier", err)
		}
		fmt.Printf("Created supplier %q\n", suppliers[i].Name)
	}

	fmt.Println("Demo data ready")
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", step, err)
	os.Exit(1)
}
