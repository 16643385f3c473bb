package models

import (
	"log"

	"bitbucket.org/mmdatafocus/dra_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Center{},
		&Supplier{}, &CatalogItem{},
		&Dra{},
		&BonAchat{}, &BonAchatDetail{},
		&Facture{}, &FactureDetail{},
		&Remboursement{}, &Encaissement{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
