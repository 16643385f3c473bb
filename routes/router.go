package routes

import "github.com/gin-gonic/gin"

// Register wires all API routes onto the engine.
func Register(r *gin.Engine) {
	api := r.Group("/api/v1")

	centers := api.Group("/centers")
	{
		centers.POST("", createCenterHandler)
		centers.GET("", listCentersHandler)
		centers.GET("/:id", getCenterHandler)
		centers.PUT("/:id", updateCenterHandler)
	}

	catalogItems := api.Group("/catalog-items")
	{
		catalogItems.POST("", createCatalogItemHandler)
		catalogItems.GET("", listCatalogItemsHandler)
		catalogItems.PUT("/:id", updateCatalogItemHandler)
	}

	suppliers := api.Group("/suppliers")
	{
		suppliers.POST("", createSupplierHandler)
		suppliers.GET("", listSuppliersHandler)
		suppliers.PUT("/:id", updateSupplierHandler)
	}

	dras := api.Group("/dras")
	{
		dras.POST("", createDraHandler)
		dras.GET("", listDrasHandler)
		dras.GET("/:num", getDraHandler)
		dras.POST("/:num/transition", transitionDraHandler)
		dras.DELETE("/:num", deleteDraHandler)

		dras.POST("/:num/bon-achats", createBonAchatHandler)
		dras.GET("/:num/bon-achats", listBonAchatsHandler)
		dras.GET("/:num/bon-achats/:docNum", getBonAchatHandler)
		dras.PUT("/:num/bon-achats/:docNum", updateBonAchatHandler)
		dras.DELETE("/:num/bon-achats/:docNum", deleteBonAchatHandler)

		dras.POST("/:num/factures", createFactureHandler)
		dras.GET("/:num/factures", listFacturesHandler)
		dras.GET("/:num/factures/:docNum", getFactureHandler)
		dras.PUT("/:num/factures/:docNum", updateFactureHandler)
		dras.DELETE("/:num/factures/:docNum", deleteFactureHandler)

		dras.POST("/:num/remboursement", createRemboursementHandler)
		dras.GET("/:num/remboursement", getRemboursementHandler)
	}

	remboursements := api.Group("/remboursements")
	{
		remboursements.POST("/:id/encaissements", createEncaissementHandler)
		remboursements.DELETE("/:id/encaissements/:centerId", deleteEncaissementHandler)
	}
}
