package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/dra_backend/models"
	"bitbucket.org/mmdatafocus/dra_backend/workflow"
)

/* purchase orders */

func createBonAchatHandler(c *gin.Context) {
	var input models.NewDocument
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	ba, err := workflow.CreateBonAchat(c.Request.Context(), c.Param("num"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ba)
}

func listBonAchatsHandler(c *gin.Context) {
	draNum := c.Param("num")
	bas, err := models.GetBonAchats(c.Request.Context(), &draNum)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bas)
}

func getBonAchatHandler(c *gin.Context) {
	ba, err := models.GetBonAchat(c.Request.Context(), c.Param("docNum"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ba)
}

func updateBonAchatHandler(c *gin.Context) {
	var input models.NewDocument
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	ba, err := workflow.UpdateBonAchat(c.Request.Context(), c.Param("docNum"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ba)
}

func deleteBonAchatHandler(c *gin.Context) {
	if err := workflow.DeleteBonAchat(c.Request.Context(), c.Param("docNum")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* invoices */

func createFactureHandler(c *gin.Context) {
	var input models.NewDocument
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	f, err := workflow.CreateFacture(c.Request.Context(), c.Param("num"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func listFacturesHandler(c *gin.Context) {
	draNum := c.Param("num")
	factures, err := models.GetFactures(c.Request.Context(), &draNum)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, factures)
}

func getFactureHandler(c *gin.Context) {
	f, err := models.GetFacture(c.Request.Context(), c.Param("docNum"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func updateFactureHandler(c *gin.Context) {
	var input models.NewDocument
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	f, err := workflow.UpdateFacture(c.Request.Context(), c.Param("docNum"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func deleteFactureHandler(c *gin.Context) {
	if err := workflow.DeleteFacture(c.Request.Context(), c.Param("docNum")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
