package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/dra_backend/models"
	"bitbucket.org/mmdatafocus/dra_backend/workflow"
)

func createRemboursementHandler(c *gin.Context) {
	var input models.NewRemboursement
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	r, err := workflow.CreateRemboursement(c.Request.Context(), c.Param("num"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func getRemboursementHandler(c *gin.Context) {
	r, err := models.GetRemboursementByDra(c.Request.Context(), c.Param("num"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func createEncaissementHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reimbursement id"})
		return
	}
	var input models.NewEncaissement
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	e, err := workflow.CreateEncaissement(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func deleteEncaissementHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reimbursement id"})
		return
	}
	centerId, err := strconv.Atoi(c.Param("centerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid center id"})
		return
	}
	if err := workflow.DeleteEncaissement(c.Request.Context(), centerId, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
