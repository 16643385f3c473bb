package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/dra_backend/models"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
	"bitbucket.org/mmdatafocus/dra_backend/workflow"
)

func createDraHandler(c *gin.Context) {
	var input models.NewDra
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	ctx := utils.SetCenterIdInContext(c.Request.Context(), input.CenterId)
	dra, err := workflow.CreateDra(ctx, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dra)
}

func getDraHandler(c *gin.Context) {
	dra, err := models.GetDra(c.Request.Context(), c.Param("num"), "BonAchats.Details", "Factures.Details")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dra)
}

func listDrasHandler(c *gin.Context) {
	var centerId *int
	if v := c.Query("center_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid center_id filter"})
			return
		}
		centerId = &id
	}
	var state *models.DraState
	if v := c.Query("state"); v != "" {
		s := models.DraState(v)
		if !s.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state filter"})
			return
		}
		state = &s
	}
	dras, err := models.GetDras(c.Request.Context(), centerId, state)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dras)
}

type draTransitionRequest struct {
	State  models.DraState `json:"state" binding:"required"`
	Reason *string         `json:"reason"`
}

func transitionDraHandler(c *gin.Context) {
	var req draTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	dra, err := workflow.TransitionDra(c.Request.Context(), c.Param("num"), req.State, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dra)
}

func deleteDraHandler(c *gin.Context) {
	if err := workflow.DeleteDra(c.Request.Context(), c.Param("num")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
