package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/dra_backend/models"
)

func createCenterHandler(c *gin.Context) {
	var input models.NewCenter
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	center, err := models.CreateCenter(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, center)
}

func updateCenterHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid center id"})
		return
	}
	var input models.NewCenter
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	center, err := models.UpdateCenter(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, center)
}

func getCenterHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid center id"})
		return
	}
	center, err := models.GetCenter(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, center)
}

func listCentersHandler(c *gin.Context) {
	centers, err := models.GetCenters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, centers)
}
