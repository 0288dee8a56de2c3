package auth

import (
	"net/http"

	"community-app/internal/domain/users"

	"github.com/gin-gonic/gin"
)

// POST /api/owner-applications (authenticated)
func (h *Handler) ApplyForOwner(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if c.GetString("role") == users.RoleOwner {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already an owner"})
		return
	}

	var input struct {
		Motivation string `json:"motivation" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing users.OwnerApplication
	if err := h.db.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Application already submitted", "status": existing.Status})
		return
	}

	app := users.OwnerApplication{
		UserID:     userID,
		Motivation: input.Motivation,
		Status:     users.ApplicationPending,
	}
	if err := h.db.Create(&app).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "application": app})
}

// GET /api/owner-applications/me
func (h *Handler) MyOwnerApplication(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var app users.OwnerApplication
	if err := h.db.Where("user_id = ?", userID).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No application found"})
		return
	}
	c.JSON(http.StatusOK, app)
}
