package payments

import (
	"net/http"

	"community-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// GET /api/member-payments
func (h *Handler) History(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var payments []billing.MemberPayment
	if err := h.db.
		Preload("Plan").
		Preload("Group").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}
