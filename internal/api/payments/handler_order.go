package payments

import (
	"errors"
	"net/http"
	"regexp"

	"community-app/internal/domain/billing"
	"community-app/internal/domain/groups"
	"community-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// POST /api/member-payments/create-order
//
// Creates a gateway order for the group's active plan and persists a
// PENDING payment keyed by the gateway order id. All precondition
// failures are terminal; the client restarts the flow.
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req struct {
		GroupID uint   `json:"group_id" binding:"required"`
		Phone   string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing group_id or phone"})
		return
	}
	if !phonePattern.MatchString(req.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}

	var group groups.Group
	if err := h.db.Where("id = ?", req.GroupID).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if group.OwnerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Owners cannot buy membership to their own group"})
		return
	}

	var member groups.Member
	if err := h.db.Where("user_id = ? AND group_id = ?", userID, group.ID).First(&member).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already a member of this group"})
		return
	}

	var plan plans.PricingPlan
	if err := h.db.Where("owner_id = ? AND is_active = ?", group.OwnerID, true).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No active plan means the group is free; this path does not apply.
			c.JSON(http.StatusNotFound, gin.H{"error": "No active pricing plan for this group"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pricing plan"})
		return
	}

	var paid int64
	if err := h.db.Model(&billing.MemberPayment{}).
		Where("user_id = ? AND group_id = ? AND status = ?", userID, group.ID, billing.PaymentCompleted).
		Count(&paid).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check payment history"})
		return
	}
	if paid > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already paid for this group"})
		return
	}

	receipt := "rcpt_" + uuid.NewString()
	order, err := h.gateway.CreateOrder(plan.AmountMinor(), plan.Currency, receipt, map[string]interface{}{
		"user_id":  userID,
		"group_id": group.ID,
		"plan_id":  plan.ID,
	})
	if err != nil {
		h.log.Error("gateway order create failed",
			zap.Uint("user_id", userID),
			zap.Uint("group_id", group.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment order"})
		return
	}

	payment := billing.MemberPayment{
		UserID:          userID,
		GroupID:         group.ID,
		PlanID:          plan.ID,
		AmountMinor:     order.Amount,
		Currency:        order.Currency,
		Phone:           req.Phone,
		Status:          billing.PaymentPending,
		RazorpayOrderID: order.ID,
	}
	if err := h.db.Create(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"orderId":  order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"keyId":    h.keyID,
		"planId":   plan.ID,
	})
}
