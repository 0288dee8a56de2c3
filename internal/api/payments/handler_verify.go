package payments

import (
	"fmt"
	"net/http"

	"community-app/internal/domain/billing"
	"community-app/internal/domain/groups"
	"community-app/internal/domain/notifications"
	"community-app/internal/domain/users"
	"community-app/internal/infra/razorpay"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// POST /api/member-payments/verify
//
// The single authoritative state transition of the payment flow. On a
// valid signature the PENDING payment becomes COMPLETED and the Members
// row plus the owner notification are created in the same transaction;
// they must never be observed separately.
func (h *Handler) Verify(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req struct {
		RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
		RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
		RazorpaySignature string `json:"razorpay_signature" binding:"required"`
		GroupID           uint   `json:"group_id" binding:"required"`
		PlanID            uint   `json:"plan_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing verification fields"})
		return
	}

	var payment billing.MemberPayment
	if err := h.db.Where("razorpay_order_id = ? AND user_id = ?", req.RazorpayOrderID, userID).
		First(&payment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	switch payment.Status {
	case billing.PaymentCompleted:
		// Replay of an already-verified callback; nothing left to do.
		c.JSON(http.StatusOK, gin.H{"success": true, "status": billing.PaymentCompleted})
		return
	case billing.PaymentFailed:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment already failed; start a new order"})
		return
	}

	if !razorpay.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, h.keySecret) {
		h.log.Warn("payment signature mismatch",
			zap.Uint("user_id", userID),
			zap.String("order_id", req.RazorpayOrderID))
		if err := h.db.Model(&payment).Updates(map[string]interface{}{
			"status":              billing.PaymentFailed,
			"razorpay_payment_id": req.RazorpayPaymentID,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment failure"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment signature"})
		return
	}

	// Defense against parameter tampering: the client's ids must match the
	// payment the order was created for. No state changes on mismatch.
	if payment.GroupID != req.GroupID || payment.PlanID != req.PlanID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment does not match this group or plan"})
		return
	}

	completed := map[string]interface{}{
		"status":              billing.PaymentCompleted,
		"razorpay_payment_id": req.RazorpayPaymentID,
		"razorpay_signature":  req.RazorpaySignature,
	}

	// Race with a concurrent successful payment: membership already
	// exists, so just close out this payment without a duplicate row.
	var existing groups.Member
	if err := h.db.Where("user_id = ? AND group_id = ?", userID, payment.GroupID).
		First(&existing).Error; err == nil {
		if err := h.db.Model(&payment).Updates(completed).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete payment"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": billing.PaymentCompleted})
		return
	}

	var group groups.Group
	if err := h.db.Where("id = ?", payment.GroupID).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	var buyer users.User
	if err := h.db.Where("id = ?", userID).First(&buyer).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&billing.MemberPayment{}).
			Where("id = ? AND status = ?", payment.ID, billing.PaymentPending).
			Updates(completed).Error; err != nil {
			return err
		}
		if err := tx.Create(&groups.Member{UserID: userID, GroupID: payment.GroupID}).Error; err != nil {
			return err
		}
		groupID := payment.GroupID
		return tx.Create(&notifications.Notification{
			UserID:  group.OwnerID,
			GroupID: &groupID,
			Type:    notifications.TypeMemberJoined,
			Message: fmt.Sprintf("%s joined %s", buyer.Name, group.Name),
		}).Error
	})
	if err != nil {
		h.log.Error("payment completion transaction failed",
			zap.Uint("payment_id", payment.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": billing.PaymentCompleted})
}
