package plans

import (
	"net/http"

	"community-app/internal/domain/billing"
	"community-app/internal/domain/groups"
	"community-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{db: db, log: log}
}

// GET /api/groups/:id/pricing-plans
//
// Lists the plans of the group's owner so a prospective buyer can see the
// price before ordering. The owner sees every plan; everyone else sees
// only the active one.
func (h *Handler) List(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var group groups.Group
	if err := h.db.Where("id = ?", c.Param("id")).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	q := h.db.Where("owner_id = ?", group.OwnerID)
	if group.OwnerID != userID {
		q = q.Where("is_active = ?", true)
	}

	var list []plans.PricingPlan
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plans"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/pricing-plans
func (h *Handler) Create(c *gin.Context) {
	ownerID := c.GetUint("user_id")
	if ownerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Name     string  `json:"name" binding:"required"`
		Price    float64 `json:"price" binding:"required"`
		Currency string  `json:"currency"`
		IsActive bool    `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be positive"})
		return
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}

	plan := plans.PricingPlan{
		OwnerID:  ownerID,
		Name:     req.Name,
		Price:    req.Price,
		Currency: req.Currency,
	}

	// Creation and the single-active invariant commit together.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}
		if req.IsActive {
			return activateWithin(tx, ownerID, plan.ID)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create plan"})
		return
	}
	plan.IsActive = req.IsActive

	c.JSON(http.StatusOK, gin.H{"success": true, "plan": plan})
}

// PUT /api/pricing-plans/:id
func (h *Handler) Update(c *gin.Context) {
	ownerID := c.GetUint("user_id")
	plan, ok := h.ownPlan(c, ownerID)
	if !ok {
		return
	}

	var req struct {
		Name     *string  `json:"name"`
		Price    *float64 `json:"price"`
		Currency *string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be positive"})
			return
		}
		updates["price"] = *req.Price
	}
	if req.Currency != nil {
		updates["currency"] = *req.Currency
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := h.db.Model(&plan).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update plan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "plan": plan})
}

// POST /api/pricing-plans/:id/activate
//
// Deactivate-others and activate-this run in one transaction so an
// owner always ends up with exactly one active plan.
func (h *Handler) Activate(c *gin.Context) {
	ownerID := c.GetUint("user_id")
	plan, ok := h.ownPlan(c, ownerID)
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		return activateWithin(tx, ownerID, plan.ID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DELETE /api/pricing-plans/:id
func (h *Handler) Delete(c *gin.Context) {
	ownerID := c.GetUint("user_id")
	plan, ok := h.ownPlan(c, ownerID)
	if !ok {
		return
	}

	var pending int64
	if err := h.db.Model(&billing.MemberPayment{}).
		Where("plan_id = ? AND status = ?", plan.ID, billing.PaymentPending).
		Count(&pending).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check plan usage"})
		return
	}
	if pending > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Plan has pending payments"})
		return
	}

	if err := h.db.Delete(&plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete plan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ownPlan(c *gin.Context, ownerID uint) (plans.PricingPlan, bool) {
	var plan plans.PricingPlan
	if ownerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return plan, false
	}
	if err := h.db.Where("id = ? AND owner_id = ?", c.Param("id"), ownerID).First(&plan).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return plan, false
	}
	return plan, true
}

func activateWithin(tx *gorm.DB, ownerID, planID uint) error {
	if err := tx.Model(&plans.PricingPlan{}).
		Where("owner_id = ? AND id <> ?", ownerID, planID).
		Update("is_active", false).Error; err != nil {
		return err
	}
	return tx.Model(&plans.PricingPlan{}).
		Where("id = ?", planID).
		Update("is_active", true).Error
}
