package subscriptions

import (
	"errors"
	"net/http"

	"community-app/internal/domain/billing"
	"community-app/internal/domain/groups"
	"community-app/internal/infra/saga"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db   *gorm.DB
	book *Bookkeeper
	log  *zap.Logger
}

func NewHandler(db *gorm.DB, book *Bookkeeper, log *zap.Logger) *Handler {
	return &Handler{db: db, book: book, log: log}
}

// POST /api/subscriptions
//
// Enrolls an existing group the caller owns. Group creation runs the same
// steps inside its own saga.
func (h *Handler) Create(c *gin.Context) {
	ownerID := c.GetUint("user_id")
	if ownerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		GroupID uint `json:"group_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing group_id"})
		return
	}

	var group groups.Group
	if err := h.db.Where("id = ?", req.GroupID).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if group.OwnerID != ownerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the group owner"})
		return
	}
	if h.book.PlanID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Platform billing is not configured"})
		return
	}

	var sub *billing.Subscription
	sg := saga.New(h.log)
	sg.AddStep("create subscription record",
		func() error {
			var err error
			sub, err = h.book.CreateRecord(ownerID, group.ID)
			return err
		},
		func() error { return h.book.RemoveRecord(sub) },
	)
	sg.AddStep("enroll gateway subscription",
		func() error { return h.book.EnrollGateway(sub) },
		nil,
	)

	if err := sg.Execute(); err != nil {
		if errors.Is(err, ErrAlreadySubscribed) {
			c.JSON(http.StatusConflict, gin.H{"error": "Group already has a subscription"})
			return
		}
		h.log.Error("subscription enrollment failed",
			zap.Uint("group_id", group.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "subscription": sub})
}

// GET /api/subscriptions/:groupID
func (h *Handler) Get(c *gin.Context) {
	ownerID := c.GetUint("user_id")
	if ownerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var sub billing.Subscription
	if err := h.db.Where("group_id = ? AND owner_id = ?", c.Param("groupID"), ownerID).
		First(&sub).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}
	c.JSON(http.StatusOK, sub)
}
