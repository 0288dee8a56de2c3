package groups

import (
	"errors"
	"net/http"

	"community-app/internal/api/subscriptions"
	"community-app/internal/domain/access"
	"community-app/internal/domain/billing"
	"community-app/internal/domain/groups"
	"community-app/internal/domain/plans"
	"community-app/internal/infra/saga"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db   *gorm.DB
	book *subscriptions.Bookkeeper
	log  *zap.Logger
}

func NewHandler(db *gorm.DB, book *subscriptions.Bookkeeper, log *zap.Logger) *Handler {
	return &Handler{db: db, book: book, log: log}
}

// POST /api/groups
//
// Creating a group also enrolls the owner's platform subscription when
// billing is configured. The whole sequence is a saga: a downstream
// failure removes everything created before it.
func (h *Handler) Create(c *gin.Context) {
	ownerID := c.GetUint("user_id")
	if ownerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slug, err := groups.UniqueSlug(h.db, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate slug"})
		return
	}

	group := groups.Group{
		OwnerID:     ownerID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
	}

	var sub *billing.Subscription
	sg := saga.New(h.log)
	sg.AddStep("create group",
		func() error { return h.db.Create(&group).Error },
		func() error { return h.db.Delete(&group).Error },
	)
	if h.book.PlanID != "" {
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
	}

	if err := sg.Execute(); err != nil {
		h.log.Error("group creation failed", zap.String("slug", slug), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "group": group, "subscription": sub})
}

// GET /api/groups
func (h *Handler) List(c *gin.Context) {
	var list []groups.Group
	if err := h.db.Order("created_at DESC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load groups"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/groups/:id
func (h *Handler) Get(c *gin.Context) {
	var group groups.Group
	if err := h.db.Preload("Owner").Where("id = ?", c.Param("id")).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	c.JSON(http.StatusOK, group)
}

// POST /api/groups/:id/join
//
// Free join path; applies only when the owner has no active pricing plan.
func (h *Handler) Join(c *gin.Context) {
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
	if group.OwnerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Owners cannot join their own group"})
		return
	}

	var member groups.Member
	if err := h.db.Where("user_id = ? AND group_id = ?", userID, group.ID).First(&member).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already a member of this group"})
		return
	}

	var plan plans.PricingPlan
	err := h.db.Where("owner_id = ? AND is_active = ?", group.OwnerID, true).First(&plan).Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This group requires a paid membership"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check pricing"})
		return
	}

	if err := h.db.Create(&groups.Member{UserID: userID, GroupID: group.ID}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join group"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/groups/:id/members
func (h *Handler) Members(c *gin.Context) {
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	var group groups.Group
	if err := h.db.Where("id = ?", c.Param("id")).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	level, err := access.LevelFor(h.db, userID, role, &group)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return
	}
	if !level.CanView() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Membership required"})
		return
	}

	var members []groups.Member
	if err := h.db.Preload("User").Where("group_id = ?", group.ID).Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load members"})
		return
	}
	c.JSON(http.StatusOK, members)
}

// DELETE /api/groups/:id
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	var group groups.Group
	if err := h.db.Where("id = ?", c.Param("id")).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	level, err := access.LevelFor(h.db, userID, role, &group)
	if err != nil || !level.CanManage() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the group owner"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", group.ID).Delete(&groups.Member{}).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
