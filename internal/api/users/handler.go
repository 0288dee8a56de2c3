package users

import (
	"net/http"

	"community-app/internal/domain/billing"
	"community-app/internal/domain/groups"
	"community-app/internal/domain/users"

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

type meResponse struct {
	ID                 uint            `json:"id"`
	Name               string          `json:"name"`
	Lastname           string          `json:"lastname"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone"`
	Role               string          `json:"role"`
	IsVerified         bool            `json:"is_verified"`
	MustChangePassword bool            `json:"must_change_password"`
	OwnedGroups        []groups.Group  `json:"owned_groups"`
	Memberships        []groups.Member `json:"memberships"`

	Subscriptions []billing.Subscription `json:"subscriptions,omitempty"`
}

// GET /me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	resp := meResponse{
		ID:                 user.ID,
		Name:               user.Name,
		Lastname:           user.Lastname,
		Email:              user.Email,
		Phone:              user.Phone,
		Role:               user.Role,
		IsVerified:         user.IsVerified,
		MustChangePassword: user.MustChangePassword,
	}

	if err := h.db.Where("owner_id = ?", userID).Find(&resp.OwnedGroups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load groups"})
		return
	}
	if err := h.db.Preload("Group").Where("user_id = ?", userID).Find(&resp.Memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load memberships"})
		return
	}
	if user.Role == users.RoleOwner {
		if err := h.db.Where("owner_id = ?", userID).Find(&resp.Subscriptions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscriptions"})
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}
