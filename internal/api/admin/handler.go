package admin

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"community-app/internal/domain/billing"
	"community-app/internal/domain/groups"
	"community-app/internal/domain/notifications"
	"community-app/internal/domain/users"
	"community-app/internal/infra/mail"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tempPasswordValidHours = 48

type Handler struct {
	db     *gorm.DB
	mailer mail.Mailer
	log    *zap.Logger
}

func NewHandler(db *gorm.DB, mailer mail.Mailer, log *zap.Logger) *Handler {
	return &Handler{db: db, mailer: mailer, log: log}
}

// GET /admin/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	var userCount, groupCount, memberCount, pendingApps int64
	h.db.Model(&users.User{}).Count(&userCount)
	h.db.Model(&groups.Group{}).Count(&groupCount)
	h.db.Model(&groups.Member{}).Count(&memberCount)
	h.db.Model(&users.OwnerApplication{}).
		Where("status = ?", users.ApplicationPending).
		Count(&pendingApps)

	var revenueMinor int64
	h.db.Model(&billing.MemberPayment{}).
		Where("status = ?", billing.PaymentCompleted).
		Select("COALESCE(SUM(amount_minor), 0)").
		Scan(&revenueMinor)

	c.JSON(http.StatusOK, gin.H{
		"users":                userCount,
		"groups":               groupCount,
		"members":              memberCount,
		"pending_applications": pendingApps,
		"revenue_minor":        revenueMinor,
	})
}

// GET /admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	var list []users.User
	if err := h.db.Order("created_at DESC").Limit(500).Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	type row struct {
		ID         uint      `json:"id"`
		Name       string    `json:"name"`
		Lastname   string    `json:"lastname"`
		Email      string    `json:"email"`
		Role       string    `json:"role"`
		IsVerified bool      `json:"is_verified"`
		CreatedAt  time.Time `json:"created_at"`
	}
	out := make([]row, 0, len(list))
	for _, u := range list {
		out = append(out, row{
			ID:         u.ID,
			Name:       u.Name,
			Lastname:   u.Lastname,
			Email:      u.Email,
			Role:       u.Role,
			IsVerified: u.IsVerified,
			CreatedAt:  u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GET /admin/payments
func (h *Handler) ListPayments(c *gin.Context) {
	var list []billing.MemberPayment
	if err := h.db.Preload("Group").Preload("Plan").
		Order("created_at DESC").
		Limit(500).
		Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /admin/owner-applications?status=PENDING
func (h *Handler) ListOwnerApplications(c *gin.Context) {
	q := h.db.Preload("User").Order("created_at ASC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var list []users.OwnerApplication
	if err := q.Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load applications"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /admin/owner-applications/:id/review
//
// Approval promotes the applicant to owner and issues a temporary
// password valid for 48 hours. The user must change it on first login.
func (h *Handler) ReviewOwnerApplication(c *gin.Context) {
	adminID := c.GetUint("user_id")

	var req struct {
		Approve bool `json:"approve"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var app users.OwnerApplication
	if err := h.db.Preload("User").Where("id = ?", c.Param("id")).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if app.Status != users.ApplicationPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Application already reviewed"})
		return
	}

	now := time.Now()

	if !req.Approve {
		err := h.db.Model(&app).Updates(map[string]interface{}{
			"status":      users.ApplicationRejected,
			"reviewed_by": adminID,
			"reviewed_at": now,
		}).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": users.ApplicationRejected})
		return
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate password"})
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate password"})
		return
	}

	expires := now.Add(tempPasswordValidHours * time.Hour)
	hashedStr := string(hashed)

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&users.OwnerApplication{}).
			Where("id = ? AND status = ?", app.ID, users.ApplicationPending).
			Updates(map[string]interface{}{
				"status":      users.ApplicationApproved,
				"reviewed_by": adminID,
				"reviewed_at": now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&users.User{}).
			Where("id = ?", app.UserID).
			Updates(map[string]interface{}{
				"role":                     users.RoleOwner,
				"password":                 hashedStr,
				"must_change_password":     true,
				"temp_password_expires_at": expires,
			}).Error; err != nil {
			return err
		}

		notification := notifications.Notification{
			UserID:  app.UserID,
			Type:    notifications.TypeOwnerApproved,
			Message: "Your owner application was approved. Check your email for a temporary password.",
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve application"})
		return
	}

	if err := h.mailer.SendTemporaryPassword(app.User.Email, tempPassword, tempPasswordValidHours); err != nil {
		// The approval stands; the admin can re-trigger delivery manually.
		h.log.Error("failed to send temporary password email",
			zap.Uint("user_id", app.UserID),
			zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": users.ApplicationApproved})
}

func generateTempPassword() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate temp password: %w", err)
	}
	// 18 hex chars plus a fixed suffix so the result passes the same
	// strength checks applied to user-chosen passwords.
	return hex.EncodeToString(buf) + "!A", nil
}
