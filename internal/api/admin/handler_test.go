package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"community-app/database"
	"community-app/internal/domain/notifications"
	"community-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingMailer captures outgoing mail for assertions.
type recordingMailer struct {
	tempPasswordTo string
	tempPassword   string
	validHours     int
}

func (m *recordingMailer) SendVerificationEmail(to, link string) error { return nil }
func (m *recordingMailer) SendPasswordReset(to, link string) error     { return nil }
func (m *recordingMailer) SendTemporaryPassword(to, password string, validHours int) error {
	m.tempPasswordTo = to
	m.tempPassword = password
	m.validHours = validHours
	return nil
}

func setup(t *testing.T) (*gorm.DB, *gin.Engine, *recordingMailer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	mailer := &recordingMailer{}
	handler := NewHandler(db, mailer, zap.NewNop())

	r := gin.New()
	admin := r.Group("/admin", func(c *gin.Context) {
		c.Set("user_id", uint(1))
		c.Set("role", users.RoleAdmin)
	})
	admin.GET("/dashboard", handler.Dashboard)
	admin.GET("/owner-applications", handler.ListOwnerApplications)
	admin.POST("/owner-applications/:id/review", handler.ReviewOwnerApplication)

	return db, r, mailer
}

func seedApplication(t *testing.T, db *gorm.DB) (*users.User, *users.OwnerApplication) {
	t.Helper()
	pw := "irrelevant"
	user := &users.User{
		Name:         "Ravi",
		Email:        "ravi@example.com",
		Password:     &pw,
		AuthProvider: "local",
		Role:         users.RoleUser,
		IsVerified:   true,
	}
	require.NoError(t, db.Create(user).Error)

	app := &users.OwnerApplication{
		UserID:     user.ID,
		Motivation: "I run a yoga studio",
		Status:     users.ApplicationPending,
	}
	require.NoError(t, db.Create(app).Error)
	return user, app
}

func review(t *testing.T, r *gin.Engine, appID uint, approve bool) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(gin.H{"approve": approve})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/admin/owner-applications/%d/review", appID), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestApproveApplicationPromotesUser(t *testing.T) {
	db, r, mailer := setup(t)
	user, app := seedApplication(t, db)

	rec := review(t, r, app.ID, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updatedApp users.OwnerApplication
	require.NoError(t, db.First(&updatedApp, app.ID).Error)
	assert.Equal(t, users.ApplicationApproved, updatedApp.Status)
	require.NotNil(t, updatedApp.ReviewedAt)

	var updatedUser users.User
	require.NoError(t, db.First(&updatedUser, user.ID).Error)
	assert.Equal(t, users.RoleOwner, updatedUser.Role)
	assert.True(t, updatedUser.MustChangePassword)
	require.NotNil(t, updatedUser.TempPasswordExpiresAt)

	// The emailed temporary password matches the stored hash.
	assert.Equal(t, user.Email, mailer.tempPasswordTo)
	assert.Equal(t, tempPasswordValidHours, mailer.validHours)
	require.NotNil(t, updatedUser.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(*updatedUser.Password), []byte(mailer.tempPassword)))

	var note notifications.Notification
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&note).Error)
	assert.Equal(t, notifications.TypeOwnerApproved, note.Type)
}

func TestRejectApplicationLeavesUserUntouched(t *testing.T) {
	db, r, mailer := setup(t)
	user, app := seedApplication(t, db)

	rec := review(t, r, app.ID, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var updatedApp users.OwnerApplication
	require.NoError(t, db.First(&updatedApp, app.ID).Error)
	assert.Equal(t, users.ApplicationRejected, updatedApp.Status)

	var updatedUser users.User
	require.NoError(t, db.First(&updatedUser, user.ID).Error)
	assert.Equal(t, users.RoleUser, updatedUser.Role)
	assert.False(t, updatedUser.MustChangePassword)
	assert.Empty(t, mailer.tempPasswordTo)
}

func TestReviewIsSingleShot(t *testing.T) {
	db, r, _ := setup(t)
	_, app := seedApplication(t, db)

	require.Equal(t, http.StatusOK, review(t, r, app.ID, true).Code)
	assert.Equal(t, http.StatusConflict, review(t, r, app.ID, false).Code)
}

func TestReviewUnknownApplication(t *testing.T) {
	_, r, _ := setup(t)
	rec := review(t, r, 999, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardCounts(t *testing.T) {
	db, r, _ := setup(t)
	seedApplication(t, db)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Users               int64 `json:"users"`
		PendingApplications int64 `json:"pending_applications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Users)
	assert.Equal(t, int64(1), resp.PendingApplications)
}
