package notifications

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"community-app/database"
	"community-app/internal/domain/notifications"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testUserID = uint(5)

func setup(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	handler := NewHandler(db, zap.NewNop())

	r := gin.New()
	authed := r.Group("/", func(c *gin.Context) {
		c.Set("user_id", testUserID)
	})
	authed.GET("/api/notifications", handler.List)
	authed.POST("/api/notifications/:id/read", handler.MarkRead)

	return db, r
}

func TestListReturnsOwnNotifications(t *testing.T) {
	db, r := setup(t)

	mine := notifications.Notification{UserID: testUserID, Type: notifications.TypeMemberJoined, Message: "Ravi joined Yoga Circle"}
	require.NoError(t, db.Create(&mine).Error)
	other := notifications.Notification{UserID: testUserID + 1, Type: notifications.TypeMemberJoined, Message: "not yours"}
	require.NoError(t, db.Create(&other).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []notifications.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, mine.Message, list[0].Message)
	assert.False(t, list[0].Read)
}

func TestMarkRead(t *testing.T) {
	db, r := setup(t)

	note := notifications.Notification{UserID: testUserID, Type: notifications.TypeMemberJoined, Message: "m"}
	require.NoError(t, db.Create(&note).Error)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", note.ID), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated notifications.Notification
	require.NoError(t, db.First(&updated, note.ID).Error)
	assert.True(t, updated.Read)
}

func TestMarkReadForeignNotification(t *testing.T) {
	db, r := setup(t)

	note := notifications.Notification{UserID: testUserID + 1, Type: notifications.TypeMemberJoined, Message: "m"}
	require.NoError(t, db.Create(&note).Error)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", note.ID), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var updated notifications.Notification
	require.NoError(t, db.First(&updated, note.ID).Error)
	assert.False(t, updated.Read)
}
