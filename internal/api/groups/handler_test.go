package groups

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"community-app/database"
	"community-app/internal/api/subscriptions"
	"community-app/internal/domain/billing"
	"community-app/internal/domain/groups"
	"community-app/internal/domain/plans"
	"community-app/internal/domain/users"
	"community-app/internal/infra/razorpay"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type env struct {
	db      *gorm.DB
	gateway *razorpay.StubGateway
	router  *gin.Engine

	owner  *users.User
	member *users.User
}

func newEnv(t *testing.T, platformPlanID string) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	e := &env{db: db, gateway: razorpay.NewStubGateway()}

	e.owner = &users.User{Name: "Asha", Email: "owner@example.com", Role: users.RoleOwner}
	require.NoError(t, db.Create(e.owner).Error)
	e.member = &users.User{Name: "Ravi", Email: "member@example.com", Role: users.RoleUser}
	require.NoError(t, db.Create(e.member).Error)

	book := &subscriptions.Bookkeeper{
		DB:        db,
		Gateway:   e.gateway,
		PlanID:    platformPlanID,
		TrialDays: 14,
	}
	handler := NewHandler(db, book, zap.NewNop())

	e.router = gin.New()
	asOwner := e.router.Group("/", func(c *gin.Context) {
		c.Set("user_id", e.owner.ID)
		c.Set("role", e.owner.Role)
	})
	asOwner.POST("/api/groups", handler.Create)
	asOwner.DELETE("/api/groups/:id", handler.Delete)
	asOwner.GET("/api/groups/:id/members", handler.Members)

	asMember := e.router.Group("/member", func(c *gin.Context) {
		c.Set("user_id", e.member.ID)
		c.Set("role", e.member.Role)
	})
	asMember.POST("/api/groups/:id/join", handler.Join)
	asMember.GET("/api/groups/:id/members", handler.Members)

	return e
}

func (e *env) post(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateGroupWithoutBilling(t *testing.T) {
	e := newEnv(t, "")

	rec := e.post(t, "/api/groups", gin.H{"name": "Yoga Circle", "description": "Morning sessions"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var group groups.Group
	require.NoError(t, e.db.First(&group).Error)
	assert.Equal(t, "yoga-circle", group.Slug)
	assert.Equal(t, e.owner.ID, group.OwnerID)

	var subs int64
	e.db.Model(&billing.Subscription{}).Count(&subs)
	assert.Zero(t, subs)
}

func TestCreateGroupEnrollsTrialSubscription(t *testing.T) {
	e := newEnv(t, "plan_platform")

	rec := e.post(t, "/api/groups", gin.H{"name": "Yoga Circle"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sub billing.Subscription
	require.NoError(t, e.db.First(&sub).Error)
	assert.Equal(t, billing.SubscriptionTrialing, sub.Status)
	assert.Equal(t, "plan_platform", sub.RazorpayPlanID)
	require.NotNil(t, sub.TrialEnd)
	require.NotNil(t, sub.RazorpaySubscriptionID)
	assert.Equal(t, "sub_stub000001", *sub.RazorpaySubscriptionID)
	require.Len(t, e.gateway.Subscriptions, 1)
}

func TestCreateGroupRollsBackWhenGatewayFails(t *testing.T) {
	e := newEnv(t, "plan_platform")
	e.gateway.FailSubscriptions = true

	rec := e.post(t, "/api/groups", gin.H{"name": "Yoga Circle"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// Compensations remove everything the saga created before the failure.
	var groupCount, subCount int64
	e.db.Model(&groups.Group{}).Count(&groupCount)
	e.db.Model(&billing.Subscription{}).Count(&subCount)
	assert.Zero(t, groupCount)
	assert.Zero(t, subCount)
}

func TestSlugCollisionGetsSuffix(t *testing.T) {
	e := newEnv(t, "")

	require.Equal(t, http.StatusOK, e.post(t, "/api/groups", gin.H{"name": "Yoga Circle"}).Code)
	require.Equal(t, http.StatusOK, e.post(t, "/api/groups", gin.H{"name": "Yoga Circle"}).Code)

	var slugs []string
	require.NoError(t, e.db.Model(&groups.Group{}).Order("id ASC").Pluck("slug", &slugs).Error)
	require.Len(t, slugs, 2)
	assert.Equal(t, "yoga-circle", slugs[0])
	assert.NotEqual(t, slugs[0], slugs[1])
}

func TestJoinFreeGroup(t *testing.T) {
	e := newEnv(t, "")
	group := &groups.Group{OwnerID: e.owner.ID, Name: "Book Club", Slug: "book-club"}
	require.NoError(t, e.db.Create(group).Error)

	rec := e.post(t, fmt.Sprintf("/member/api/groups/%d/join", group.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var member groups.Member
	require.NoError(t, e.db.Where("user_id = ? AND group_id = ?", e.member.ID, group.ID).First(&member).Error)

	// Joining twice is rejected.
	again := e.post(t, fmt.Sprintf("/member/api/groups/%d/join", group.ID), nil)
	assert.Equal(t, http.StatusBadRequest, again.Code)
}

func TestJoinPaidGroupRequiresPayment(t *testing.T) {
	e := newEnv(t, "")
	group := &groups.Group{OwnerID: e.owner.ID, Name: "Book Club", Slug: "book-club"}
	require.NoError(t, e.db.Create(group).Error)
	require.NoError(t, e.db.Create(&plans.PricingPlan{
		OwnerID: e.owner.ID, Name: "Monthly", Price: 499, Currency: "INR", IsActive: true,
	}).Error)

	rec := e.post(t, fmt.Sprintf("/member/api/groups/%d/join", group.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "paid membership")

	var members int64
	e.db.Model(&groups.Member{}).Count(&members)
	assert.Zero(t, members)
}

func TestMembersVisibleToMembersOnly(t *testing.T) {
	e := newEnv(t, "")
	group := &groups.Group{OwnerID: e.owner.ID, Name: "Book Club", Slug: "book-club"}
	require.NoError(t, e.db.Create(group).Error)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/member/api/groups/%d/members", group.ID), nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	require.NoError(t, e.db.Create(&groups.Member{UserID: e.member.ID, GroupID: group.ID}).Error)

	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteGroupRemovesMembers(t *testing.T) {
	e := newEnv(t, "")
	group := &groups.Group{OwnerID: e.owner.ID, Name: "Book Club", Slug: "book-club"}
	require.NoError(t, e.db.Create(group).Error)
	require.NoError(t, e.db.Create(&groups.Member{UserID: e.member.ID, GroupID: group.ID}).Error)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/groups/%d", group.ID), nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var groupCount, memberCount int64
	e.db.Model(&groups.Group{}).Count(&groupCount)
	e.db.Model(&groups.Member{}).Count(&memberCount)
	assert.Zero(t, groupCount)
	assert.Zero(t, memberCount)
}
