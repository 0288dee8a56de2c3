package plans

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"community-app/database"
	"community-app/internal/domain/billing"
	"community-app/internal/domain/groups"
	"community-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testOwnerID = uint(7)

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
		c.Set("user_id", testOwnerID)
		c.Set("role", "owner")
	})
	authed.GET("/api/groups/:id/pricing-plans", handler.List)
	authed.POST("/api/pricing-plans", handler.Create)
	authed.PUT("/api/pricing-plans/:id", handler.Update)
	authed.POST("/api/pricing-plans/:id/activate", handler.Activate)
	authed.DELETE("/api/pricing-plans/:id", handler.Delete)

	// Same handler under a second identity, for buyer-side reads.
	buyer := r.Group("/buyer", func(c *gin.Context) {
		c.Set("user_id", testOwnerID+1)
		c.Set("role", "user")
	})
	buyer.GET("/api/groups/:id/pricing-plans", handler.List)

	return db, r
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func activePlanIDs(t *testing.T, db *gorm.DB, ownerID uint) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, db.Model(&plans.PricingPlan{}).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Pluck("id", &ids).Error)
	return ids
}

func TestCreatePlanInactiveByDefault(t *testing.T) {
	db, r := setup(t)

	rec := do(t, r, http.MethodPost, "/api/pricing-plans", gin.H{"name": "Monthly", "price": 499})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var plan plans.PricingPlan
	require.NoError(t, db.First(&plan).Error)
	assert.False(t, plan.IsActive)
	assert.Equal(t, "INR", plan.Currency)
	assert.Equal(t, int64(49900), plan.AmountMinor())
}

func TestCreateActivePlanDeactivatesOthers(t *testing.T) {
	db, r := setup(t)

	first := do(t, r, http.MethodPost, "/api/pricing-plans", gin.H{"name": "Monthly", "price": 499, "is_active": true})
	require.Equal(t, http.StatusOK, first.Code)
	second := do(t, r, http.MethodPost, "/api/pricing-plans", gin.H{"name": "Yearly", "price": 4999, "is_active": true})
	require.Equal(t, http.StatusOK, second.Code)

	ids := activePlanIDs(t, db, testOwnerID)
	require.Len(t, ids, 1)

	var active plans.PricingPlan
	require.NoError(t, db.First(&active, ids[0]).Error)
	assert.Equal(t, "Yearly", active.Name)
}

func TestActivateIsExclusive(t *testing.T) {
	db, r := setup(t)

	seed := []plans.PricingPlan{
		{OwnerID: testOwnerID, Name: "A", Price: 100, Currency: "INR", IsActive: true},
		{OwnerID: testOwnerID, Name: "B", Price: 200, Currency: "INR"},
		{OwnerID: testOwnerID, Name: "C", Price: 300, Currency: "INR"},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	rec := do(t, r, http.MethodPost, fmt.Sprintf("/api/pricing-plans/%d/activate", seed[2].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	ids := activePlanIDs(t, db, testOwnerID)
	require.Len(t, ids, 1)
	assert.Equal(t, seed[2].ID, ids[0])
}

func TestActivateForeignPlanNotFound(t *testing.T) {
	db, r := setup(t)

	foreign := plans.PricingPlan{OwnerID: testOwnerID + 1, Name: "Other", Price: 100, Currency: "INR"}
	require.NoError(t, db.Create(&foreign).Error)

	rec := do(t, r, http.MethodPost, fmt.Sprintf("/api/pricing-plans/%d/activate", foreign.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateRejectsNonPositivePrice(t *testing.T) {
	db, r := setup(t)

	plan := plans.PricingPlan{OwnerID: testOwnerID, Name: "Monthly", Price: 499, Currency: "INR"}
	require.NoError(t, db.Create(&plan).Error)

	rec := do(t, r, http.MethodPut, fmt.Sprintf("/api/pricing-plans/%d", plan.ID), gin.H{"price": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteBlockedByPendingPayments(t *testing.T) {
	db, r := setup(t)

	plan := plans.PricingPlan{OwnerID: testOwnerID, Name: "Monthly", Price: 499, Currency: "INR"}
	require.NoError(t, db.Create(&plan).Error)
	require.NoError(t, db.Create(&billing.MemberPayment{
		UserID:          99,
		GroupID:         1,
		PlanID:          plan.ID,
		AmountMinor:     49900,
		Currency:        "INR",
		Status:          billing.PaymentPending,
		RazorpayOrderID: "order_pending",
	}).Error)

	rec := do(t, r, http.MethodDelete, fmt.Sprintf("/api/pricing-plans/%d", plan.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var count int64
	db.Model(&plans.PricingPlan{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestListShowsActivePlanToProspectiveBuyer(t *testing.T) {
	db, r := setup(t)

	group := groups.Group{OwnerID: testOwnerID, Name: "Yoga Circle", Slug: "yoga-circle"}
	require.NoError(t, db.Create(&group).Error)
	seed := []plans.PricingPlan{
		{OwnerID: testOwnerID, Name: "Monthly", Price: 499, Currency: "INR", IsActive: true},
		{OwnerID: testOwnerID, Name: "Draft", Price: 999, Currency: "INR"},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	rec := do(t, r, http.MethodGet, fmt.Sprintf("/buyer/api/groups/%d/pricing-plans", group.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var visible []plans.PricingPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &visible))
	require.Len(t, visible, 1)
	assert.Equal(t, "Monthly", visible[0].Name)
}

func TestListShowsAllPlansToGroupOwner(t *testing.T) {
	db, r := setup(t)

	group := groups.Group{OwnerID: testOwnerID, Name: "Yoga Circle", Slug: "yoga-circle"}
	require.NoError(t, db.Create(&group).Error)
	seed := []plans.PricingPlan{
		{OwnerID: testOwnerID, Name: "Monthly", Price: 499, Currency: "INR", IsActive: true},
		{OwnerID: testOwnerID, Name: "Draft", Price: 999, Currency: "INR"},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	rec := do(t, r, http.MethodGet, fmt.Sprintf("/api/groups/%d/pricing-plans", group.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var visible []plans.PricingPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &visible))
	assert.Len(t, visible, 2)
}

func TestListUnknownGroup(t *testing.T) {
	_, r := setup(t)

	rec := do(t, r, http.MethodGet, "/buyer/api/groups/42/pricing-plans", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUnusedPlan(t *testing.T) {
	db, r := setup(t)

	plan := plans.PricingPlan{OwnerID: testOwnerID, Name: "Monthly", Price: 499, Currency: "INR"}
	require.NoError(t, db.Create(&plan).Error)

	rec := do(t, r, http.MethodDelete, fmt.Sprintf("/api/pricing-plans/%d", plan.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	db.Model(&plans.PricingPlan{}).Count(&count)
	assert.Zero(t, count)
}
