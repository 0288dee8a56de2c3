package payments

import (
	"net/http"

	"community-app/internal/infra/razorpay"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db        *gorm.DB
	gateway   razorpay.Gateway
	keyID     string
	keySecret string
	log       *zap.Logger
}

func NewHandler(db *gorm.DB, gateway razorpay.Gateway, keyID, keySecret string, log *zap.Logger) *Handler {
	return &Handler{db: db, gateway: gateway, keyID: keyID, keySecret: keySecret, log: log}
}

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}
