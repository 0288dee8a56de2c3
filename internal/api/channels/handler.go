package channels

import (
	"net/http"
	"strconv"
	"time"

	"community-app/internal/domain/access"
	"community-app/internal/domain/chat"
	"community-app/internal/domain/groups"
	"community-app/internal/domain/users"
	ws "community-app/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db  *gorm.DB
	hub *ws.Hub
	log *zap.Logger
}

func NewHandler(db *gorm.DB, hub *ws.Hub, log *zap.Logger) *Handler {
	return &Handler{db: db, hub: hub, log: log}
}

// POST /api/groups/:id/channels
func (h *Handler) Create(c *gin.Context) {
	group, level, ok := h.groupAccess(c)
	if !ok {
		return
	}
	if !level.CanManage() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the group owner"})
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel := chat.Channel{
		GroupID:   group.ID,
		Name:      req.Name,
		CreatedBy: c.GetUint("user_id"),
	}
	if err := h.db.Create(&channel).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Channel name already taken"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "channel": channel})
}

// GET /api/groups/:id/channels
func (h *Handler) List(c *gin.Context) {
	group, level, ok := h.groupAccess(c)
	if !ok {
		return
	}
	if !level.CanView() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Membership required"})
		return
	}

	var list []chat.Channel
	if err := h.db.Where("group_id = ?", group.ID).Order("created_at ASC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load channels"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/channels/:id/messages?limit=50&before_id=...
func (h *Handler) Messages(c *gin.Context) {
	channel, level, ok := h.channelAccess(c)
	if !ok {
		return
	}
	if !level.CanView() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Membership required"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}

	q := h.db.Preload("Sender").Where("channel_id = ?", channel.ID)
	if beforeID := c.Query("before_id"); beforeID != "" {
		q = q.Where("id < ?", beforeID)
	}

	var messages []chat.Message
	if err := q.Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

// POST /api/channels/:id/messages
func (h *Handler) PostMessage(c *gin.Context) {
	channel, level, ok := h.channelAccess(c)
	if !ok {
		return
	}
	if !level.CanView() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Membership required"})
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("user_id")
	message := chat.Message{
		ChannelID: channel.ID,
		SenderID:  userID,
		Body:      req.Body,
	}
	if err := h.db.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}

	h.fanOutChannelMessage(channel, &message)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// POST /api/direct-messages
func (h *Handler) SendDirect(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		RecipientID uint   `json:"recipient_id" binding:"required"`
		Body        string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RecipientID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot message yourself"})
		return
	}

	var recipient users.User
	if err := h.db.Where("id = ?", req.RecipientID).First(&recipient).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
		return
	}

	shared, err := h.shareGroup(userID, req.RecipientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
		return
	}
	if !shared {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only message members of your groups"})
		return
	}

	dm := chat.DirectMessage{
		SenderID:    userID,
		RecipientID: req.RecipientID,
		Body:        req.Body,
	}
	if err := h.db.Create(&dm).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}

	h.hub.Deliver([]uint{req.RecipientID}, ws.Event{
		Type:     "direct_message",
		SenderID: userID,
		Body:     dm.Body,
		SentAt:   dm.CreatedAt,
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "message": dm})
}

// GET /api/direct-messages/:userID
func (h *Handler) DirectHistory(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	otherID, err := strconv.ParseUint(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var messages []chat.DirectMessage
	if err := h.db.
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, otherID, otherID, userID).
		Order("id ASC").
		Limit(200).
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}

	// Mark the other side's messages as read.
	now := time.Now()
	h.db.Model(&chat.DirectMessage{}).
		Where("sender_id = ? AND recipient_id = ? AND read_at IS NULL", otherID, userID).
		Update("read_at", now)

	c.JSON(http.StatusOK, messages)
}

func (h *Handler) fanOutChannelMessage(channel *chat.Channel, message *chat.Message) {
	var group groups.Group
	if err := h.db.Where("id = ?", channel.GroupID).First(&group).Error; err != nil {
		return
	}

	var memberIDs []uint
	if err := h.db.Model(&groups.Member{}).
		Where("group_id = ? AND user_id <> ?", channel.GroupID, message.SenderID).
		Pluck("user_id", &memberIDs).Error; err != nil {
		h.log.Error("failed to load channel recipients", zap.Error(err))
		return
	}
	if group.OwnerID != message.SenderID {
		memberIDs = append(memberIDs, group.OwnerID)
	}

	h.hub.Deliver(memberIDs, ws.Event{
		Type:      "channel_message",
		ChannelID: channel.ID,
		GroupID:   channel.GroupID,
		SenderID:  message.SenderID,
		Body:      message.Body,
		SentAt:    message.CreatedAt,
	})
}

func (h *Handler) groupAccess(c *gin.Context) (*groups.Group, access.Level, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, access.LevelNone, false
	}

	var group groups.Group
	if err := h.db.Where("id = ?", c.Param("id")).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return nil, access.LevelNone, false
	}

	level, err := access.LevelFor(h.db, userID, c.GetString("role"), &group)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return nil, access.LevelNone, false
	}
	return &group, level, true
}

func (h *Handler) channelAccess(c *gin.Context) (*chat.Channel, access.Level, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, access.LevelNone, false
	}

	var channel chat.Channel
	if err := h.db.Where("id = ?", c.Param("id")).First(&channel).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return nil, access.LevelNone, false
	}

	var group groups.Group
	if err := h.db.Where("id = ?", channel.GroupID).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return nil, access.LevelNone, false
	}

	level, err := access.LevelFor(h.db, userID, c.GetString("role"), &group)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return nil, access.LevelNone, false
	}
	return &channel, level, true
}

// shareGroup reports whether two users share at least one group,
// counting ownership as presence.
func (h *Handler) shareGroup(a, b uint) (bool, error) {
	var count int64
	err := h.db.Raw(`
		SELECT COUNT(*) FROM (
			SELECT group_id FROM members WHERE user_id = ?
			UNION SELECT id AS group_id FROM "groups" WHERE owner_id = ?
		) ga
		JOIN (
			SELECT group_id FROM members WHERE user_id = ?
			UNION SELECT id AS group_id FROM "groups" WHERE owner_id = ?
		) gb ON ga.group_id = gb.group_id`,
		a, a, b, b).Scan(&count).Error
	return count > 0, err
}
