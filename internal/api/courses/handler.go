package courses

import (
	"net/http"

	"community-app/internal/domain/access"
	"community-app/internal/domain/courses"
	"community-app/internal/domain/groups"

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

// POST /api/groups/:id/courses
func (h *Handler) Create(c *gin.Context) {
	group, level, ok := h.groupAccess(c, c.Param("id"))
	if !ok {
		return
	}
	if !level.CanManage() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the group owner"})
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course := courses.Course{
		GroupID:     group.ID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := h.db.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// GET /api/groups/:id/courses
//
// Members see published courses only; the owner sees everything.
func (h *Handler) List(c *gin.Context) {
	group, level, ok := h.groupAccess(c, c.Param("id"))
	if !ok {
		return
	}
	if !level.CanView() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Membership required"})
		return
	}

	q := h.db.Where("group_id = ?", group.ID)
	if !level.CanManage() {
		q = q.Where("published = ?", true)
	}

	var list []courses.Course
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load courses"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/courses/:id
func (h *Handler) Get(c *gin.Context) {
	course, level, ok := h.courseAccess(c)
	if !ok {
		return
	}
	if !level.CanView() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Membership required"})
		return
	}
	if !course.Published && !level.CanManage() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	lessonQuery := h.db.Where("course_id = ?", course.ID)
	if !level.CanManage() {
		lessonQuery = lessonQuery.Where("published = ?", true)
	}
	var lessons []courses.Lesson
	if err := lessonQuery.Order("sort_index ASC").Find(&lessons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load lessons"})
		return
	}
	course.Lessons = lessons

	c.JSON(http.StatusOK, course)
}

// PUT /api/courses/:id
func (h *Handler) Update(c *gin.Context) {
	course, level, ok := h.courseAccess(c)
	if !ok {
		return
	}
	if !level.CanManage() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the group owner"})
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := h.db.Model(course).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// DELETE /api/courses/:id
func (h *Handler) Delete(c *gin.Context) {
	course, level, ok := h.courseAccess(c)
	if !ok {
		return
	}
	if !level.CanManage() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the group owner"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", course.ID).Delete(&courses.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete course"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/courses/:id/publish , POST /api/courses/:id/unpublish
func (h *Handler) SetPublished(published bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, level, ok := h.courseAccess(c)
		if !ok {
			return
		}
		if !level.CanManage() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not the group owner"})
			return
		}

		if err := h.db.Model(course).Update("published", published).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// POST /api/courses/:id/lessons
func (h *Handler) CreateLesson(c *gin.Context) {
	course, level, ok := h.courseAccess(c)
	if !ok {
		return
	}
	if !level.CanManage() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the group owner"})
		return
	}

	var req struct {
		Title    string `json:"title" binding:"required"`
		VideoURL string `json:"video_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var maxIndex int
	h.db.Model(&courses.Lesson{}).
		Where("course_id = ?", course.ID).
		Select("COALESCE(MAX(sort_index), -1)").
		Scan(&maxIndex)

	lesson := courses.Lesson{
		CourseID:  course.ID,
		Title:     req.Title,
		VideoURL:  req.VideoURL,
		SortIndex: maxIndex + 1,
	}
	if err := h.db.Create(&lesson).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lesson"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "lesson": lesson})
}

// PUT /api/lessons/:id
func (h *Handler) UpdateLesson(c *gin.Context) {
	lesson, level, ok := h.lessonAccess(c)
	if !ok {
		return
	}
	if !level.CanManage() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the group owner"})
		return
	}

	var req struct {
		Title     *string `json:"title"`
		VideoURL  *string `json:"video_url"`
		Published *bool   `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.VideoURL != nil {
		updates["video_url"] = *req.VideoURL
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := h.db.Model(lesson).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lesson"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "lesson": lesson})
}

// DELETE /api/lessons/:id
func (h *Handler) DeleteLesson(c *gin.Context) {
	lesson, level, ok := h.lessonAccess(c)
	if !ok {
		return
	}
	if !level.CanManage() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the group owner"})
		return
	}

	if err := h.db.Delete(lesson).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lesson"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PUT /api/courses/:id/lessons/reorder
//
// Accepts the full ordered list of lesson ids; positions are rewritten in
// one transaction.
func (h *Handler) ReorderLessons(c *gin.Context) {
	course, level, ok := h.courseAccess(c)
	if !ok {
		return
	}
	if !level.CanManage() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the group owner"})
		return
	}

	var req struct {
		LessonIDs []uint `json:"lesson_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	if err := h.db.Model(&courses.Lesson{}).
		Where("course_id = ?", course.ID).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load lessons"})
		return
	}
	if int64(len(req.LessonIDs)) != count {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lesson_ids must list every lesson exactly once"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range req.LessonIDs {
			res := tx.Model(&courses.Lesson{}).
				Where("id = ? AND course_id = ?", id, course.ID).
				Update("sort_index", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lesson list"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) groupAccess(c *gin.Context, groupID string) (*groups.Group, access.Level, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, access.LevelNone, false
	}

	var group groups.Group
	if err := h.db.Where("id = ?", groupID).First(&group).Error; err != nil {
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

func (h *Handler) courseAccess(c *gin.Context) (*courses.Course, access.Level, bool) {
	var course courses.Course
	if err := h.db.Where("id = ?", c.Param("id")).First(&course).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return nil, access.LevelNone, false
	}

	_, level, ok := h.groupAccessByID(c, course.GroupID)
	if !ok {
		return nil, access.LevelNone, false
	}
	return &course, level, true
}

func (h *Handler) lessonAccess(c *gin.Context) (*courses.Lesson, access.Level, bool) {
	var lesson courses.Lesson
	if err := h.db.Where("id = ?", c.Param("id")).First(&lesson).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
		return nil, access.LevelNone, false
	}

	var course courses.Course
	if err := h.db.Where("id = ?", lesson.CourseID).First(&course).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return nil, access.LevelNone, false
	}

	_, level, ok := h.groupAccessByID(c, course.GroupID)
	if !ok {
		return nil, access.LevelNone, false
	}
	return &lesson, level, true
}

func (h *Handler) groupAccessByID(c *gin.Context, groupID uint) (*groups.Group, access.Level, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, access.LevelNone, false
	}

	var group groups.Group
	if err := h.db.Where("id = ?", groupID).First(&group).Error; err != nil {
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
