package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sanitizeRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			body = nil
		}
		c.JSON(http.StatusOK, gin.H{"body": body})
	})
	r.POST("/noop", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestSanitizeStripsMarkupFromStrings(t *testing.T) {
	r := sanitizeRouter()

	payload, err := json.Marshal(gin.H{"name": `<script>alert(1)</script>Yoga`})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Yoga")
	assert.NotContains(t, rec.Body.String(), "script")
}

func TestSanitizePassesBodylessPostThrough(t *testing.T) {
	r := sanitizeRouter()

	req := httptest.NewRequest(http.MethodPost, "/noop", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSanitizePassesWhitespaceBodyThrough(t *testing.T) {
	r := sanitizeRouter()

	req := httptest.NewRequest(http.MethodPost, "/noop", strings.NewReader("  \n"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSanitizeRejectsMalformedJSON(t *testing.T) {
	r := sanitizeRouter()

	req := httptest.NewRequest(http.MethodPost, "/noop", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Malformed JSON")
}
