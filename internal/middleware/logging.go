// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/ipo-portal-backend/internal/models"
)

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logrus.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     path,
			"status":   c.Writer.Status(),
			"latency":  time.Since(start).String(),
			"clientIP": c.ClientIP(),
		}).Info("request completed")
	}
}

// AuditLogMiddleware persists a record of every mutating request.
func AuditLogMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for GET requests and health checks
		if c.Request.Method == "GET" || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		// Read request body
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		c.Next()

		userID, _ := c.Get("user_id")
		var userUUID *uuid.UUID
		if userID != nil {
			if uid, ok := userID.(string); ok {
				if parsed, err := uuid.Parse(uid); err == nil {
					userUUID = &parsed
				}
			}
		}

		var body models.JSONB
		if len(requestBody) > 0 {
			// Best effort; non-JSON bodies are not recorded.
			_ = json.Unmarshal(requestBody, &body)
		}
		delete(body, "password")
		delete(body, "new_password")

		entry := models.AuditLog{
			UserID:       userUUID,
			Action:       c.Request.Method + " " + c.FullPath(),
			ResourceType: resourceTypeFromPath(c.FullPath()),
			StatusCode:   c.Writer.Status(),
			RequestBody:  body,
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
		}

		if err := db.Create(&entry).Error; err != nil {
			logrus.Warnf("failed to write audit log: %v", err)
		}
	}
}

func resourceTypeFromPath(path string) string {
	switch {
	case strings.HasPrefix(path, "/ipos"):
		return "ipo"
	case strings.HasPrefix(path, "/applications"):
		return "application"
	case strings.HasPrefix(path, "/users"):
		return "user"
	case strings.HasPrefix(path, "/auth"):
		return "auth"
	default:
		return "other"
	}
}
