// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipo-portal-backend/internal/apperrors"
)

// APIResponse is the success envelope. Error bodies are always
// {"status":"error","message":...,"code":...}.
type APIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

type APIErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Errors  interface{} `json:"errors,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Status: "success",
		Data:   data,
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Status: "success",
		Data:   data,
		Meta:   meta,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Status: "success",
		Data:   data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, APIErrorResponse{
		Status:  "error",
		Message: message,
		Code:    code,
	})
}

// AppErrorResponse maps a service error onto the wire format. Anything
// that is not an *AppError is treated as internal and its detail is
// withheld from the client.
func AppErrorResponse(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		ErrorResponse(c, appErr.StatusCode, appErr.Code, appErr.Message)
		return
	}
	ErrorResponse(c, http.StatusInternalServerError,
		apperrors.ErrInternalServer.Code, apperrors.ErrInternalServer.Message)
}

func BadRequestResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", message)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = apperrors.ErrUnauthorized.Message
	}
	ErrorResponse(c, http.StatusUnauthorized, apperrors.ErrUnauthorized.Code, message)
}

func ValidationErrorResponse(c *gin.Context, errs []ValidationError) {
	c.JSON(http.StatusBadRequest, APIErrorResponse{
		Status:  "error",
		Message: "Invalid input",
		Code:    apperrors.ErrValidation.Code,
		Errors:  errs,
	})
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	SuccessResponseWithMeta(c, result.Data, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userID, exists := c.Get("user_id"); exists {
		if userIDStr, ok := userID.(string); ok {
			return userIDStr, true
		}
	}
	return "", false
}

func GetUserRoleFromContext(c *gin.Context) (string, bool) {
	if role, exists := c.Get("user_role"); exists {
		if roleStr, ok := role.(string); ok {
			return roleStr, true
		}
	}
	return "", false
}
