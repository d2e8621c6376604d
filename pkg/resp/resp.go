package resp

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes {status:"success", message?, data?}
func Success(c *gin.Context, code int, message string, data any) {
	body := gin.H{"status": "success"}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

func OK(c *gin.Context, data any) {
	Success(c, http.StatusOK, "", data)
}

func Created(c *gin.Context, message string, data any) {
	Success(c, http.StatusCreated, message, data)
}

// Error writes {status:"error", message}
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "error", "message": message})
}

// Abort is Error plus c.Abort for middleware
func Abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"status": "error", "message": message})
}

func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, msg)
}

func NotFound(c *gin.Context, msg string) {
	Error(c, http.StatusNotFound, msg)
}

func ServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}
