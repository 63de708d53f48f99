package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every v1 endpoint onto the router group.
func RegisterRoutes(v1 *gin.RouterGroup, macro *MacroHandler, feedback *FeedbackHandler, qa *QAHandler) {
	v1.POST("/macro-comparison", macro.Compare)
	v1.GET("/list-macros", macro.List)

	v1.POST("/post-feedback", feedback.Create)
	v1.GET("/export-feedback", feedback.Export)

	v1.POST("/analyze-text", qa.Analyze)
	v1.POST("/detailed-feedback", qa.DetailedFeedback)
	v1.POST("/templates", qa.CreateTemplate)
}

// Health 健康检查
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}
