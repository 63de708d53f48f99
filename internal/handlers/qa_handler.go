package handlers

import (
	"errors"
	"net/http"

	"macromate/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// QAHandler 文本质检接口：分类评分、改进建议、模板管理
//
// qa is nil when no model credentials are configured; the analysis endpoints
// then report the feature as unavailable without affecting the rest of the
// service.
type QAHandler struct {
	qa        *services.QAService
	templates *services.TemplateService
	logger    *logrus.Logger
}

// NewQAHandler 创建质检处理器
func NewQAHandler(qa *services.QAService, templates *services.TemplateService, logger *logrus.Logger) *QAHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &QAHandler{qa: qa, templates: templates, logger: logger}
}

// AnalyzeRequest 文本分析请求
type AnalyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

// DetailedFeedbackRequest 改进建议请求
type DetailedFeedbackRequest struct {
	Text     string `json:"text" binding:"required"`
	Category string `json:"category" binding:"required"`
}

// TemplateRequest 模板创建请求
type TemplateRequest struct {
	Category string `json:"category" binding:"required"`
	Template string `json:"template" binding:"required"`
}

// Analyze classifies the text against the known categories and scores it
// against the matched category's template.
func (h *QAHandler) Analyze(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Text is required", Message: err.Error()})
		return
	}

	result, err := h.qa.Analyze(c.Request.Context(), req.Text)
	if err != nil {
		h.logger.Errorf("Text analysis failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to analyze text", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// DetailedFeedback returns free-text improvement suggestions for the given
// text and category.
func (h *QAHandler) DetailedFeedback(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var req DetailedFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Text and category are required", Message: err.Error()})
		return
	}

	feedback, err := h.qa.DetailedFeedback(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		if errors.Is(err, services.ErrUnknownCategory) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid category", Message: err.Error()})
			return
		}
		h.logger.Errorf("Detailed feedback failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get detailed feedback", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}

// CreateTemplate stores a QA template under its category.
func (h *QAHandler) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Category and template are required", Message: err.Error()})
		return
	}

	if _, err := h.templates.Create(c.Request.Context(), req.Category, req.Template); err != nil {
		h.logger.Errorf("Template creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save template", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Template submitted successfully"})
}

func (h *QAHandler) available(c *gin.Context) bool {
	if h.qa == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "Text analysis unavailable",
			Message: "no model credentials configured",
		})
		return false
	}
	return true
}
