package handlers

import (
	"net/http"

	"macromate/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MacroHandler 宏比对与列表接口
type MacroHandler struct {
	service *services.MacroService
	logger  *logrus.Logger
}

// NewMacroHandler 创建宏处理器
func NewMacroHandler(service *services.MacroService, logger *logrus.Logger) *MacroHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &MacroHandler{service: service, logger: logger}
}

// ComparisonRequest 宏比对请求
type ComparisonRequest struct {
	Text string `json:"text" binding:"required"`
}

// Compare tests free-form agent text against every stored macro template and
// returns the first match.
func (h *MacroHandler) Compare(c *gin.Context) {
	var req ComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Text is required", Message: err.Error()})
		return
	}

	result, err := h.service.Match(c.Request.Context(), req.Text)
	if err != nil {
		h.logger.Errorf("Macro comparison failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to compare macros", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// List returns all stored macros in helpdesk order.
func (h *MacroHandler) List(c *gin.Context) {
	macros, err := h.service.List(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Macro listing failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list macros", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, macros)
}
