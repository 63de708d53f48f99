package handlers

import (
	"errors"
	"net/http"

	"macromate/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FeedbackHandler 反馈提交与导出接口
type FeedbackHandler struct {
	feedback *services.FeedbackService
	export   *services.ExportService
	logger   *logrus.Logger
}

// NewFeedbackHandler 创建反馈处理器
func NewFeedbackHandler(feedback *services.FeedbackService, export *services.ExportService, logger *logrus.Logger) *FeedbackHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &FeedbackHandler{feedback: feedback, export: export, logger: logger}
}

// Create persists one feedback record.
func (h *FeedbackHandler) Create(c *gin.Context) {
	var req services.FeedbackCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid feedback input", Message: err.Error()})
		return
	}

	if _, err := h.feedback.Create(c.Request.Context(), &req); err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid feedback input", Message: err.Error()})
			return
		}
		h.logger.Errorf("Feedback creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save feedback", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Feedback submitted successfully"})
}

// Export renders the filtered feedback either as a CSV attachment or as a
// newly created spreadsheet, depending on export_type.
func (h *FeedbackHandler) Export(c *gin.Context) {
	filter := &services.FeedbackFilter{
		FeedbackType:   c.Query("feedback_type"),
		GenerationType: c.Query("generation_type"),
		StartDate:      c.Query("start_date"),
		EndDate:        c.Query("end_date"),
	}
	if err := filter.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters", Message: err.Error()})
		return
	}

	switch c.Query("export_type") {
	case services.ExportCSV:
		csv, err := h.export.ToCSV(c.Request.Context(), filter)
		if err != nil {
			h.logger.Errorf("CSV export failed: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to export feedback", Message: err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="feedback_export.csv"`)
		c.Data(http.StatusOK, "text/csv", []byte(csv))

	case services.ExportGoogleSheets:
		url, err := h.export.ToGoogleSheets(c.Request.Context(), filter)
		if err != nil {
			h.logger.Errorf("Spreadsheet export failed: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to export feedback", Message: err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Feedback exported successfully to Google Sheets",
			"url":     url,
		})

	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid query parameters",
			Message: services.ErrInvalidExportType.Error(),
		})
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, services.ErrTicketIDRequired) ||
		errors.Is(err, services.ErrInvalidFeedbackType) ||
		errors.Is(err, services.ErrInvalidGenerationType) ||
		errors.Is(err, services.ErrWrittenFeedbackRequired)
}
