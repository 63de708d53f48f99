package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"macromate/internal/models"
	"macromate/pkg/sheets"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"
)

// Export target values
const (
	ExportCSV          = "csv"
	ExportGoogleSheets = "google_sheets"
)

// ErrInvalidExportType 未知导出目标
var ErrInvalidExportType = errors.New("export_type must be 'csv' or 'google_sheets'")

// ErrSheetsNotConfigured reports a sheets export without credentials.
var ErrSheetsNotConfigured = errors.New("spreadsheet export is not configured")

var exportHeader = []string{
	"Ticket ID", "Feedback Type", "Feedback Presets", "Written Feedback",
	"Text Editor Content", "Generation Type", "Created At",
}

// feedbackRow is the flattened export shape; presets are expanded back into
// a list, separated by ';' inside one cell.
type feedbackRow struct {
	TicketID          int64  `csv:"ticket_id"`
	FeedbackType      string `csv:"feedback_type"`
	FeedbackPresets   string `csv:"feedback_presets"`
	WrittenFeedback   string `csv:"written_feedback"`
	TextEditorContent string `csv:"text_editor_content"`
	GenerationType    string `csv:"generation_type"`
	CreatedAt         string `csv:"created_at"`
}

// ExportService 反馈导出服务
type ExportService struct {
	feedback *FeedbackService
	exporter sheets.Exporter // nil when spreadsheet export is not configured
	logger   *logrus.Logger
}

// NewExportService 创建导出服务
func NewExportService(feedback *FeedbackService, exporter sheets.Exporter, logger *logrus.Logger) *ExportService {
	if logger == nil {
		logger = logrus.New()
	}
	return &ExportService{feedback: feedback, exporter: exporter, logger: logger}
}

func expandPresets(joined string) string {
	if joined == "" {
		return ""
	}
	return strings.Join(strings.Split(joined, ","), ";")
}

func toRows(feedback []models.Feedback) []feedbackRow {
	rows := make([]feedbackRow, 0, len(feedback))
	for _, f := range feedback {
		rows = append(rows, feedbackRow{
			TicketID:          f.TicketID,
			FeedbackType:      f.FeedbackType,
			FeedbackPresets:   expandPresets(f.FeedbackPresets),
			WrittenFeedback:   f.WrittenFeedback,
			TextEditorContent: f.TextEditorContent,
			GenerationType:    f.GenerationType,
			CreatedAt:         f.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows
}

// ToCSV renders the filtered feedback as a CSV document with a header row.
func (s *ExportService) ToCSV(ctx context.Context, filter *FeedbackFilter) (string, error) {
	feedback, err := s.feedback.Query(ctx, filter)
	if err != nil {
		return "", err
	}

	rows := toRows(feedback)
	csv, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", err
	}
	return csv, nil
}

// ToGoogleSheets creates a new spreadsheet with the filtered feedback and
// returns its URL. The spreadsheet is made publicly writable. If population
// fails after creation, the empty document is left behind; the exporter logs
// the spreadsheet id and the error surfaces to the caller.
func (s *ExportService) ToGoogleSheets(ctx context.Context, filter *FeedbackFilter) (string, error) {
	if s.exporter == nil {
		return "", ErrSheetsNotConfigured
	}

	feedback, err := s.feedback.Query(ctx, filter)
	if err != nil {
		return "", err
	}

	values := make([][]interface{}, 0, len(feedback))
	for _, row := range toRows(feedback) {
		values = append(values, []interface{}{
			row.TicketID, row.FeedbackType, row.FeedbackPresets, row.WrittenFeedback,
			row.TextEditorContent, row.GenerationType, row.CreatedAt,
		})
	}

	return s.exporter.Export(ctx, "Feedback Export", "Feedback", exportHeader, values)
}
