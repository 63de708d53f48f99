package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"macromate/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Validation errors reported to the caller as client errors.
var (
	ErrTicketIDRequired        = errors.New("ticket_id is required")
	ErrInvalidFeedbackType     = errors.New("feedback_type must be 'positive' or 'negative'")
	ErrInvalidGenerationType   = errors.New("generation_type must be 'macro' or 'ai'")
	ErrWrittenFeedbackRequired = errors.New("written_feedback is required for negative feedback")
	ErrInvalidDateRange        = errors.New("start_date and end_date must be YYYY-MM-DD dates")
)

// FeedbackService 反馈存储服务，只追加
type FeedbackService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewFeedbackService 创建反馈服务
func NewFeedbackService(db *gorm.DB, logger *logrus.Logger) *FeedbackService {
	if logger == nil {
		logger = logrus.New()
	}
	return &FeedbackService{db: db, logger: logger}
}

// FeedbackCreateRequest 提交反馈请求
type FeedbackCreateRequest struct {
	TicketID          int64    `json:"ticket_id"`
	FeedbackType      string   `json:"feedback_type"`
	FeedbackPresets   []string `json:"feedback_presets"`
	WrittenFeedback   string   `json:"written_feedback"`
	TextEditorContent string   `json:"text_editor_content"`
	GenerationType    string   `json:"generation_type"`
}

// Validate checks the request against the feedback invariants. Nothing is
// written when validation fails.
func (r *FeedbackCreateRequest) Validate() error {
	if r.TicketID <= 0 {
		return ErrTicketIDRequired
	}
	if r.FeedbackType != models.FeedbackPositive && r.FeedbackType != models.FeedbackNegative {
		return ErrInvalidFeedbackType
	}
	if r.GenerationType != models.GenerationMacro && r.GenerationType != models.GenerationAI {
		return ErrInvalidGenerationType
	}
	if r.FeedbackType == models.FeedbackNegative && strings.TrimSpace(r.WrittenFeedback) == "" {
		return ErrWrittenFeedbackRequired
	}
	return nil
}

// Create validates and persists one feedback row.
func (s *FeedbackService) Create(ctx context.Context, req *FeedbackCreateRequest) (*models.Feedback, error) {
	if req == nil {
		return nil, errors.New("request required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	feedback := &models.Feedback{
		TicketID:          req.TicketID,
		FeedbackType:      req.FeedbackType,
		FeedbackPresets:   strings.Join(req.FeedbackPresets, ","),
		WrittenFeedback:   req.WrittenFeedback,
		TextEditorContent: req.TextEditorContent,
		GenerationType:    req.GenerationType,
	}
	if err := s.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

// FeedbackFilter 导出过滤条件，全部可选，按 AND 组合
type FeedbackFilter struct {
	FeedbackType   string
	GenerationType string
	StartDate      string // YYYY-MM-DD, inclusive
	EndDate        string // YYYY-MM-DD, inclusive
}

// Validate checks enum values and date formats.
func (f *FeedbackFilter) Validate() error {
	if f.FeedbackType != "" && f.FeedbackType != models.FeedbackPositive && f.FeedbackType != models.FeedbackNegative {
		return ErrInvalidFeedbackType
	}
	if f.GenerationType != "" && f.GenerationType != models.GenerationMacro && f.GenerationType != models.GenerationAI {
		return ErrInvalidGenerationType
	}
	for _, date := range []string{f.StartDate, f.EndDate} {
		if date == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return ErrInvalidDateRange
		}
	}
	return nil
}

// Query returns feedback rows satisfying every set filter, oldest first.
// Date filters compare against the date component of created_at.
func (s *FeedbackService) Query(ctx context.Context, filter *FeedbackFilter) ([]models.Feedback, error) {
	if filter == nil {
		filter = &FeedbackFilter{}
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&models.Feedback{})
	if filter.FeedbackType != "" {
		query = query.Where("feedback_type = ?", filter.FeedbackType)
	}
	if filter.GenerationType != "" {
		query = query.Where("generation_type = ?", filter.GenerationType)
	}
	if filter.StartDate != "" {
		start, _ := time.Parse("2006-01-02", filter.StartDate)
		query = query.Where("created_at >= ?", start)
	}
	if filter.EndDate != "" {
		end, _ := time.Parse("2006-01-02", filter.EndDate)
		query = query.Where("created_at < ?", end.AddDate(0, 0, 1))
	}

	var feedback []models.Feedback
	if err := query.Order("id ASC").Find(&feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}
