package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Feedback type values
const (
	FeedbackPositive = "positive"
	FeedbackNegative = "negative"
)

// Generation type values
const (
	GenerationMacro = "macro"
	GenerationAI    = "ai"
)

// CommentField marks a macro action that writes the ticket's visible reply.
const CommentField = "comment_value"

// Action 宏动作（field + value）
type Action struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ActionList is stored as a JSON text column.
type ActionList []Action

func (a ActionList) Value() (driver.Value, error) {
	if a == nil {
		a = ActionList{}
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal actions: %w", err)
	}
	return string(data), nil
}

func (a *ActionList) Scan(value interface{}) error {
	if value == nil {
		*a = ActionList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("actions: unsupported column type")
	}
	if len(data) == 0 {
		*a = ActionList{}
		return nil
	}
	return json.Unmarshal(data, a)
}

// Macro 快捷回复模板，从帮助台平台同步
// ID is the helpdesk's natural id; Position preserves the helpdesk list order.
type Macro struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	URL       string     `json:"url"`
	Title     string     `json:"title"`
	Active    bool       `json:"active"`
	Position  int        `gorm:"index" json:"-"`
	Actions   ActionList `gorm:"type:text" json:"actions"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime:false" json:"updated_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime:false" json:"created_at"`
}

// HasCommentAction reports whether some action populates the reply text.
func (m *Macro) HasCommentAction() bool {
	for _, action := range m.Actions {
		if action.Field == CommentField {
			return true
		}
	}
	return false
}

// Feedback 客服对生成回复的评价，只追加不修改
type Feedback struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TicketID          int64     `gorm:"not null;index" json:"ticket_id"`
	FeedbackType      string    `gorm:"type:varchar(16);not null" json:"feedback_type"`
	FeedbackPresets   string    `gorm:"type:text" json:"feedback_presets"` // comma-joined
	WrittenFeedback   string    `gorm:"type:text" json:"written_feedback"`
	TextEditorContent string    `gorm:"type:text" json:"text_editor_content"`
	GenerationType    string    `gorm:"type:varchar(16);not null" json:"generation_type"`
	CreatedAt         time.Time `json:"created_at"`
}

// ScoreMap maps a scoring dimension to its maximum score.
type ScoreMap map[string]float64

func (s ScoreMap) Value() (driver.Value, error) {
	if s == nil {
		s = ScoreMap{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal scoring criteria: %w", err)
	}
	return string(data), nil
}

func (s *ScoreMap) Scan(value interface{}) error {
	if value == nil {
		*s = ScoreMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("scoring criteria: unsupported column type")
	}
	if len(data) == 0 {
		*s = ScoreMap{}
		return nil
	}
	return json.Unmarshal(data, s)
}

// Template QA 评分模板，按分类唯一
type Template struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Category        string    `gorm:"uniqueIndex;not null" json:"category"`
	Template        string    `gorm:"type:text;not null" json:"template"`
	ScoringCriteria ScoreMap  `gorm:"type:text" json:"scoring_criteria"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
