package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/sirupsen/logrus"
)

// noCategory is the sentinel the model returns when no category fits.
const noCategory = "false"

// ErrTextRequired 文本为空
var ErrTextRequired = errors.New("text is required")

// ChatCompleter is the slice of the OpenAI client the QA service uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// QAService 质检服务：分类、评分与改进建议都委托给外部模型
//
// Every call is single-shot request/response with no retry; a model failure
// surfaces to the caller as a server error.
type QAService struct {
	client    ChatCompleter
	templates *TemplateService
	model     string
	logger    *logrus.Logger
}

// NewQAService 创建质检服务
func NewQAService(client ChatCompleter, templates *TemplateService, model string, logger *logrus.Logger) *QAService {
	if logger == nil {
		logger = logrus.New()
	}
	if model == "" {
		model = openai.GPT4
	}
	return &QAService{client: client, templates: templates, model: model, logger: logger}
}

// AnalysisResult 分类 + 评分结果
type AnalysisResult struct {
	Match      bool               `json:"match"`
	Category   string             `json:"category,omitempty"`
	Scores     map[string]float64 `json:"scores,omitempty"`
	TotalScore float64            `json:"total_score,omitempty"`
}

// Classify asks the model to pick one category from categories, or returns
// "" when the model reports none fits.
func (s *QAService) Classify(ctx context.Context, text string, categories []string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrTextRequired
	}

	enum := append(append([]string{}, categories...), noCategory)
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"Classify the following text into one of these categories: %s. If you can't determine the category, return 'false'.",
					strings.Join(categories, ", ")),
			},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Functions: []openai.FunctionDefinition{
			{
				Name:        "classify_text",
				Description: "Classify the text into a category",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"category": {Type: jsonschema.String, Enum: enum},
					},
					Required: []string{"category"},
				},
			},
		},
		FunctionCall: openai.FunctionCall{Name: "classify_text"},
	})
	if err != nil {
		return "", fmt.Errorf("classify text: %w", err)
	}

	args, err := functionArguments(&resp, "classify_text")
	if err != nil {
		return "", err
	}

	var result struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(args), &result); err != nil {
		return "", fmt.Errorf("decode classification: %w", err)
	}
	if result.Category == noCategory {
		return "", nil
	}
	return result.Category, nil
}

// Analyze first classifies text against the known categories, then scores it
// against the matched category's template. Each dimension is bounded by the
// category's configured maximum; out-of-range model output is clamped.
func (s *QAService) Analyze(ctx context.Context, text string) (*AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrTextRequired
	}

	categories, err := s.templates.Categories(ctx)
	if err != nil {
		return nil, err
	}

	category, err := s.Classify(ctx, text, categories)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return &AnalysisResult{Match: false}, nil
	}

	template, err := s.templates.Get(ctx, category)
	if err != nil {
		return nil, err
	}

	scores, err := s.score(ctx, text, template.Template, template.ScoringCriteria)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, score := range scores {
		total += score
	}
	return &AnalysisResult{Match: true, Category: category, Scores: scores, TotalScore: total}, nil
}

func (s *QAService) score(ctx context.Context, text, templateText string, criteria map[string]float64) (map[string]float64, error) {
	dimensions := make([]string, 0, len(criteria))
	properties := make(map[string]jsonschema.Definition, len(criteria))
	var bounds []string
	for dim, max := range criteria {
		dimensions = append(dimensions, dim)
		properties[dim] = jsonschema.Definition{Type: jsonschema.Number}
		bounds = append(bounds, fmt.Sprintf("%s (max %g)", dim, max))
	}
	sort.Strings(dimensions)
	sort.Strings(bounds)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"Analyze the following text based on the template: %q. Provide a score for each of these categories: %s.",
					templateText, strings.Join(bounds, ", ")),
			},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Functions: []openai.FunctionDefinition{
			{
				Name:        "analyze_text",
				Description: "Analyze the text against the template",
				Parameters: jsonschema.Definition{
					Type:       jsonschema.Object,
					Properties: properties,
					Required:   dimensions,
				},
			},
		},
		FunctionCall: openai.FunctionCall{Name: "analyze_text"},
	})
	if err != nil {
		return nil, fmt.Errorf("score text: %w", err)
	}

	args, err := functionArguments(&resp, "analyze_text")
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64)
	if err := json.Unmarshal([]byte(args), &scores); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}

	for dim, max := range criteria {
		if scores[dim] < 0 {
			scores[dim] = 0
		}
		if scores[dim] > max {
			scores[dim] = max
		}
	}
	return scores, nil
}

// DetailedFeedback asks the model for free-text improvement suggestions for
// text, judged against the category's template.
func (s *QAService) DetailedFeedback(ctx context.Context, text, category string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrTextRequired
	}

	template, err := s.templates.Get(ctx, category)
	if err != nil {
		return "", err
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"Provide detailed feedback on the following text based on the template: %q. Focus on areas of improvement for %s.",
					template.Template, strings.Join(dimensionNames(template.ScoringCriteria), ", ")),
			},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("detailed feedback: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func dimensionNames(criteria map[string]float64) []string {
	names := make([]string, 0, len(criteria))
	for dim := range criteria {
		names = append(names, dim)
	}
	sort.Strings(names)
	return names
}

func functionArguments(resp *openai.ChatCompletionResponse, name string) (string, error) {
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	call := resp.Choices[0].Message.FunctionCall
	if call == nil || call.Name != name {
		return "", fmt.Errorf("model did not call %s", name)
	}
	return call.Arguments, nil
}
