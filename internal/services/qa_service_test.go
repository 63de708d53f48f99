package services

import (
	"context"
	"fmt"
	"testing"

	"macromate/internal/cache"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatCompleter replays scripted responses in order and records the
// requests it saw.
type fakeChatCompleter struct {
	responses []openai.ChatCompletionResponse
	err       error
	requests  []openai.ChatCompletionRequest
}

func (f *fakeChatCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func functionCallResponse(name, arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					FunctionCall: &openai.FunctionCall{Name: name, Arguments: arguments},
				},
			},
		},
	}
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func newQATestService(t *testing.T, completer ChatCompleter) *QAService {
	templates := NewTemplateService(newTemplateTestDB(t), cache.NewMemoryStore(), []string{"tone", "process", "empathy"}, 10, nil)
	_, err := templates.Create(context.Background(), "refund", "Greet, confirm the order, explain the refund window.")
	require.NoError(t, err)
	return NewQAService(completer, templates, "gpt-4-0613", nil)
}

func TestQAService_Classify(t *testing.T) {
	completer := &fakeChatCompleter{responses: []openai.ChatCompletionResponse{
		functionCallResponse("classify_text", `{"category":"refund"}`),
	}}
	svc := newQATestService(t, completer)

	category, err := svc.Classify(context.Background(), "I want my money back", []string{"refund", "billing"})
	require.NoError(t, err)
	assert.Equal(t, "refund", category)

	require.Len(t, completer.requests, 1)
	req := completer.requests[0]
	assert.Equal(t, "gpt-4-0613", req.Model)
	require.Len(t, req.Functions, 1)
	assert.Equal(t, "classify_text", req.Functions[0].Name)
}

func TestQAService_Classify_NoCategory(t *testing.T) {
	completer := &fakeChatCompleter{responses: []openai.ChatCompletionResponse{
		functionCallResponse("classify_text", `{"category":"false"}`),
	}}
	svc := newQATestService(t, completer)

	category, err := svc.Classify(context.Background(), "hello", []string{"refund"})
	require.NoError(t, err)
	assert.Empty(t, category)
}

func TestQAService_Classify_EmptyText(t *testing.T) {
	svc := newQATestService(t, &fakeChatCompleter{})

	_, err := svc.Classify(context.Background(), "  ", []string{"refund"})
	assert.ErrorIs(t, err, ErrTextRequired)
}

func TestQAService_Analyze(t *testing.T) {
	completer := &fakeChatCompleter{responses: []openai.ChatCompletionResponse{
		functionCallResponse("classify_text", `{"category":"refund"}`),
		functionCallResponse("analyze_text", `{"tone":8,"process":7.5,"empathy":9}`),
	}}
	svc := newQATestService(t, completer)

	result, err := svc.Analyze(context.Background(), "Hi, your refund is on its way.")
	require.NoError(t, err)
	assert.True(t, result.Match)
	assert.Equal(t, "refund", result.Category)
	assert.Equal(t, map[string]float64{"tone": 8, "process": 7.5, "empathy": 9}, result.Scores)
	assert.InDelta(t, 24.5, result.TotalScore, 0.0001)
}

func TestQAService_Analyze_NoMatch(t *testing.T) {
	completer := &fakeChatCompleter{responses: []openai.ChatCompletionResponse{
		functionCallResponse("classify_text", `{"category":"false"}`),
	}}
	svc := newQATestService(t, completer)

	result, err := svc.Analyze(context.Background(), "off topic")
	require.NoError(t, err)
	assert.False(t, result.Match)
	assert.Empty(t, result.Category)
	assert.Nil(t, result.Scores)
	// The scoring call is skipped entirely.
	assert.Len(t, completer.requests, 1)
}

func TestQAService_Analyze_ClampsScores(t *testing.T) {
	completer := &fakeChatCompleter{responses: []openai.ChatCompletionResponse{
		functionCallResponse("classify_text", `{"category":"refund"}`),
		functionCallResponse("analyze_text", `{"tone":15,"process":-3,"empathy":10}`),
	}}
	svc := newQATestService(t, completer)

	result, err := svc.Analyze(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"tone": 10, "process": 0, "empathy": 10}, result.Scores)
	assert.InDelta(t, 20, result.TotalScore, 0.0001)
}

func TestQAService_Analyze_ModelError(t *testing.T) {
	completer := &fakeChatCompleter{err: fmt.Errorf("rate limited")}
	svc := newQATestService(t, completer)

	_, err := svc.Analyze(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestQAService_Analyze_WrongFunctionCall(t *testing.T) {
	completer := &fakeChatCompleter{responses: []openai.ChatCompletionResponse{
		functionCallResponse("something_else", `{}`),
	}}
	svc := newQATestService(t, completer)

	_, err := svc.Analyze(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classify_text")
}

func TestQAService_DetailedFeedback(t *testing.T) {
	completer := &fakeChatCompleter{responses: []openai.ChatCompletionResponse{
		textResponse("Open with a greeting and confirm the order number."),
	}}
	svc := newQATestService(t, completer)

	feedback, err := svc.DetailedFeedback(context.Background(), "refund incoming", "refund")
	require.NoError(t, err)
	assert.Equal(t, "Open with a greeting and confirm the order number.", feedback)
}

func TestQAService_DetailedFeedback_UnknownCategory(t *testing.T) {
	svc := newQATestService(t, &fakeChatCompleter{})

	_, err := svc.DetailedFeedback(context.Background(), "text", "nope")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
