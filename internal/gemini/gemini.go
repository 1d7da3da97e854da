// Package gemini talks to the Gemini completion API for the two generation
// steps: summarizing source text into a short topic label and producing the
// fixed 10-question quiz.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"intelliq/internal/apperr"
	"intelliq/internal/models"
)

const (
	// ModelName is the Gemini model used for both calls.
	ModelName = "gemini-2.0-flash"

	// QuestionCount is the fixed number of questions requested per quiz.
	QuestionCount = 10

	// FallbackTitle is substituted when title generation fails; title
	// generation is non-critical and must never abort a request.
	FallbackTitle = "Generated Quiz"

	// Title generation is quick; quiz generation can take a while on long
	// sources. These are the only timeouts in the request flow.
	titleTimeout = 60 * time.Second
	quizTimeout  = 180 * time.Second
)

const titlePromptTemplate = `Summarize the following text into a concise, 3-5 word quiz topic/title. No formatting.
"""%s"""`

const quizPromptTemplate = `Generate exactly %d multiple-choice questions in JSON format.
Each object should include:
- question
- options (4)
- answer (correct index 0-3)
- explanation (2 lines)

Difficulty: "%s".
Based on this content:
"""%s"""
Return only the JSON array.`

// Client wraps the Gemini client with one pre-configured model per call so
// concurrent requests never mutate shared sampling settings.
type Client struct {
	client     *genai.Client
	titleModel *genai.GenerativeModel
	quizModel  *genai.GenerativeModel
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	titleModel := client.GenerativeModel(ModelName)
	titleModel.SetTemperature(0.3)

	quizModel := client.GenerativeModel(ModelName)
	quizModel.SetTemperature(0.7)
	quizModel.SetTopK(40)
	quizModel.SetTopP(0.95)

	return &Client{
		client:     client,
		titleModel: titleModel,
		quizModel:  quizModel,
	}, nil
}

// Close closes the underlying Gemini client.
func (c *Client) Close() {
	c.client.Close()
}

// GenerateTitle asks the model for a 3-5 word label for the source text.
// Callers should fall back to FallbackTitle on any error.
func (c *Client) GenerateTitle(ctx context.Context, source string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, titleTimeout)
	defer cancel()

	prompt := fmt.Sprintf(titlePromptTemplate, source)
	resp, err := c.titleModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", apperr.Wrap(apperr.Upstream, "title generation failed", err)
	}

	title := strings.TrimSpace(responseText(resp))
	if title == "" {
		return "", apperr.New(apperr.Upstream, "title generation returned no content")
	}
	return strings.Join(strings.Fields(title), " "), nil
}

// GenerateQuiz asks the model for the question set and parses its output.
// The raw model text is returned alongside the questions so the façade can
// surface it when parsing fails.
func (c *Client) GenerateQuiz(ctx context.Context, source, difficulty string) ([]models.Question, string, error) {
	ctx, cancel := context.WithTimeout(ctx, quizTimeout)
	defer cancel()

	prompt := fmt.Sprintf(quizPromptTemplate, QuestionCount, difficulty, source)
	resp, err := c.quizModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Upstream, "Failed to generate quiz", err)
	}

	raw := responseText(resp)
	questions, err := parseQuestions(raw)
	if err != nil {
		return nil, raw, err
	}
	return questions, raw, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

// parseQuestions decodes the model output into the question schema. The
// output is not guaranteed to be pure JSON, so the slice between the first
// '[' and the last ']' is tried first and the whole body second. Individual
// question objects are not validated beyond decoding into the typed schema.
func parseQuestions(raw string) ([]models.Question, error) {
	var questions []models.Question

	if arr, ok := sliceJSONArray(raw); ok {
		if err := json.Unmarshal([]byte(arr), &questions); err == nil && len(questions) > 0 {
			return questions, nil
		}
		questions = nil
	}

	if err := json.Unmarshal([]byte(raw), &questions); err != nil || len(questions) == 0 {
		return nil, &apperr.Error{
			Kind:    apperr.InvalidQuizFormat,
			Message: "Invalid quiz format",
			Raw:     raw,
		}
	}
	return questions, nil
}

// sliceJSONArray returns the substring between the first '[' and the last
// ']', which strips surrounding prose and markdown fences.
func sliceJSONArray(text string) (string, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
