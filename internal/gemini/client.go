package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	httpClient *http.Client
	apiKey     string
	apiURL     string
	model      string
}

func NewClient(apiKey, apiURL, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		apiURL:     apiURL,
		model:      model,
	}
}

func (c *Client) IsAvailable() bool {
	return c.apiKey != ""
}

type QCMChoices struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
}

type QCMQuestion struct {
	Question      string     `json:"question"`
	Choices       QCMChoices `json:"choices"`
	CorrectAnswer string     `json:"correct_answer"`
	Justification string     `json:"justification"`
}

type QCMResponse struct {
	QCM []QCMQuestion `json:"qcm"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type part struct {
	Text string `json:"text"`
}

type generateRequest struct {
	Contents []struct {
		Parts []part `json:"parts"`
	} `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

var defaultSafetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// GenerateQuiz analyzes the given text and returns a validated quiz. The call
// is a single attempt: either the model returns a parsable quiz with the
// expected shape or an error comes back.
func (c *Client) GenerateQuiz(ctx context.Context, text, title, summary string, questionCount int) (*QCMResponse, error) {
	if !c.IsAvailable() {
		return nil, fmt.Errorf("quiz generation is not configured")
	}

	prompt := QuizPrompt(text, title, summary, questionCount)

	reqBody := generateRequest{
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 2048,
		},
		SafetySettings: defaultSafetySettings,
	}
	reqBody.Contents = []struct {
		Parts []part `json:"parts"`
	}{
		{Parts: []part{{Text: prompt}}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.apiURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	if genResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", genResp.Error.Message)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	content := genResp.Candidates[0].Content.Parts[0].Text

	jsonText, err := extractJSON(content)
	if err != nil {
		return nil, err
	}

	var quiz QCMResponse
	if err := json.Unmarshal([]byte(jsonText), &quiz); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}

	if err := validateQuiz(&quiz); err != nil {
		return nil, err
	}

	return &quiz, nil
}

// extractJSON pulls the span between the first "{" and the last "}" out of the
// free-form model output. The model wraps the object in prose or code fences
// often enough that parsing the raw text directly is not an option.
func extractJSON(content string) (string, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON found in the response")
	}
	return content[start : end+1], nil
}

func validateQuiz(quiz *QCMResponse) error {
	if len(quiz.QCM) == 0 {
		return fmt.Errorf("model returned an empty quiz")
	}
	for i, q := range quiz.QCM {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d has no text", i+1)
		}
		if q.Choices.A == "" || q.Choices.B == "" || q.Choices.C == "" {
			return fmt.Errorf("question %d does not have three choices", i+1)
		}
		switch q.CorrectAnswer {
		case "A", "B", "C":
		default:
			return fmt.Errorf("question %d has invalid correct_answer %q", i+1, q.CorrectAnswer)
		}
	}
	return nil
}

// Labeled returns the choices in label order together with a correctness flag
// for each, matching the declared correct_answer.
func (q *QCMQuestion) Labeled() []LabeledChoice {
	return []LabeledChoice{
		{Label: "A", Text: q.Choices.A, IsCorrect: q.CorrectAnswer == "A"},
		{Label: "B", Text: q.Choices.B, IsCorrect: q.CorrectAnswer == "B"},
		{Label: "C", Text: q.Choices.C, IsCorrect: q.CorrectAnswer == "C"},
	}
}

type LabeledChoice struct {
	Label     string
	Text      string
	IsCorrect bool
}
