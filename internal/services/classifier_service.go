package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/engine"
)

var (
	ErrClassifierUnavailable = errors.New("classification service not configured")
	ErrClassificationFailed  = errors.New("classification failed")
)

// Categories a report can be classified into.
var Categories = []string{
	"Lighting", "Roads", "Hazards", "Sanitation", "Transport",
	"Waste", "Parking", "Water", "Vandalism", "Noise", engine.CategoryOther,
}

// Cheap keyword pre-pass; the model is only consulted when no rule matches.
var keywordRules = []struct {
	Keywords []string
	Category string
}{
	{[]string{"noise", "loud"}, "Noise"},
	{[]string{"light", "lamp", "bulb"}, "Lighting"},
	{[]string{"road", "street", "pothole", "asphalt"}, "Roads"},
	{[]string{"trash", "garbage", "litter", "dump"}, "Waste"},
	{[]string{"water", "leak", "sewer", "pipe"}, "Water"},
	{[]string{"graffiti", "vandal"}, "Vandalism"},
	{[]string{"parking"}, "Parking"},
	{[]string{"bus", "tram", "transport"}, "Transport"},
}

// --- OpenAI types (internal) ---

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ClassifierService assigns a category to free-text issue descriptions.
// Classification is mandatory for report creation: any failure here aborts
// the submission with a recoverable error.
type ClassifierService struct {
	cfg      *config.Config
	client   *http.Client
	endpoint string
}

func NewClassifierService(cfg *config.Config) *ClassifierService {
	return &ClassifierService{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.AITimeout},
		endpoint: "https://api.openai.com/v1/chat/completions",
	}
}

// Classify returns the category for the given text.
func (s *ClassifierService) Classify(ctx context.Context, text string) (string, error) {
	lower := strings.ToLower(text)
	for _, rule := range keywordRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category, nil
			}
		}
	}

	if s.cfg.OpenAIAPIKey == "" {
		return "", ErrClassifierUnavailable
	}

	prompt := fmt.Sprintf(`Classify the text below into exactly one of these categories: %s.
If the text clearly relates to one of the categories, pick that category.
Return ONLY the category name, nothing else.
Text: %q`, strings.Join(Categories, ", "), text)

	oaiReq := openAIRequest{
		Model: s.cfg.OpenAIModel,
		Messages: []openAIMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   10,
	}

	reqBody, err := json.Marshal(oaiReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.OpenAIAPIKey)

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(httpResp.Body)
		return "", fmt.Errorf("%w: status %d: %s", ErrClassificationFailed, httpResp.StatusCode, string(bodyBytes))
	}

	var oaiResp openAIResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&oaiResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	if len(oaiResp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrClassificationFailed)
	}

	return normalizeCategory(oaiResp.Choices[0].Message.Content), nil
}

// normalizeCategory maps the model output onto the known category list; any
// unrecognized answer falls back to Other.
func normalizeCategory(raw string) string {
	cleaned := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `."`))
	for _, cat := range Categories {
		if strings.EqualFold(cleaned, cat) {
			return cat
		}
	}
	return engine.CategoryOther
}
