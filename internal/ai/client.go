package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"flashdeck/internal/database/dto"
	"flashdeck/internal/logger"
)

// Client invokes the external text-generation service and returns the
// raw batch it produced. Structural validation happens in the pipeline.
type Client interface {
	GenerateDeckCards(ctx context.Context, prompt string) ([]dto.CardContent, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = "gpt-4o-mini"
	}

	timeoutSec := 120
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &client{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type responsesRequest struct {
	Model string `json:"model"`

	Input []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"input"`

	Text struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text"`

	Temperature float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

// cardBatchSchema is the strict output contract sent with every request:
// an object holding exactly GeneratedBatchSize front/back pairs.
func cardBatchSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cards": map[string]any{
				"type":     "array",
				"minItems": GeneratedBatchSize,
				"maxItems": GeneratedBatchSize,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"front": map[string]any{
							"type":        "string",
							"description": "Question or prompt",
						},
						"back": map[string]any{
							"type":        "string",
							"description": "Answer or explanation",
						},
					},
					"required":             []string{"front", "back"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"cards"},
		"additionalProperties": false,
	}
}

// GenerateDeckCards makes a single call; there are no automatic retries.
// HTTP failures are classified into the package's upstream error kinds.
func (c *client) GenerateDeckCards(ctx context.Context, prompt string) ([]dto.CardContent, error) {
	req := responsesRequest{
		Model: c.model,
		Input: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   "flashcard_batch",
		"schema": cardBatchSchema(),
		"strict": true,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrUpstreamGeneration, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/responses", &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrUpstreamGeneration, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamGeneration, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpstreamGeneration, err)
	}

	switch {
	case httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden:
		c.log.Error("upstream rejected credentials", "status", httpResp.StatusCode)
		return nil, fmt.Errorf("%w: http %d", ErrUpstreamCredentials, httpResp.StatusCode)
	case httpResp.StatusCode == http.StatusTooManyRequests:
		c.log.Warn("upstream rate limited")
		return nil, fmt.Errorf("%w: http %d", ErrUpstreamRateLimit, httpResp.StatusCode)
	case httpResp.StatusCode < 200 || httpResp.StatusCode >= 300:
		c.log.Error("upstream call failed", "status", httpResp.StatusCode, "body", string(raw))
		return nil, fmt.Errorf("%w: http %d", ErrUpstreamGeneration, httpResp.StatusCode)
	}

	var resp responsesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstreamGeneration, err)
	}
	if resp.Refusal != "" {
		return nil, fmt.Errorf("%w: model refused: %s", ErrUpstreamGeneration, resp.Refusal)
	}

	jsonText := extractOutputText(resp)
	if strings.TrimSpace(jsonText) == "" {
		return nil, fmt.Errorf("%w: no output_text in response", ErrUpstreamGeneration)
	}

	var batch struct {
		Cards []dto.CardContent `json:"cards"`
	}
	if err := json.Unmarshal([]byte(jsonText), &batch); err != nil {
		return nil, fmt.Errorf("%w: parsing model JSON: %v", ErrUpstreamGeneration, err)
	}
	return batch.Cards, nil
}
