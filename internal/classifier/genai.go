package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"revcloud-gateway/internal/catalog"
	"revcloud-gateway/internal/common/config"
	apperrors "revcloud-gateway/internal/common/errors"
	"revcloud-gateway/internal/common/logger"
	"revcloud-gateway/internal/common/metrics"
)

// GenAIClassifier calls a chat-completions style understanding service.
type GenAIClassifier struct {
	config config.GenAIConfig
	client *http.Client
	logger logger.Logger
}

func NewGenAIClassifier(cfg config.GenAIConfig, log logger.Logger) *GenAIClassifier {
	return &GenAIClassifier{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		logger: log.With(map[string]interface{}{
			"component": "genai-classifier",
		}),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify briefs the understanding service with the full catalog and the
// query, and decodes its single-intent JSON verdict. Transport failures and
// timeouts surface as CLASSIFIER_UNAVAILABLE; an undecodable verdict surfaces
// as CLASSIFICATION_FAILED. The pipeline never retries either.
func (c *GenAIClassifier) Classify(ctx context.Context, query string, cat *catalog.Catalog) (*Result, error) {
	start := time.Now()
	result, err := c.classify(ctx, query, cat)
	status := "success"
	if err != nil {
		status = strings.ToLower(string(apperrors.CodeOf(err)))
	}
	metrics.ClassifierCallsTotal.WithLabelValues(status).Inc()
	metrics.ClassifierCallDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return result, err
}

func (c *GenAIClassifier) classify(ctx context.Context, query string, cat *catalog.Catalog) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.GetTimeout())
	defer cancel()

	payload := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(query, cat.PromptDocument())},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewClassifierUnavailableError(fmt.Errorf("understanding service timeout: %w", err))
		}
		return nil, apperrors.NewClassifierUnavailableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, apperrors.NewClassifierUnavailableError(fmt.Errorf("understanding service status %d: %v", resp.StatusCode, apiErr))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, apperrors.NewClassificationFailedError(fmt.Sprintf("decode response: %v", err))
	}
	if len(decoded.Choices) == 0 {
		return nil, apperrors.NewClassificationFailedError("empty response from understanding service")
	}

	content := normalizeJSONBlock(decoded.Choices[0].Message.Content)
	if content == "" {
		return nil, apperrors.NewClassificationFailedError("empty verdict from understanding service")
	}

	var verdict struct {
		Intent     string                 `json:"intent"`
		Slots      map[string]interface{} `json:"slots"`
		Confidence float64                `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return nil, apperrors.NewClassificationFailedError(fmt.Sprintf("verdict is not valid JSON: %v", err))
	}
	if verdict.Intent == "" {
		return nil, apperrors.NewClassificationFailedError("verdict missing intent field")
	}

	intent := verdict.Intent
	if _, ok := cat.Lookup(intent); !ok {
		// An undeclared intent name from the service is treated as abstention.
		c.logger.Warn("understanding service returned unknown intent, using fallback", map[string]interface{}{
			"intent": intent,
		})
		intent = cat.Fallback()
	}

	result := &Result{
		Intent:     intent,
		Slots:      stringifySlots(verdict.Slots),
		Confidence: verdict.Confidence,
	}

	c.logger.Info("query classified", map[string]interface{}{
		"intent":     result.Intent,
		"slotCount":  len(result.Slots),
		"confidence": result.Confidence,
	})

	return result, nil
}

// normalizeJSONBlock strips markdown fences and surrounding prose from a model
// verdict, keeping the outermost JSON object.
func normalizeJSONBlock(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.IndexRune(trimmed, '\n'); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		if strings.HasSuffix(trimmed, "```") {
			trimmed = trimmed[:len(trimmed)-3]
		}
	}
	trimmed = strings.TrimSpace(trimmed)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end >= start {
		return trimmed[start : end+1]
	}
	return ""
}

// stringifySlots flattens scalar slot values to strings; the validator does
// the actual type coercion downstream.
func stringifySlots(raw map[string]interface{}) map[string]string {
	slots := make(map[string]string, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case string:
			slots[name] = v
		case float64:
			slots[name] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			slots[name] = strconv.FormatBool(v)
		case nil:
			// Omitted slot; skip.
		default:
			slots[name] = fmt.Sprintf("%v", v)
		}
	}
	return slots
}
