package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/dealscout/deal-engine/internal/metrics"
	domain "github.com/dealscout/deal-engine/pkg/types"
)

const demandSystemMsg = `You estimate resale market demand for a marketplace listing.
Respond with a JSON object: {"demand_score": <integer 0-100>}.
0 means no buyer interest, 50 is typical, 100 is exceptional demand.`

// OpenAICompat implements Enhancer using an OpenAI chat completions
// API. Compatible with vLLM, text-generation-inference, LM Studio, etc.
//
// Calls are rate limited; when the limiter has no budget the enhancer
// declines to override rather than queueing scoring work behind it.
type OpenAICompat struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
}

// OpenAICompatOption configures the OpenAICompat enhancer.
type OpenAICompatOption func(*OpenAICompat)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) OpenAICompatOption {
	return func(b *OpenAICompat) {
		b.client = c
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) OpenAICompatOption {
	return func(b *OpenAICompat) {
		b.apiKey = key
	}
}

// WithRateLimit caps enhancer calls at n per minute.
func WithRateLimit(n int) OpenAICompatOption {
	return func(b *OpenAICompat) {
		if n > 0 {
			b.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
		}
	}
}

// NewOpenAICompat creates an OpenAI-compatible demand enhancer.
func NewOpenAICompat(endpoint, model string, opts ...OpenAICompatOption) *OpenAICompat {
	b := &OpenAICompat{
		endpoint: endpoint,
		model:    model,
		apiKey:   os.Getenv("OPENAI_API_KEY"),
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(time.Second), 5),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the enhancer name.
func (*OpenAICompat) Name() string {
	return "openai_compat"
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	ResponseFmt *respFmt      `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFmt struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type demandResult struct {
	DemandScore int `json:"demand_score"`
}

// DemandScore asks the model for a demand estimate. Any failure is
// returned to the caller, which treats it as "no override".
func (b *OpenAICompat) DemandScore(ctx context.Context, l *domain.Listing) (int, bool, error) {
	if !b.limiter.Allow() {
		return 0, false, nil
	}

	metrics.EnhanceCallsTotal.Inc()
	start := time.Now()
	defer func() {
		metrics.EnhanceDuration.Observe(time.Since(start).Seconds())
	}()

	prompt := fmt.Sprintf(
		"Category: %s\nBrand: %s\nModel: %s\nTitle: %s\nPrice: %.2f\nCondition: %s",
		l.Category, l.Brand, l.Model, l.Title, l.Price, l.Condition,
	)

	body, err := json.Marshal(chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: demandSystemMsg},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   64,
		ResponseFmt: &respFmt{Type: "json_object"},
	})
	if err != nil {
		return 0, false, fmt.Errorf("marshaling request: %w", err)
	}

	url := b.endpoint + "/v1/chat/completions"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, false, fmt.Errorf("creating HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		metrics.EnhanceFailuresTotal.Inc()
		return 0, false, fmt.Errorf("calling openai-compatible API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.EnhanceFailuresTotal.Inc()
		return 0, false, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.EnhanceFailuresTotal.Inc()
		return 0, false, fmt.Errorf(
			"openai-compatible API error (status %d): %s",
			resp.StatusCode, string(respBody),
		)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return 0, false, fmt.Errorf("parsing response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return 0, false, fmt.Errorf("empty choices from openai-compatible API")
	}

	var result demandResult
	if err := json.Unmarshal([]byte(chatResp.Choices[0].Message.Content), &result); err != nil {
		return 0, false, fmt.Errorf("parsing demand result: %w", err)
	}

	if result.DemandScore < 0 || result.DemandScore > 100 {
		return 0, false, fmt.Errorf("demand score %d out of range", result.DemandScore)
	}

	return result.DemandScore, true, nil
}
