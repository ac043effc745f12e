package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// ErrGenerationUnavailable is the single outcome for every adapter failure:
// transport errors, non-success statuses, and timeouts all normalize to it.
var ErrGenerationUnavailable = errors.New("generation unavailable")

// LLMClient is the interface both generator implementations satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Generator wraps an LLMClient behind a hard timeout. A nil client means no
// generation credential is configured; callers skip generation in that case.
type Generator struct {
	llm     LLMClient
	model   string
	timeout time.Duration
}

const defaultTimeout = 35 * time.Second

func NewGenerator() *Generator {
	timeout := defaultTimeout
	if v := os.Getenv("GENERATION_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			timeout = time.Duration(ms) * time.Millisecond
		}
	}

	if os.Getenv("MOCK_GENERATOR") == "true" {
		log.Println("Generator using mock data")
		return &Generator{llm: NewMockClient(), model: "mock", timeout: timeout}
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		log.Println("Generator disabled: no ANTHROPIC_API_KEY configured")
		return &Generator{timeout: timeout}
	}

	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = "claude-opus-4-5-20251101"
	}
	log.Println("Generator using Anthropic API:", model)
	return &Generator{llm: NewAPIClient(model, apiKey), model: model, timeout: timeout}
}

// NewWithClient builds a generator around an explicit client, mainly for
// tests and custom wiring.
func NewWithClient(llm LLMClient, model string, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Generator{llm: llm, model: model, timeout: timeout}
}

func (g *Generator) ModelName() string {
	return g.model
}

// Timeout reports the configured hard limit for one generation attempt.
func (g *Generator) Timeout() time.Duration {
	if g == nil {
		return 0
	}
	return g.timeout
}

// Enabled reports whether a generation credential (or mock) is configured.
func (g *Generator) Enabled() bool {
	return g != nil && g.llm != nil
}

// GenerateExercises races one completion call against the configured timeout
// and returns the raw response text. Whichever settles first wins; a late
// completion is ignored rather than cancelled.
func (g *Generator) GenerateExercises(ctx context.Context, req PromptRequest) (string, error) {
	if !g.Enabled() {
		return "", ErrGenerationUnavailable
	}

	systemPrompt := SystemPrompt()
	userPrompt := BuildUserPrompt(req)

	type outcome struct {
		resp *LLMResponse
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		resp, err := g.llm.Generate(ctx, systemPrompt, userPrompt)
		ch <- outcome{resp, err}
	}()

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		if out.err != nil {
			log.Printf("WARN: generation failed: %v", out.err)
			return "", ErrGenerationUnavailable
		}
		return out.resp.Content, nil
	case <-timer.C:
		log.Printf("WARN: generation timed out after %v", g.timeout)
		return "", ErrGenerationUnavailable
	case <-ctx.Done():
		log.Printf("WARN: generation cancelled: %v", ctx.Err())
		return "", ErrGenerationUnavailable
	}
}

// ── APIClient — Anthropic SDK (Production) ─────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model, apiKey string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   4096,
		Temperature: param.NewOpt(0.8),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── MockClient — Local Development ─────────────────────────

// MockClient returns a fixed A1 batch regardless of the prompt, enough to
// exercise the full pipeline without a credential.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	return &LLMResponse{
		Content:      buildMockJSON(),
		PromptTokens: 800,
		OutputTokens: 1200,
	}, nil
}

func buildMockJSON() string {
	sentences := []struct {
		sentence, answer, topic string
		distractors             [3]string
	}{
		{"Ich ___ jeden Morgen um sieben Uhr auf.", "stehe", "daily routine", [3]string{"stehst", "steht", "stehen"}},
		{"Wir ___ am Wochenende ins Kino.", "gehen", "free time", [3]string{"gehe", "gehst", "geht"}},
		{"Sie ___ gern Tee mit Zucker.", "trinkt", "food and drink", [3]string{"trinke", "trinkst", "trinken"}},
		{"Er ___ in einem kleinen Dorf.", "wohnt", "daily routine", [3]string{"wohne", "wohnst", "wohnen"}},
	}

	out := `{"exercises":[`
	for i, s := range sentences {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"sentence":%q,"correct_answer":%q,"topic":%q,"level":"A1","distractors":[%q,%q,%q],"explanations":{"en":"[Mock] Present tense conjugation practice.","de":"[Mock] Konjugation im Präsens."},"difficulty_score":1.5}`,
			s.sentence, s.answer, s.topic, s.distractors[0], s.distractors[1], s.distractors[2])
	}
	out += `]}`
	return out
}
