package insight

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// DefaultTip is shown when no generated tip is available.
const DefaultTip = "True friendship is built on shared values, honesty, and joy. Keep the spark alive by exploring new experiences, supporting one another, and embracing your differences."

// LLMClient is the interface both tip clients satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

type TipRequest struct {
	Friend1    string
	Friend2    string
	Percentage float64
	Category   string
	// SharedHigh lists features both people scored high on.
	SharedHigh []string
}

// Generator turns a compatibility result into a short friendship tip.
type Generator struct {
	llm     LLMClient
	model   string
	timeout time.Duration
}

// NewGenerator picks a client by mode: "api" uses the Anthropic API,
// "mock" returns the canned tip, "off" disables tips.
func NewGenerator(mode, model, apiKey string) *Generator {
	switch mode {
	case "api":
		log.Println("[insight] using Anthropic API:", model)
		return &Generator{llm: NewAPIClient(model, apiKey), model: model, timeout: 10 * time.Second}
	case "off":
		return &Generator{}
	default:
		log.Println("[insight] using canned tips")
		return &Generator{llm: NewMockClient(), model: "mock", timeout: time.Second}
	}
}

func NewGeneratorWithClient(llm LLMClient, model string) *Generator {
	return &Generator{llm: llm, model: model, timeout: 10 * time.Second}
}

func (g *Generator) ModelName() string {
	return g.model
}

// Tip returns a generated tip, or DefaultTip when the client is disabled or
// fails. Failures are logged, never returned to the caller's user.
func (g *Generator) Tip(ctx context.Context, req TipRequest) string {
	if g == nil || g.llm == nil {
		return DefaultTip
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.llm.Generate(ctx, systemPrompt, BuildTipPrompt(req))
	if err != nil {
		log.Printf("[insight] tip generation failed: %v", err)
		return DefaultTip
	}
	tip := strings.TrimSpace(resp.Content)
	if tip == "" {
		return DefaultTip
	}
	return tip
}

const systemPrompt = `You write one short, warm friendship tip (at most two sentences) for two people who just took a friendship compatibility quiz. Do not mention numbers, scores or clusters. Plain text only.`

func BuildTipPrompt(req TipRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Names: %s and %s\n", req.Friend1, req.Friend2)
	fmt.Fprintf(&b, "Result: %s (%.2f%%)\n", req.Category, req.Percentage)
	if len(req.SharedHigh) > 0 {
		fmt.Fprintf(&b, "Both rate highly: %s\n", strings.Join(req.SharedHigh, ", "))
	}
	b.WriteString("Write the tip.")
	return b.String()
}

// ── APIClient: Anthropic SDK ─────────────────────────────

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
		MaxTokens:   256,
		Temperature: param.NewOpt(0.9),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API: %w", err)
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

// ── MockClient: local development ─────────────────────────

var cannedTips = map[string]string{
	"Highly Compatible":   "You already speak the same language. Plan something new together so the friendship keeps growing.",
	"Compatible":          "You have plenty in common. Make time for the things you both love and the rest will follow.",
	"Somewhat Compatible": "Your differences can be a strength. Take turns choosing what to do and stay curious about each other.",
	"Less Compatible":     "Opposites can teach each other a lot. Start small, listen well and be patient with the quirks.",
}

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	tip := DefaultTip
	for category, canned := range cannedTips {
		if strings.Contains(userPrompt, "Result: "+category+" (") {
			tip = canned
			break
		}
	}
	return &LLMResponse{Content: tip}, nil
}
