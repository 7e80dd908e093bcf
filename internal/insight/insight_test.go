package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type failingClient struct{}

func (failingClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (*LLMResponse, error) {
	return nil, errors.New("boom")
}

type blankClient struct{}

func (blankClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (*LLMResponse, error) {
	return &LLMResponse{Content: "   "}, nil
}

func TestBuildTipPrompt(t *testing.T) {
	p := BuildTipPrompt(TipRequest{
		Friend1:    "Ana",
		Friend2:    "Ben",
		Percentage: 83.456,
		Category:   "Highly Compatible",
		SharedHigh: []string{"honesty", "traveling"},
	})
	for _, want := range []string{"Ana and Ben", "Highly Compatible (83.46%)", "honesty, traveling"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestMockTipFollowsCategory(t *testing.T) {
	g := NewGenerator("mock", "", "")
	got := g.Tip(context.Background(), TipRequest{Category: "Less Compatible"})
	if got != cannedTips["Less Compatible"] {
		t.Errorf("Tip = %q", got)
	}
	// "Compatible" must not match inside "Less Compatible" and vice versa.
	got = g.Tip(context.Background(), TipRequest{Category: "Compatible"})
	if got != cannedTips["Compatible"] {
		t.Errorf("Tip = %q", got)
	}
}

func TestTipFallsBack(t *testing.T) {
	tests := []struct {
		name string
		g    *Generator
	}{
		{"nil", nil},
		{"off", NewGenerator("off", "", "")},
		{"failing", NewGeneratorWithClient(failingClient{}, "x")},
		{"blank", NewGeneratorWithClient(blankClient{}, "x")},
	}
	for _, tt := range tests {
		if got := tt.g.Tip(context.Background(), TipRequest{}); got != DefaultTip {
			t.Errorf("%s: Tip = %q, want DefaultTip", tt.name, got)
		}
	}
}
