package questionnaire

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matchminds/backend/internal/models"
)

const table = `Feature,Question,Options,Labels
Honesty ,How honest are you with friends?,"Never, Sometimes, Always","1, 3, 5"
Traveling,Do you enjoy traveling?,"No, Yes","1, 5"
Reading Books,Do you read?,"Rarely, Often","1, x"
Respect,How much do you value respect?,"Low, High","1"
`

func mustParse(t *testing.T) *Bank {
	t.Helper()
	b, err := Parse(strings.NewReader(table))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return b
}

func strPtr(s string) *string   { return &s }
func numPtr(v float64) *float64 { return &v }

func TestQuestionChoice(t *testing.T) {
	b := mustParse(t)
	q := b.Question("honesty")
	if q.Input != models.InputChoice {
		t.Fatalf("Input = %q, want choice", q.Input)
	}
	if len(q.Options) != 3 || q.Options[2] != "Always" {
		t.Errorf("Options = %v", q.Options)
	}
	if q.Labels[1] != 3 || q.Min != 1 || q.Max != 5 || q.Default != 1 {
		t.Errorf("labels=%v min=%d max=%d default=%d", q.Labels, q.Min, q.Max, q.Default)
	}
}

func TestMalformedEntriesFallBackToNumeric(t *testing.T) {
	b := mustParse(t)
	for _, feature := range []string{"reading books", "respect", "video gaming"} {
		q := b.Question(feature)
		if q.Input != models.InputNumber {
			t.Errorf("Question(%q).Input = %q, want number", feature, q.Input)
		}
		if q.Min != 0 || q.Max != 10 || q.Default != 5 {
			t.Errorf("Question(%q) range = [%d,%d] default %d, want [0,10] default 5", feature, q.Min, q.Max, q.Default)
		}
	}
	if got := b.Question("respect").Prompt; got != "How much do you value respect?" {
		t.Errorf("fallback keeps the prompt text, got %q", got)
	}
	if got := b.Question("video gaming").Prompt; got != "video gaming" {
		t.Errorf("unknown feature prompt = %q, want the feature name", got)
	}
}

func TestQuestionsSkipsAge(t *testing.T) {
	b := mustParse(t)
	qs := b.Questions([]string{"age", "honesty", "traveling"})
	if len(qs) != 2 {
		t.Fatalf("len = %d, want 2", len(qs))
	}
	if qs[0].Feature != "honesty" || qs[1].Feature != "traveling" {
		t.Errorf("order = %s, %s", qs[0].Feature, qs[1].Feature)
	}
}

func TestResolve(t *testing.T) {
	b := mustParse(t)
	tests := []struct {
		feature string
		answer  models.Answer
		want    float64
		err     error
	}{
		{"honesty", models.Answer{Option: strPtr("always")}, 5, nil},
		{"honesty", models.Answer{Option: strPtr(" Sometimes ")}, 3, nil},
		{"honesty", models.Answer{Value: numPtr(3)}, 3, nil},
		{"honesty", models.Answer{Value: numPtr(4)}, 0, ErrUnknownOption},
		{"honesty", models.Answer{Option: strPtr("Often")}, 0, ErrUnknownOption},
		{"honesty", models.Answer{}, 0, ErrNoAnswer},
		{"video gaming", models.Answer{Value: numPtr(7)}, 7, nil},
		{"video gaming", models.Answer{Option: strPtr("8")}, 8, nil},
		{"video gaming", models.Answer{Value: numPtr(11)}, 0, ErrOutOfRange},
		{"video gaming", models.Answer{}, 0, ErrNoAnswer},
	}
	for _, tt := range tests {
		got, err := b.Resolve(tt.feature, tt.answer)
		if !errors.Is(err, tt.err) {
			t.Errorf("Resolve(%q) error = %v, want %v", tt.feature, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.feature, got, tt.want)
		}
	}
}

func TestLoadDecodesWindows1252(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questionnaire.csv")
	// 0x92 is a right single quotation mark in Windows-1252.
	raw := []byte("Feature,Question,Options,Labels\nHonesty,You\x92re honest?,\"No, Yes\",\"1, 5\"\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := b.Question("honesty").Prompt; got != "You’re honest?" {
		t.Errorf("Prompt = %q, want %q", got, "You’re honest?")
	}
	if b.Len() != 1 {
		t.Errorf("Len = %d, want 1", b.Len())
	}
}
