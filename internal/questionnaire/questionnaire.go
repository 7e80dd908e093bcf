package questionnaire

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matchminds/backend/internal/dataset"
	"github.com/matchminds/backend/internal/models"
	"golang.org/x/text/encoding/charmap"
)

// Fallback range for features without a usable questionnaire row.
const (
	fallbackMin     = 0
	fallbackMax     = 10
	fallbackDefault = 5
)

var (
	ErrUnknownOption = errors.New("unknown option")
	ErrNoAnswer      = errors.New("no answer given")
	ErrOutOfRange    = errors.New("value out of range")
)

type entry struct {
	prompt  string
	options []string
	labels  []int
}

// Bank maps canonical feature names to their questionnaire entries.
type Bank struct {
	entries map[string]entry
}

// Load reads the questionnaire file. The file is Windows-1252 encoded.
func Load(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open questionnaire %s: %w", path, err)
	}
	defer f.Close()

	b, err := Parse(charmap.Windows1252.NewDecoder().Reader(f))
	if err != nil {
		return nil, fmt.Errorf("questionnaire %s: %w", path, err)
	}
	return b, nil
}

// Parse reads a UTF-8 questionnaire table with Feature, Question, Options
// and Labels columns. Rows with a malformed option list are skipped and
// later served as numeric questions.
func Parse(r io.Reader) (*Bank, error) {
	t, err := dataset.Parse(r)
	if err != nil {
		return nil, err
	}
	fi := t.ColumnIndex("Feature")
	qi := t.ColumnIndex("Question")
	if fi < 0 || qi < 0 {
		return nil, fmt.Errorf("questionnaire needs Feature and Question columns, got %v", t.Header)
	}
	oi := t.ColumnIndex("Options")
	li := t.ColumnIndex("Labels")

	b := &Bank{entries: make(map[string]entry, len(t.Rows))}
	for _, row := range t.Rows {
		feature := models.CanonicalFeature(row[fi])
		if feature == "" {
			continue
		}
		e := entry{prompt: strings.TrimSpace(row[qi])}
		if oi >= 0 && li >= 0 {
			e.options, e.labels, err = parseChoices(row[oi], row[li])
			if err != nil {
				log.Printf("[questionnaire] %q falls back to numeric input: %v", feature, err)
				e.options, e.labels = nil, nil
			}
		}
		b.entries[feature] = e
	}
	return b, nil
}

func parseChoices(options, labels string) ([]string, []int, error) {
	var opts []string
	for _, o := range strings.Split(options, ",") {
		if o = strings.TrimSpace(o); o != "" {
			opts = append(opts, o)
		}
	}
	var labs []int
	for _, l := range strings.Split(labels, ",") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		n, err := strconv.Atoi(l)
		if err != nil {
			return nil, nil, fmt.Errorf("label %q is not an integer", l)
		}
		labs = append(labs, n)
	}
	if len(opts) == 0 {
		return nil, nil, fmt.Errorf("no options")
	}
	if len(opts) != len(labs) {
		return nil, nil, fmt.Errorf("%d options but %d labels", len(opts), len(labs))
	}
	return opts, labs, nil
}

// Question builds the form entry for one feature. Features with no usable
// row get the generic numeric 0-10 input.
func (b *Bank) Question(feature string) models.Question {
	feature = models.CanonicalFeature(feature)
	e, ok := b.entries[feature]
	if ok && len(e.options) > 0 {
		return models.Question{
			Feature: feature,
			Prompt:  e.prompt,
			Input:   models.InputChoice,
			Options: e.options,
			Labels:  e.labels,
			Min:     minInt(e.labels),
			Max:     maxInt(e.labels),
			Default: e.labels[0],
		}
	}
	prompt := feature
	if ok && e.prompt != "" {
		prompt = e.prompt
	}
	return models.Question{
		Feature: feature,
		Prompt:  prompt,
		Input:   models.InputNumber,
		Min:     fallbackMin,
		Max:     fallbackMax,
		Default: fallbackDefault,
	}
}

// Questions returns the form for every schema feature except age, which the
// form collects separately.
func (b *Bank) Questions(schema []string) []models.Question {
	out := make([]models.Question, 0, len(schema))
	for _, feature := range schema {
		if feature == "age" {
			continue
		}
		out = append(out, b.Question(feature))
	}
	return out
}

// Resolve turns an answer into the numeric label stored in the person
// record. Choice questions accept the option text (case-insensitive) or a
// value equal to one of the labels; numeric questions accept a value in
// range.
func (b *Bank) Resolve(feature string, a models.Answer) (float64, error) {
	q := b.Question(feature)
	if q.Input == models.InputChoice {
		if a.Option != nil {
			want := strings.TrimSpace(*a.Option)
			for i, o := range q.Options {
				if strings.EqualFold(o, want) {
					return float64(q.Labels[i]), nil
				}
			}
			return 0, fmt.Errorf("%s: %q: %w", q.Feature, want, ErrUnknownOption)
		}
		if a.Value != nil {
			for _, l := range q.Labels {
				if float64(l) == *a.Value {
					return *a.Value, nil
				}
			}
			return 0, fmt.Errorf("%s: %v: %w", q.Feature, *a.Value, ErrUnknownOption)
		}
		return 0, fmt.Errorf("%s: %w", q.Feature, ErrNoAnswer)
	}

	if a.Value == nil {
		if a.Option != nil {
			if v, err := strconv.ParseFloat(strings.TrimSpace(*a.Option), 64); err == nil {
				a.Value = &v
			}
		}
		if a.Value == nil {
			return 0, fmt.Errorf("%s: %w", q.Feature, ErrNoAnswer)
		}
	}
	v := *a.Value
	if math.IsNaN(v) || v < float64(q.Min) || v > float64(q.Max) {
		return 0, fmt.Errorf("%s: %v not in [%d, %d]: %w", q.Feature, v, q.Min, q.Max, ErrOutOfRange)
	}
	return v, nil
}

// Len is the number of entries read from the file.
func (b *Bank) Len() int {
	return len(b.entries)
}

func minInt(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxInt(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
