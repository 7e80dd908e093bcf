package models

type InputType string

const (
	InputChoice InputType = "choice"
	InputNumber InputType = "number"
)

// Question is one form entry for a schema feature. Numeric questions are
// the fallback for features with no usable questionnaire row.
type Question struct {
	Feature string    `json:"feature"`
	Prompt  string    `json:"prompt"`
	Input   InputType `json:"input"`
	Options []string  `json:"options,omitempty"`
	Labels  []int     `json:"labels,omitempty"`
	Min     int       `json:"min"`
	Max     int       `json:"max"`
	Default int       `json:"default"`
}

type QuestionnaireResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
}
