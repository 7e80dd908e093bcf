package models

import "strings"

// Answer is one questionnaire response. Choice questions send Option (the
// option text as displayed), numeric questions send Value.
type Answer struct {
	Option *string  `json:"option,omitempty"`
	Value  *float64 `json:"value,omitempty"`
}

type PersonForm struct {
	Name    string            `json:"name" validate:"max=100"`
	Age     int               `json:"age" validate:"gte=0,lte=150"`
	Answers map[string]Answer `json:"answers" validate:"dive,keys,required,max=100,endkeys"`
}

// Person is a resolved record: canonical feature name to numeric score,
// age included.
type Person struct {
	Name   string             `json:"name"`
	Scores map[string]float64 `json:"scores"`
}

// CanonicalFeature normalizes a header or form key the way the trainer
// names features in the persisted schema.
func CanonicalFeature(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CanonicalName normalizes a person's name for matching against dataset rows.
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
