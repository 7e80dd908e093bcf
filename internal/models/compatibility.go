package models

type CompatibilityRequest struct {
	Friend1 PersonForm `json:"friend1"`
	Friend2 PersonForm `json:"friend2"`
}

type Category struct {
	Name    string `json:"name"`
	Quote   string `json:"quote"`
	Comment string `json:"comment"`
	Color   string `json:"color"`
}

const (
	CategoryHighlyCompatible   = "Highly Compatible"
	CategoryCompatible         = "Compatible"
	CategorySomewhatCompatible = "Somewhat Compatible"
	CategoryLessCompatible     = "Less Compatible"
)

type PersonResult struct {
	Name              string   `json:"name"`
	Cluster           int      `json:"cluster"`
	DefaultedFeatures []string `json:"defaulted_features,omitempty"`
}

type CompatibilityResponse struct {
	ID                   string       `json:"id"`
	Friend1              PersonResult `json:"friend1"`
	Friend2              PersonResult `json:"friend2"`
	IndividualSimilarity float64      `json:"individual_similarity"`
	CentroidSimilarity   float64      `json:"centroid_similarity"`
	Percentage           float64      `json:"percentage"`
	Category             Category     `json:"category"`
	Tip                  string       `json:"tip"`
	SessionToken         string       `json:"session_token"`
}

// ── Form Gating ─────────────────────────────────────────

type FormStage string

const (
	StageNeedName    FormStage = "need_name"
	StageNeedAge     FormStage = "need_age"
	StageNeedAnswers FormStage = "need_answers"
	StageLocked      FormStage = "locked"
	StageComplete    FormStage = "complete"
)

type PersonProgress struct {
	Stage    FormStage `json:"stage"`
	Answered int       `json:"answered"`
	Expected int       `json:"expected"`
	Missing  []string  `json:"missing,omitempty"`
}

type FormProgress struct {
	Friend1 PersonProgress `json:"friend1"`
	Friend2 PersonProgress `json:"friend2"`
	Ready   bool           `json:"ready"`
}

type IncompleteResponse struct {
	Error    string       `json:"error"`
	Progress FormProgress `json:"progress"`
}

// Session is what the suggestion step needs from a finished check.
type Session struct {
	CheckID        string  `json:"check_id"`
	Friend1Name    string  `json:"friend1_name"`
	Friend2Name    string  `json:"friend2_name"`
	Friend1Cluster int     `json:"friend1_cluster"`
	Friend2Cluster int     `json:"friend2_cluster"`
	Percentage     float64 `json:"percentage"`
	Category       string  `json:"category"`
	// Model is the fingerprint of the clustering model that assigned the
	// cluster ids.
	Model string `json:"model"`
}
