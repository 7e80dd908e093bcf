package models

type Suggestion struct {
	Name         string   `json:"name"`
	Gender       string   `json:"gender"`
	Cluster      int      `json:"cluster"`
	SharedTraits []string `json:"shared_traits"`
	Sentence     string   `json:"sentence"`
}

type SuggestionList struct {
	For         string       `json:"for"`
	Cluster     int          `json:"cluster"`
	Traits      []string     `json:"traits"`
	Suggestions []Suggestion `json:"suggestions"`
}

type SuggestionsResponse struct {
	Friend1 SuggestionList `json:"friend1"`
	Friend2 SuggestionList `json:"friend2"`
}
