package models

import "time"

// CompatibilityCheck is one recorded check in the history table.
type CompatibilityCheck struct {
	ID                   string    `json:"id"`
	Friend1Name          string    `json:"friend1_name"`
	Friend2Name          string    `json:"friend2_name"`
	Friend1Cluster       int       `json:"friend1_cluster"`
	Friend2Cluster       int       `json:"friend2_cluster"`
	IndividualSimilarity float64   `json:"individual_similarity"`
	CentroidSimilarity   float64   `json:"centroid_similarity"`
	Percentage           float64   `json:"percentage"`
	Category             string    `json:"category"`
	CreatedAt            time.Time `json:"created_at"`
}

type CheckListResponse struct {
	Checks   []CompatibilityCheck `json:"checks"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type StatsResponse struct {
	TotalChecks       int             `json:"total_checks"`
	AveragePercentage float64         `json:"average_percentage"`
	ByCategory        []CategoryCount `json:"by_category"`
}

type ReloadResponse struct {
	Features int       `json:"features"`
	Clusters int       `json:"clusters"`
	Rows     int       `json:"rows"`
	Model    string    `json:"model"`
	LoadedAt time.Time `json:"loaded_at"`
}
