package compatibility

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/matchminds/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a finished check together with both resolved answer sets.
func (s *Store) Record(ctx context.Context, c models.CompatibilityCheck, p1, p2 models.Person, inertia float64) error {
	a1, err := json.Marshal(p1.Scores)
	if err != nil {
		return fmt.Errorf("encode friend1 answers: %w", err)
	}
	a2, err := json.Marshal(p2.Scores)
	if err != nil {
		return fmt.Errorf("encode friend2 answers: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO compatibility_checks
		    (id, friend1_name, friend2_name, friend1_cluster, friend2_cluster,
		     individual_similarity, centroid_similarity, percentage, category,
		     friend1_answers, friend2_answers, model_inertia, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.Friend1Name, c.Friend2Name, c.Friend1Cluster, c.Friend2Cluster,
		c.IndividualSimilarity, c.CentroidSimilarity, c.Percentage, c.Category,
		string(a1), string(a2), inertia, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert check: %w", err)
	}
	return nil
}

func (s *Store) ListChecks(ctx context.Context, limit, offset int) ([]models.CompatibilityCheck, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM compatibility_checks`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count checks: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, friend1_name, friend2_name, friend1_cluster, friend2_cluster,
		        individual_similarity, centroid_similarity, percentage, category, created_at
		 FROM compatibility_checks
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list checks: %w", err)
	}
	defer rows.Close()

	var checks []models.CompatibilityCheck
	for rows.Next() {
		var c models.CompatibilityCheck
		if err := rows.Scan(&c.ID, &c.Friend1Name, &c.Friend2Name, &c.Friend1Cluster, &c.Friend2Cluster,
			&c.IndividualSimilarity, &c.CentroidSimilarity, &c.Percentage, &c.Category, &c.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan check: %w", err)
		}
		checks = append(checks, c)
	}
	return checks, total, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (*models.StatsResponse, error) {
	stats := &models.StatsResponse{ByCategory: []models.CategoryCount{}}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(percentage), 0) FROM compatibility_checks`,
	).Scan(&stats.TotalChecks, &stats.AveragePercentage)
	if err != nil {
		return nil, fmt.Errorf("check totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM compatibility_checks
		 GROUP BY category ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc models.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		stats.ByCategory = append(stats.ByCategory, cc)
	}
	return stats, rows.Err()
}
