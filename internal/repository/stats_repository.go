package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrcface/server/internal/domain"
)

// StatsRepository aggregates site-wide counters.
type StatsRepository interface {
	Get(ctx context.Context) (*domain.Stats, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository instantiates repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) Get(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{UsersByRole: map[domain.Role]int64{}}
	if err := r.pool.QueryRow(ctx, `
        SELECT (SELECT COUNT(*) FROM users),
               (SELECT COUNT(*) FROM models),
               (SELECT COUNT(*) FROM tags),
               (SELECT COUNT(*) FROM likes)`,
	).Scan(&stats.Users, &stats.Models, &stats.Tags, &stats.Likes); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			role  string
			count int64
		)
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		stats.UsersByRole[domain.ParseRole(role)] += count
	}
	return stats, rows.Err()
}
