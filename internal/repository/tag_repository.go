package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrcface/server/internal/domain"
)

// TagRepository manages tag persistence.
type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	Rename(ctx context.Context, id, name string) (*domain.Tag, error)
	GetByID(ctx context.Context, id string) (*domain.Tag, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Tag, error)
}

type tagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository instantiates repository.
func NewTagRepository(pool *pgxpool.Pool) TagRepository {
	return &tagRepository{pool: pool}
}

func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO tags (id, name) VALUES ($1, $2) RETURNING created_at`, tag.ID, tag.Name,
	).Scan(&tag.CreatedAt)
}

func (r *tagRepository) Rename(ctx context.Context, id, name string) (*domain.Tag, error) {
	var tag domain.Tag
	if err := r.pool.QueryRow(ctx,
		`UPDATE tags SET name=$1 WHERE id=$2 RETURNING id, name, created_at`, name, id,
	).Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	var tag domain.Tag
	if err := r.pool.QueryRow(ctx, `
        SELECT t.id, t.name, t.created_at, (SELECT COUNT(*) FROM model_tags mt WHERE mt.tag_id=t.id)
        FROM tags t WHERE t.id=$1`, id,
	).Scan(&tag.ID, &tag.Name, &tag.CreatedAt, &tag.UsageCount); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *tagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT t.id, t.name, t.created_at, COUNT(mt.model_id)
        FROM tags t LEFT JOIN model_tags mt ON mt.tag_id=t.id
        GROUP BY t.id
        ORDER BY COUNT(mt.model_id) DESC, t.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Tag{}
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt, &tag.UsageCount); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, rows.Err()
}
