package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/persistence"
)

// ModelFilter captures list parameters.
type ModelFilter struct {
	OwnerID        string
	Tag            string
	Query          string
	Sort           domain.ModelSort
	IncludePrivate bool
	Page           domain.Page
}

// ModelRepository encapsulates model persistence.
type ModelRepository interface {
	Create(ctx context.Context, model *domain.Model) error
	Update(ctx context.Context, model *domain.Model) error
	GetByID(ctx context.Context, id string) (*domain.Model, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ModelFilter) ([]domain.Model, error)
	Count(ctx context.Context, filter ModelFilter) (int64, error)
	IncrementDownloads(ctx context.Context, id string) (int64, error)
}

type modelRepository struct {
	pool *pgxpool.Pool
}

// NewModelRepository instantiates repository.
func NewModelRepository(pool *pgxpool.Pool) ModelRepository {
	return &modelRepository{pool: pool}
}

const modelColumns = `m.id, m.owner_id, m.title, m.description, m.file_url, m.thumbnail_url, m.is_public,
       m.download_count, m.like_count, m.created_at, m.updated_at,
       COALESCE((SELECT array_agg(t.name ORDER BY t.name) FROM model_tags mt JOIN tags t ON t.id=mt.tag_id WHERE mt.model_id=m.id), '{}')`

func (r *modelRepository) Create(ctx context.Context, model *domain.Model) error {
	const query = `
        INSERT INTO models (id, owner_id, title, description, file_url, thumbnail_url, is_public)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at, updated_at`

	return persistence.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			model.ID,
			model.OwnerID,
			model.Title,
			model.Description,
			model.FileURL,
			model.ThumbnailURL,
			model.IsPublic,
		).Scan(&model.CreatedAt, &model.UpdatedAt); err != nil {
			return err
		}
		return linkTags(ctx, tx, model.ID, model.Tags)
	})
}

func (r *modelRepository) Update(ctx context.Context, model *domain.Model) error {
	const query = `
        UPDATE models SET title=$1, description=$2, file_url=$3, thumbnail_url=$4, is_public=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`

	return persistence.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			model.Title,
			model.Description,
			model.FileURL,
			model.ThumbnailURL,
			model.IsPublic,
			model.ID,
		).Scan(&model.UpdatedAt); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM model_tags WHERE model_id=$1`, model.ID); err != nil {
			return err
		}
		return linkTags(ctx, tx, model.ID, model.Tags)
	})
}

func (r *modelRepository) GetByID(ctx context.Context, id string) (*domain.Model, error) {
	query := `SELECT ` + modelColumns + ` FROM models m WHERE m.id=$1`
	return scanModel(r.pool.QueryRow(ctx, query, id))
}

func (r *modelRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM models WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *modelRepository) List(ctx context.Context, filter ModelFilter) ([]domain.Model, error) {
	where, args := modelWhere(filter)
	order := "m.created_at DESC"
	if filter.Sort == domain.ModelSortPopular {
		order = "m.like_count DESC, m.download_count DESC, m.created_at DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM models m WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		modelColumns, where, order, filter.Page.Limit, filter.Page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanModels(rows)
}

func (r *modelRepository) Count(ctx context.Context, filter ModelFilter) (int64, error) {
	where, args := modelWhere(filter)
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM models m WHERE `+where, args...).Scan(&total)
	return total, err
}

func (r *modelRepository) IncrementDownloads(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`UPDATE models SET download_count=download_count+1 WHERE id=$1 AND is_public RETURNING download_count`, id,
	).Scan(&count)
	return count, err
}

func modelWhere(filter ModelFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if !filter.IncludePrivate {
		clauses = append(clauses, "m.is_public")
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("m.owner_id=$%d", len(args)))
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		args = append(args, strings.ToLower(tag))
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM model_tags mt JOIN tags t ON t.id=mt.tag_id WHERE mt.model_id=m.id AND t.name=$%d)", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(m.title) LIKE %s OR LOWER(m.description) LIKE %s)", placeholder, placeholder))
	}
	return strings.Join(clauses, " AND "), args
}

func linkTags(ctx context.Context, tx pgx.Tx, modelID string, names []string) error {
	const upsertTag = `
        INSERT INTO tags (id, name) VALUES ($1, $2)
        ON CONFLICT (name) DO UPDATE SET name=EXCLUDED.name
        RETURNING id`

	for _, name := range names {
		var tagID string
		if err := tx.QueryRow(ctx, upsertTag, uuid.NewString(), name).Scan(&tagID); err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO model_tags (model_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, modelID, tagID,
		); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}

func scanModel(row pgx.Row) (*domain.Model, error) {
	var model domain.Model
	if err := row.Scan(
		&model.ID,
		&model.OwnerID,
		&model.Title,
		&model.Description,
		&model.FileURL,
		&model.ThumbnailURL,
		&model.IsPublic,
		&model.DownloadCount,
		&model.LikeCount,
		&model.CreatedAt,
		&model.UpdatedAt,
		&model.Tags,
	); err != nil {
		return nil, err
	}
	return &model, nil
}

func scanModels(rows pgx.Rows) ([]domain.Model, error) {
	result := []domain.Model{}
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *model)
	}
	return result, rows.Err()
}
