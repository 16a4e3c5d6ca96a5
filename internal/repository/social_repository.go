package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/persistence"
)

// SocialRepository stores likes, favorites and follows.
type SocialRepository interface {
	Like(ctx context.Context, userID, modelID string) (int64, error)
	Unlike(ctx context.Context, userID, modelID string) (int64, error)
	IsLiked(ctx context.Context, userID, modelID string) (bool, error)
	Favorite(ctx context.Context, userID, modelID string) error
	Unfavorite(ctx context.Context, userID, modelID string) error
	IsFavorited(ctx context.Context, userID, modelID string) (bool, error)
	ListFavorites(ctx context.Context, userID string, page domain.Page) ([]domain.Model, error)
	CountFavorites(ctx context.Context, userID string) (int64, error)
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
}

type socialRepository struct {
	pool *pgxpool.Pool
}

// NewSocialRepository instantiates repository.
func NewSocialRepository(pool *pgxpool.Pool) SocialRepository {
	return &socialRepository{pool: pool}
}

// Like records a like and returns the model's like count. Liking twice is a no-op.
func (r *socialRepository) Like(ctx context.Context, userID, modelID string) (int64, error) {
	return r.toggleLike(ctx, userID, modelID,
		`INSERT INTO likes (user_id, model_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, 1)
}

// Unlike removes a like and returns the model's like count.
func (r *socialRepository) Unlike(ctx context.Context, userID, modelID string) (int64, error) {
	return r.toggleLike(ctx, userID, modelID,
		`DELETE FROM likes WHERE user_id=$1 AND model_id=$2`, -1)
}

func (r *socialRepository) toggleLike(ctx context.Context, userID, modelID, stmt string, delta int) (int64, error) {
	var count int64
	err := persistence.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, stmt, userID, modelID)
		if err != nil {
			return err
		}
		change := 0
		if cmd.RowsAffected() > 0 {
			change = delta
		}
		return tx.QueryRow(ctx,
			`UPDATE models SET like_count=GREATEST(like_count+$1, 0) WHERE id=$2 RETURNING like_count`, change, modelID,
		).Scan(&count)
	})
	return count, err
}

func (r *socialRepository) IsLiked(ctx context.Context, userID, modelID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM likes WHERE user_id=$1 AND model_id=$2)`, userID, modelID)
}

func (r *socialRepository) Favorite(ctx context.Context, userID, modelID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO favorites (user_id, model_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, modelID)
	return err
}

func (r *socialRepository) Unfavorite(ctx context.Context, userID, modelID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE user_id=$1 AND model_id=$2`, userID, modelID)
	return err
}

func (r *socialRepository) IsFavorited(ctx context.Context, userID, modelID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id=$1 AND model_id=$2)`, userID, modelID)
}

func (r *socialRepository) ListFavorites(ctx context.Context, userID string, page domain.Page) ([]domain.Model, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM favorites f JOIN models m ON m.id=f.model_id
        WHERE f.user_id=$1 AND m.is_public
        ORDER BY f.created_at DESC LIMIT %d OFFSET %d`, modelColumns, page.Limit, page.Offset())

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanModels(rows)
}

func (r *socialRepository) CountFavorites(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM favorites f JOIN models m ON m.id=f.model_id
        WHERE f.user_id=$1 AND m.is_public`, userID).Scan(&total)
	return total, err
}

func (r *socialRepository) Follow(ctx context.Context, followerID, followeeID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, followerID, followeeID)
	return err
}

func (r *socialRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM follows WHERE follower_id=$1 AND followee_id=$2`, followerID, followeeID)
	return err
}

func (r *socialRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id=$1 AND followee_id=$2)`, followerID, followeeID)
}

func (r *socialRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, query, args...).Scan(&ok)
	return ok, err
}
