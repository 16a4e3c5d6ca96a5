package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/persistence"
)

// AccountFilter captures admin search parameters.
type AccountFilter struct {
	Query string
	Role  domain.Role
	Page  domain.Page
}

// AccountRepository defines persistence access for account records.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	GetProfile(ctx context.Context, username string) (*domain.Profile, error)
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	Count(ctx context.Context, filter AccountFilter) (int64, error)
	Delete(ctx context.Context, id string) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, username, display_name, avatar_url, bio, is_verified, role, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO users (id, username, display_name, avatar_url, bio, is_verified, role)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		account.ID,
		account.Username,
		account.DisplayName,
		account.AvatarURL,
		account.Bio,
		account.IsVerified,
		string(account.Role.Effective()),
	).Scan(&account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE users SET username=$1, display_name=$2, avatar_url=$3, bio=$4, is_verified=$5, role=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		account.Username,
		account.DisplayName,
		account.AvatarURL,
		account.Bio,
		account.IsVerified,
		string(account.Role.Effective()),
		account.ID,
	).Scan(&account.UpdatedAt)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE id=$1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE username=$1`
	return scanAccount(r.pool.QueryRow(ctx, query, username))
}

func (r *accountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username=$1)`, username).Scan(&exists)
	return exists, err
}

func (r *accountRepository) GetProfile(ctx context.Context, username string) (*domain.Profile, error) {
	query := `
        SELECT ` + accountColumns + `,
               (SELECT COUNT(*) FROM follows WHERE followee_id=users.id),
               (SELECT COUNT(*) FROM follows WHERE follower_id=users.id),
               (SELECT COUNT(*) FROM models WHERE owner_id=users.id AND is_public)
        FROM users WHERE username=$1`

	var (
		profile domain.Profile
		role    string
	)
	a := &profile.Account
	if err := r.pool.QueryRow(ctx, query, username).Scan(
		&a.ID, &a.Username, &a.DisplayName, &a.AvatarURL, &a.Bio, &a.IsVerified, &role, &a.CreatedAt, &a.UpdatedAt,
		&profile.FollowerCount,
		&profile.FollowingCount,
		&profile.ModelCount,
	); err != nil {
		return nil, err
	}
	a.Role = domain.ParseRole(role)
	return &profile, nil
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]domain.Account, error) {
	where, args := accountWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		accountColumns, where, filter.Page.Limit, filter.Page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *account)
	}
	return result, rows.Err()
}

func (r *accountRepository) Count(ctx context.Context, filter AccountFilter) (int64, error) {
	where, args := accountWhere(filter)
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total)
	return total, err
}

// Delete removes the account record and its identity in one transaction.
// Likes, favorites, follows and models cascade.
func (r *accountRepository) Delete(ctx context.Context, id string) error {
	return persistence.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		_, err = tx.Exec(ctx, `DELETE FROM identities WHERE id=$1`, id)
		return err
	})
}

func accountWhere(filter AccountFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(username) LIKE %s OR LOWER(display_name) LIKE %s)", placeholder, placeholder))
	}
	if filter.Role.Valid() {
		args = append(args, string(filter.Role))
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account domain.Account
		role    string
	)
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.DisplayName,
		&account.AvatarURL,
		&account.Bio,
		&account.IsVerified,
		&role,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	account.Role = domain.ParseRole(role)
	return &account, nil
}
