package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PriyaG26/Chat-app/internal/logger"
	"github.com/PriyaG26/Chat-app/internal/model"
)

var ErrNotFound = errors.New("not found")

const userCols = `id, full_name, email, password_hash, avatar_url, last_seen_at, created_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// scanUser scans a row into model.User (order matches userCols).
func scanUser(s interface{ Scan(dest ...any) error }, u *model.User) error {
	return s.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.AvatarURL, &u.LastSeenAt, &u.CreatedAt)
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	defer logger.DeferLogDuration("user.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, full_name, email, password_hash, avatar_url, last_seen_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.FullName, u.Email, u.PasswordHash, u.AvatarURL, u.LastSeenAt, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("userRepo.Create: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	defer logger.DeferLogDuration("user.GetByID", time.Now())()
	u := &model.User{}
	row := r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	defer logger.DeferLogDuration("user.GetByEmail", time.Now())()
	u := &model.User{}
	row := r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByEmail: %w", err)
	}
	return u, nil
}

// ListExcept returns all users except the given one, for the sidebar.
func (r *UserRepository) ListExcept(ctx context.Context, userID string) ([]model.User, error) {
	defer logger.DeferLogDuration("user.ListExcept", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT `+userCols+` FROM users WHERE id != $1 ORDER BY full_name`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("userRepo.ListExcept query: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, 16)
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("userRepo.ListExcept scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("userRepo.ListExcept rows: %w", err)
	}
	return users, nil
}

// UpdateLastSeen records when the user's last live connection went away.
func (r *UserRepository) UpdateLastSeen(ctx context.Context, userID string, t time.Time) error {
	defer logger.DeferLogDuration("user.UpdateLastSeen", time.Now())()
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_seen_at = $1 WHERE id = $2`, t, userID,
	)
	if err != nil {
		return fmt.Errorf("userRepo.UpdateLastSeen: %w", err)
	}
	return nil
}
