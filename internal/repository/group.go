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

type GroupRepository struct {
	pool *pgxpool.Pool
}

func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

// Create inserts the group and its member rows in one transaction. The caller
// guarantees memberIDs contains the admin; duplicate ids collapse to one row.
func (r *GroupRepository) Create(ctx context.Context, g *model.Group, memberIDs []string) error {
	defer logger.DeferLogDuration("group.Create", time.Now())()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("groupRepo.Create begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO groups (id, name, admin_id, image_url, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		g.ID, g.Name, g.AdminID, g.ImageURL, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("groupRepo.Create insert: %w", err)
	}
	for _, uid := range memberIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO group_members (group_id, user_id, joined_at)
			 VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			g.ID, uid, g.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("groupRepo.Create member: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("groupRepo.Create commit: %w", err)
	}
	return nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id string) (*model.Group, error) {
	defer logger.DeferLogDuration("group.GetByID", time.Now())()
	g := &model.Group{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, admin_id, COALESCE(image_url,''), created_at
		 FROM groups WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.AdminID, &g.ImageURL, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("groupRepo.GetByID: %w", err)
	}
	members, err := r.Members(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Members = members
	return g, nil
}

// GroupsByMember returns the groups the user belongs to, members populated.
func (r *GroupRepository) GroupsByMember(ctx context.Context, userID string) ([]model.Group, error) {
	defer logger.DeferLogDuration("group.GroupsByMember", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT g.id, g.name, g.admin_id, COALESCE(g.image_url,''), g.created_at
		 FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = $1
		 ORDER BY g.created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("groupRepo.GroupsByMember query: %w", err)
	}
	defer rows.Close()

	groups := make([]model.Group, 0, 8)
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.AdminID, &g.ImageURL, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("groupRepo.GroupsByMember scan: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("groupRepo.GroupsByMember rows: %w", err)
	}
	for i := range groups {
		members, err := r.Members(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Members = members
	}
	return groups, nil
}

// Members returns identity-resolved members of a group, ordered by join time.
func (r *GroupRepository) Members(ctx context.Context, groupID string) ([]model.UserPublic, error) {
	defer logger.DeferLogDuration("group.Members", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.full_name, u.avatar_url, u.last_seen_at
		 FROM users u
		 JOIN group_members gm ON gm.user_id = u.id
		 WHERE gm.group_id = $1
		 ORDER BY gm.joined_at`, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("groupRepo.Members query: %w", err)
	}
	defer rows.Close()

	members := make([]model.UserPublic, 0, 8)
	for rows.Next() {
		var u model.UserPublic
		if err := rows.Scan(&u.ID, &u.FullName, &u.AvatarURL, &u.LastSeenAt); err != nil {
			return nil, fmt.Errorf("groupRepo.Members scan: %w", err)
		}
		members = append(members, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("groupRepo.Members rows: %w", err)
	}
	return members, nil
}

func (r *GroupRepository) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	defer logger.DeferLogDuration("group.MemberIDs", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM group_members WHERE group_id = $1`, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("groupRepo.MemberIDs query: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, 8)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("groupRepo.MemberIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("groupRepo.MemberIDs rows: %w", err)
	}
	return ids, nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	defer logger.DeferLogDuration("group.IsMember", time.Now())()
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("groupRepo.IsMember: %w", err)
	}
	return exists, nil
}
