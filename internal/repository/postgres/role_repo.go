package postgres

import (
	"context"
	"database/sql"

	"pollboard/internal/authz"
)

// RoleRepo backs the authorizer with a one-row-per-grant table.
type RoleRepo struct {
	db *sql.DB
}

func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

func (r *RoleRepo) HasRole(ctx context.Context, userID string, role authz.Role) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
        SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)
    `, userID, string(role)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Grant is idempotent; it is used at startup to seed the configured admin.
func (r *RoleRepo) Grant(ctx context.Context, userID string, role authz.Role) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO user_roles (user_id, role)
        VALUES ($1, $2)
        ON CONFLICT (user_id, role) DO NOTHING
    `, userID, string(role))
	return err
}
