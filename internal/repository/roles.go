package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// RoleRepository is the role directory: it stores (user, role) assignments.
type RoleRepository struct {
	db *pgxpool.Pool
}

// NewRoleRepository constructs a RoleRepository.
func NewRoleRepository(db *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{db: db}
}

// RolesOf returns the set of roles assigned to a user. Unknown tags in the
// table are ignored.
func (r *RoleRepository) RolesOf(ctx context.Context, userID string) (model.RoleSet, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ro.name
		 FROM user_roles ur
		 JOIN roles ro ON ro.id = ur.role_id
		 WHERE ur.user_id = $1`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return 0, fmt.Errorf("scan role: %w", err)
		}
		if role, err := model.ParseRole(name); err == nil {
			roles = append(roles, role)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate roles: %w", err)
	}
	return model.NewRoleSet(roles...), nil
}

// Assign grants role to a user. Granting a role the user already holds is a no-op.
func (r *RoleRepository) Assign(ctx context.Context, userID string, role model.Role) error {
	return assignRole(ctx, r.db, userID, role)
}

func assignRole(ctx context.Context, q querier, userID string, role model.Role) error {
	_, err := q.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id)
		 SELECT $1::uuid, id FROM roles WHERE name = $2
		 ON CONFLICT ON CONSTRAINT unique_user_role DO NOTHING`,
		userID, string(role),
	)
	if err != nil {
		if _, ok := pgError(err, codeForeignKeyViolation); ok {
			return ErrNotFound
		}
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

// Revoke removes role from a user. It returns ErrNotFound when the user
// did not hold the role.
func (r *RoleRepository) Revoke(ctx context.Context, userID string, role model.Role) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM user_roles ur
		 USING roles ro
		 WHERE ur.role_id = ro.id AND ur.user_id = $1 AND ro.name = $2`,
		userID, string(role),
	)
	if err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
