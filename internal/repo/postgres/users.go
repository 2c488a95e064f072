package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/agenda/internal/domain/user"
	"github.com/geocoder89/agenda/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const userColumns = `
	u.id::text, u.external_id, u.name, u.email, u.password_hash, u.role,
	u.unit_id::text, un.name, u.created_at, u.updated_at`

const userFrom = `
	FROM users u
	LEFT JOIN units un ON un.id = u.unit_id`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.ExternalID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.UnitID,
		&u.UnitName,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *UsersRepo) List(ctx context.Context, unitID *string) ([]user.User, error) {
	query := `SELECT ` + userColumns + userFrom
	var args []any

	if unitID != nil {
		query += ` WHERE u.unit_id = $1`
		args = append(args, *unitID)
	}
	query += ` ORDER BY u.name ASC, u.id ASC`

	out := make([]user.User, 0)

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})
	if err != nil {
		if isInvalidID(err) {
			return []user.User{}, nil
		}
		return nil, err
	}

	return out, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `u.id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", `u.email = $1`, email)
}

func (r *UsersRepo) getOne(ctx context.Context, op, where string, arg any) (user.User, error) {
	var u user.User

	err := r.observe(op, func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+userFrom+` WHERE `+where, arg))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx, "users.email_taken", "email", email, excludeID)
}

func (r *UsersRepo) ExternalIDTaken(ctx context.Context, externalID, excludeID string) (bool, error) {
	return r.exists(ctx, "users.external_id_taken", "external_id", externalID, excludeID)
}

// exists compares id as text so an exclude value that is not a UUID simply
// excludes nothing.
func (r *UsersRepo) exists(ctx context.Context, op, column, value, excludeID string) (bool, error) {
	var found bool

	query := fmt.Sprintf(`SELECT EXISTS(
		SELECT 1 FROM users
		WHERE %s = $1 AND ($2 = '' OR id::text <> $2)
	)`, column)

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx, query, value, excludeID).Scan(&found)
	})
	if err != nil {
		return false, err
	}

	return found, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO users (id, external_id, name, email, password_hash, role, unit_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			u.ID, u.ExternalID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.UnitID, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return user.User{}, mapUserWriteErr(err)
	}

	return r.GetByID(ctx, u.ID)
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	var affected int64

	err := r.observe("users.update", func() error {
		tag, err := r.pool.Exec(ctx, `
			UPDATE users
			SET external_id = $2,
				name = $3,
				email = $4,
				password_hash = $5,
				role = $6,
				unit_id = $7,
				updated_at = NOW()
			WHERE id = $1`,
			u.ID, u.ExternalID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.UnitID,
		)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		if isInvalidID(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, mapUserWriteErr(err)
	}

	if affected == 0 {
		return user.User{}, user.ErrNotFound
	}

	return r.GetByID(ctx, u.ID)
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		if isInvalidID(err) {
			return user.ErrNotFound
		}
		return err
	}

	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}

// mapUserWriteErr turns constraint violations into domain errors. A race
// that slips past the explicit pre-check ends up here.
func mapUserWriteErr(err error) error {
	switch {
	case IsUniqueViolation(err, constraintUserEmail):
		return user.ErrEmailTaken
	case IsUniqueViolation(err, constraintUserExternalID):
		return user.ErrExternalIDTaken
	case IsForeignKeyViolation(err):
		return user.ErrUnitNotFound
	case IsCheckViolation(err, constraintUserRoleUnit):
		return user.ErrRoleUnitMismatch
	default:
		return err
	}
}
