package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/agenda/internal/domain/unit"
	"github.com/geocoder89/agenda/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UnitsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUnitsRepo(pool *pgxpool.Pool, prom *observability.Prom) *UnitsRepo {
	return &UnitsRepo{pool: pool, prom: prom}
}

func (r *UnitsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UnitsRepo) List(ctx context.Context) ([]unit.Unit, error) {
	out := make([]unit.Unit, 0)

	err := r.observe("units.list", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT id::text, name, created_at, updated_at
			FROM units
			ORDER BY name ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u unit.Unit
			if err := rows.Scan(&u.ID, &u.Name, &u.CreatedAt, &u.UpdatedAt); err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *UnitsRepo) GetByID(ctx context.Context, id string) (unit.Unit, error) {
	var u unit.Unit

	err := r.observe("units.get_by_id", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT id::text, name, created_at, updated_at
			FROM units
			WHERE id = $1`, id,
		).Scan(&u.ID, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return unit.Unit{}, unit.ErrNotFound
		}
		return unit.Unit{}, err
	}

	return u, nil
}

func (r *UnitsRepo) Create(ctx context.Context, u unit.Unit) (unit.Unit, error) {
	err := r.observe("units.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO units (id, name, created_at, updated_at)
			VALUES ($1, $2, $3, $4)`,
			u.ID, u.Name, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if IsUniqueViolation(err, constraintUnitName) {
			return unit.Unit{}, unit.ErrNameTaken
		}
		return unit.Unit{}, err
	}

	return u, nil
}

func (r *UnitsRepo) Rename(ctx context.Context, id, name string) (unit.Unit, error) {
	var u unit.Unit

	err := r.observe("units.rename", func() error {
		return r.pool.QueryRow(ctx, `
			UPDATE units
			SET name = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING id::text, name, created_at, updated_at`,
			id, name,
		).Scan(&u.ID, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows), isInvalidID(err):
			return unit.Unit{}, unit.ErrNotFound
		case IsUniqueViolation(err, constraintUnitName):
			return unit.Unit{}, unit.ErrNameTaken
		}
		return unit.Unit{}, err
	}

	return u, nil
}

// Delete cascades to events in the schema. users.unit_id is RESTRICT, so a
// unit with members fails with a foreign key violation.
func (r *UnitsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("units.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		switch {
		case isInvalidID(err):
			return unit.ErrNotFound
		case IsForeignKeyViolation(err):
			return unit.ErrInUse
		}
		return err
	}

	if affected == 0 {
		return unit.ErrNotFound
	}
	return nil
}
