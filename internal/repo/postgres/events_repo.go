package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/agenda/internal/daterange"
	"github.com/geocoder89/agenda/internal/domain/event"
	"github.com/geocoder89/agenda/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEventsRepo(pool *pgxpool.Pool, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{pool: pool, prom: prom}
}

func (r *EventsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const eventColumns = `
	e.id::text, e.title, e.description, e.start_date, e.end_date, e.start_time, e.end_time,
	e.unit_id::text, un.name, e.category, e.location, e.organizer, e.attendees, e.color,
	e.created_at, e.updated_at`

func scanEvent(row pgx.Row) (event.Event, error) {
	var (
		e                  event.Event
		startDate, endDate time.Time
		startTime, endTime pgtype.Time
	)

	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&startDate,
		&endDate,
		&startTime,
		&endTime,
		&e.UnitID,
		&e.UnitName,
		&e.Category,
		&e.Location,
		&e.Organizer,
		&e.Attendees,
		&e.Color,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return event.Event{}, err
	}

	e.Range = daterange.Stored{Start: daterange.DateOf(startDate), End: daterange.DateOf(endDate)}
	e.StartTime = clockFromPg(startTime)
	e.EndTime = clockFromPg(endTime)

	return e, nil
}

func clockToPg(c daterange.Clock) pgtype.Time {
	return pgtype.Time{Microseconds: int64(c.Minutes()) * int64(time.Minute/time.Microsecond), Valid: true}
}

func clockFromPg(t pgtype.Time) daterange.Clock {
	return daterange.ClockFromMinutes(int(t.Microseconds / int64(time.Minute/time.Microsecond)))
}

// List filters on the stored columns. end_date is exclusive, hence the
// strict comparison against the window start.
func (r *EventsRepo) List(ctx context.Context, f event.ListFilter) ([]event.Event, error) {
	baseQuery := `SELECT ` + eventColumns + `
		FROM events e
		JOIN units un ON un.id = e.unit_id`

	var conds []string
	var args []any

	argsPosition := 1

	if f.UnitID != nil {
		conds = append(conds, fmt.Sprintf("e.unit_id = $%d", argsPosition))
		args = append(args, *f.UnitID)
		argsPosition++
	}

	if !f.Window.From.IsZero() {
		conds = append(conds, fmt.Sprintf("e.end_date > $%d", argsPosition))
		args = append(args, f.Window.From.Time())
		argsPosition++
	}

	if !f.Window.To.IsZero() {
		conds = append(conds, fmt.Sprintf("e.start_date <= $%d", argsPosition))
		args = append(args, f.Window.To.Time())
	}

	query := baseQuery
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY e.start_date ASC, e.start_time ASC, e.id ASC"

	out := make([]event.Event, 0)

	err := r.observe("events.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEvent(rows)
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		if isInvalidID(err) {
			return []event.Event{}, nil
		}
		return nil, err
	}

	return out, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	var e event.Event

	err := r.observe("events.get_by_id", func() error {
		var err error
		e, err = scanEvent(r.pool.QueryRow(ctx, `
			SELECT `+eventColumns+`
			FROM events e
			JOIN units un ON un.id = e.unit_id
			WHERE e.id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) (event.Event, error) {
	var out event.Event

	err := r.observe("events.create", func() error {
		var err error
		out, err = scanEvent(r.pool.QueryRow(ctx, `
			WITH e AS (
				INSERT INTO events (
					id, title, description, start_date, end_date, start_time, end_time,
					unit_id, category, location, organizer, attendees, color, created_at, updated_at
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
				RETURNING *
			)
			SELECT `+eventColumns+`
			FROM e
			JOIN units un ON un.id = e.unit_id`,
			e.ID, e.Title, e.Description, e.Range.Start.Time(), e.Range.End.Time(),
			clockToPg(e.StartTime), clockToPg(e.EndTime), e.UnitID, e.Category,
			e.Location, e.Organizer, e.Attendees, e.Color, e.CreatedAt, e.UpdatedAt,
		))
		return err
	})
	if err != nil {
		if IsForeignKeyViolation(err) || isInvalidID(err) {
			return event.Event{}, event.ErrUnitNotFound
		}
		return event.Event{}, err
	}

	return out, nil
}

func (r *EventsRepo) Update(ctx context.Context, e event.Event) (event.Event, error) {
	var out event.Event

	err := r.observe("events.update", func() error {
		var err error
		out, err = scanEvent(r.pool.QueryRow(ctx, `
			WITH e AS (
				UPDATE events
				SET title = $2,
					description = $3,
					start_date = $4,
					end_date = $5,
					start_time = $6,
					end_time = $7,
					unit_id = $8,
					category = $9,
					location = $10,
					organizer = $11,
					attendees = $12,
					color = $13,
					updated_at = NOW()
				WHERE id = $1
				RETURNING *
			)
			SELECT `+eventColumns+`
			FROM e
			JOIN units un ON un.id = e.unit_id`,
			e.ID, e.Title, e.Description, e.Range.Start.Time(), e.Range.End.Time(),
			clockToPg(e.StartTime), clockToPg(e.EndTime), e.UnitID, e.Category,
			e.Location, e.Organizer, e.Attendees, e.Color,
		))
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return event.Event{}, event.ErrNotFound
		case IsForeignKeyViolation(err), isInvalidID(err):
			return event.Event{}, event.ErrUnitNotFound
		}
		return event.Event{}, err
	}

	return out, nil
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("events.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		if isInvalidID(err) {
			return event.ErrNotFound
		}
		return err
	}

	// if no rows were deleted the event never existed
	if affected == 0 {
		return event.ErrNotFound
	}

	return nil
}
