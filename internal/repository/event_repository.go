package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/easyevent/internal/domain"
)

const eventColumns = `id, title, description, event_type, category_id,
        start_date, start_time, end_date, end_time, location, address,
        price, max_attendees, tickets_available, attendee_count,
        created_by, status, approved_by, approved_at, is_deleted,
        created_at, updated_at`

// EventRepository defines persistence access for events.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	UpdateStatus(ctx context.Context, id string, to domain.EventStatus, from ...domain.EventStatus) error
	Approve(ctx context.Context, id, approverID string, from ...domain.EventStatus) error
	SoftDelete(ctx context.Context, id string) error
	ListPublic(ctx context.Context, upcoming bool) ([]domain.Event, error)
	ListVisible(ctx context.Context, limit, offset int) ([]domain.Event, error)
	ListByOrganizer(ctx context.Context, createdBy string) ([]domain.Event, error)
	CountActiveEnrollments(ctx context.Context, eventID string) (int, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns a Postgres-backed implementation.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (title, description, event_type, category_id,
            start_date, start_time, end_date, end_time, location, address,
            price, max_attendees, tickets_available, created_by, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12,$13,$14)
        RETURNING id, attendee_count, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Type,
		event.CategoryID,
		event.StartDate,
		event.StartTime,
		event.EndDate,
		event.EndTime,
		event.Location,
		event.Address,
		event.Price,
		event.MaxAttendees,
		event.CreatedBy,
		event.Status,
	).Scan(&event.ID, &event.AttendeeCount, &event.CreatedAt, &event.UpdatedAt)
}

// Update overwrites mutable fields and mirrors max_attendees into
// tickets_available, matching creation semantics.
func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	const query = `
        UPDATE events SET title=$1, description=$2, event_type=$3, category_id=$4,
            start_date=$5, start_time=$6, end_date=$7, end_time=$8,
            location=$9, address=$10, price=$11, max_attendees=$12,
            tickets_available=$12, updated_at=NOW()
        WHERE id=$13 AND is_deleted=FALSE`

	cmd, err := r.pool.Exec(ctx, query,
		event.Title,
		event.Description,
		event.Type,
		event.CategoryID,
		event.StartDate,
		event.StartTime,
		event.EndDate,
		event.EndTime,
		event.Location,
		event.Address,
		event.Price,
		event.MaxAttendees,
		event.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE id=$1`

	var event domain.Event
	if err := scanEventRow(r.pool.QueryRow(ctx, query, id), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateStatus moves the event to a new status, guarded by the allowed
// source states so a concurrent transition cannot be overwritten.
func (r *eventRepository) UpdateStatus(ctx context.Context, id string, to domain.EventStatus, from ...domain.EventStatus) error {
	const query = `
        UPDATE events SET status=$1, updated_at=NOW()
        WHERE id=$2 AND is_deleted=FALSE AND status = ANY($3)`

	cmd, err := r.pool.Exec(ctx, query, to, id, statusStrings(from))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) Approve(ctx context.Context, id, approverID string, from ...domain.EventStatus) error {
	const query = `
        UPDATE events SET status=$1, approved_by=$2, approved_at=NOW(), updated_at=NOW()
        WHERE id=$3 AND is_deleted=FALSE AND status = ANY($4)`

	cmd, err := r.pool.Exec(ctx, query, domain.EventStatusApproved, approverID, id, statusStrings(from))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE events SET is_deleted=TRUE, updated_at=NOW() WHERE id=$1 AND is_deleted=FALSE`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) ListPublic(ctx context.Context, upcoming bool) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
        WHERE is_deleted=FALSE AND status=$1 AND start_date >= CURRENT_DATE
        ORDER BY start_date ASC, start_time ASC`
	if !upcoming {
		query = `SELECT ` + eventColumns + ` FROM events
        WHERE is_deleted=FALSE AND status=$1 AND start_date < CURRENT_DATE
        ORDER BY start_date DESC, start_time DESC`
	}

	rows, err := r.pool.Query(ctx, query, domain.EventStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) ListVisible(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events
        WHERE is_deleted=FALSE AND status=$1
        ORDER BY start_date ASC, start_time ASC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, domain.EventStatusPublished, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, createdBy string) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events
        WHERE created_by=$1 AND is_deleted=FALSE
        ORDER BY start_date ASC, start_time ASC`

	rows, err := r.pool.Query(ctx, query, createdBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// CountActiveEnrollments derives the attendee count from enrollment rows.
// It is the reconciliation check for the denormalized counter, never a
// serving-path read.
func (r *eventRepository) CountActiveEnrollments(ctx context.Context, eventID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE event_id=$1 AND status <> $2`

	var count int
	if err := r.pool.QueryRow(ctx, query, eventID, domain.EnrollmentStatusCancelled).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func collectEvents(rows pgx.Rows) ([]domain.Event, error) {
	events := make([]domain.Event, 0)
	for rows.Next() {
		var event domain.Event
		if err := scanEventRow(rows, &event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanEventRow(row pgx.Row, event *domain.Event) error {
	return row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Type,
		&event.CategoryID,
		&event.StartDate,
		&event.StartTime,
		&event.EndDate,
		&event.EndTime,
		&event.Location,
		&event.Address,
		&event.Price,
		&event.MaxAttendees,
		&event.TicketsAvailable,
		&event.AttendeeCount,
		&event.CreatedBy,
		&event.Status,
		&event.ApprovedBy,
		&event.ApprovedAt,
		&event.IsDeleted,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
}

func statusStrings(statuses []domain.EventStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
