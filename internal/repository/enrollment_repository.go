package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/easyevent/internal/domain"
)

var (
	// ErrEventFull signals the capacity guard rejected the enrollment.
	ErrEventFull = errors.New("event capacity reached")
	// ErrAlreadyEnrolled signals an active enrollment already exists for
	// the (user, event) pair.
	ErrAlreadyEnrolled = errors.New("user already enrolled for event")
)

const enrollmentColumns = `id, user_id, event_id, status, payment_status,
        payment_amount, ticket_type, enrolled_at, updated_at`

// EnrollmentRepository defines persistence access for enrollments. Enroll
// and Remove touch both the enrollment row and the owning event's
// counters; each runs in a single transaction.
type EnrollmentRepository interface {
	Enroll(ctx context.Context, enrollment *domain.Enrollment) error
	Remove(ctx context.Context, enrollmentID, userID string) error
	GetByID(ctx context.Context, id string) (*domain.Enrollment, error)
	GetActiveByUserAndEvent(ctx context.Context, userID, eventID string) (*domain.Enrollment, error)
	UpdateStatus(ctx context.Context, id string, status domain.EnrollmentStatus, payment domain.PaymentStatus) (*domain.Enrollment, error)
	ListForUser(ctx context.Context, userID string) ([]domain.EnrolledEvent, error)
}

type enrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository returns a Postgres-backed implementation.
func NewEnrollmentRepository(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepository{pool: pool}
}

// Enroll inserts the enrollment and bumps the event counters atomically.
// The conditional counter update serializes concurrent enrollments on the
// event row: with N seats, exactly N inserts can ever succeed.
func (r *enrollmentRepository) Enroll(ctx context.Context, enrollment *domain.Enrollment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const claimSeat = `
        UPDATE events
        SET attendee_count = attendee_count + 1,
            tickets_available = GREATEST(tickets_available - 1, 0),
            updated_at = NOW()
        WHERE id=$1 AND is_deleted=FALSE AND attendee_count < max_attendees`

	cmd, err := tx.Exec(ctx, claimSeat, enrollment.EventID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEventFull
	}

	const insert = `
        INSERT INTO enrollments (user_id, event_id, status, payment_status, payment_amount, ticket_type)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, enrolled_at, updated_at`

	if err := tx.QueryRow(ctx, insert,
		enrollment.UserID,
		enrollment.EventID,
		enrollment.Status,
		enrollment.PaymentStatus,
		enrollment.PaymentAmount,
		enrollment.TicketType,
	).Scan(&enrollment.ID, &enrollment.EnrolledAt, &enrollment.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyEnrolled
		}
		return err
	}

	return tx.Commit(ctx)
}

// Remove deletes the caller's enrollment and releases the seat atomically.
// The counter is clamped at zero; underflow would mean the counter and the
// rows already disagreed.
func (r *enrollmentRepository) Remove(ctx context.Context, enrollmentID, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const del = `DELETE FROM enrollments WHERE id=$1 AND user_id=$2 RETURNING event_id`

	var eventID string
	if err := tx.QueryRow(ctx, del, enrollmentID, userID).Scan(&eventID); err != nil {
		return err
	}

	const releaseSeat = `
        UPDATE events
        SET attendee_count = GREATEST(attendee_count - 1, 0),
            tickets_available = LEAST(tickets_available + 1, max_attendees),
            updated_at = NOW()
        WHERE id=$1`

	if _, err := tx.Exec(ctx, releaseSeat, eventID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id=$1`

	var enrollment domain.Enrollment
	if err := scanEnrollmentRow(r.pool.QueryRow(ctx, query, id), &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) GetActiveByUserAndEvent(ctx context.Context, userID, eventID string) (*domain.Enrollment, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments
        WHERE user_id=$1 AND event_id=$2 AND status <> $3`

	var enrollment domain.Enrollment
	if err := scanEnrollmentRow(r.pool.QueryRow(ctx, query, userID, eventID, domain.EnrollmentStatusCancelled), &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// UpdateStatus is an administrative correction with no counter side effect.
func (r *enrollmentRepository) UpdateStatus(ctx context.Context, id string, status domain.EnrollmentStatus, payment domain.PaymentStatus) (*domain.Enrollment, error) {
	const query = `
        UPDATE enrollments SET status=$1, payment_status=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING ` + enrollmentColumns

	var enrollment domain.Enrollment
	if err := scanEnrollmentRow(r.pool.QueryRow(ctx, query, status, payment, id), &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) ListForUser(ctx context.Context, userID string) ([]domain.EnrolledEvent, error) {
	const query = `
        SELECT en.id, en.user_id, en.event_id, en.status, en.payment_status,
               en.payment_amount, en.ticket_type, en.enrolled_at, en.updated_at,
               ` + prefixedEventColumns + `
        FROM enrollments en
        JOIN events ev ON ev.id = en.event_id
        WHERE en.user_id=$1 AND en.status <> $2
        ORDER BY ev.start_date ASC, ev.start_time ASC`

	rows, err := r.pool.Query(ctx, query, userID, domain.EnrollmentStatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.EnrolledEvent, 0)
	for rows.Next() {
		var item domain.EnrolledEvent
		if err := rows.Scan(
			&item.Enrollment.ID,
			&item.Enrollment.UserID,
			&item.Enrollment.EventID,
			&item.Enrollment.Status,
			&item.Enrollment.PaymentStatus,
			&item.Enrollment.PaymentAmount,
			&item.Enrollment.TicketType,
			&item.Enrollment.EnrolledAt,
			&item.Enrollment.UpdatedAt,
			&item.Event.ID,
			&item.Event.Title,
			&item.Event.Description,
			&item.Event.Type,
			&item.Event.CategoryID,
			&item.Event.StartDate,
			&item.Event.StartTime,
			&item.Event.EndDate,
			&item.Event.EndTime,
			&item.Event.Location,
			&item.Event.Address,
			&item.Event.Price,
			&item.Event.MaxAttendees,
			&item.Event.TicketsAvailable,
			&item.Event.AttendeeCount,
			&item.Event.CreatedBy,
			&item.Event.Status,
			&item.Event.ApprovedBy,
			&item.Event.ApprovedAt,
			&item.Event.IsDeleted,
			&item.Event.CreatedAt,
			&item.Event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const prefixedEventColumns = `ev.id, ev.title, ev.description, ev.event_type, ev.category_id,
               ev.start_date, ev.start_time, ev.end_date, ev.end_time, ev.location, ev.address,
               ev.price, ev.max_attendees, ev.tickets_available, ev.attendee_count,
               ev.created_by, ev.status, ev.approved_by, ev.approved_at, ev.is_deleted,
               ev.created_at, ev.updated_at`

func scanEnrollmentRow(row pgx.Row, enrollment *domain.Enrollment) error {
	return row.Scan(
		&enrollment.ID,
		&enrollment.UserID,
		&enrollment.EventID,
		&enrollment.Status,
		&enrollment.PaymentStatus,
		&enrollment.PaymentAmount,
		&enrollment.TicketType,
		&enrollment.EnrolledAt,
		&enrollment.UpdatedAt,
	)
}
