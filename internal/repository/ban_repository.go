package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/easyevent/internal/domain"
)

// BanRepository reads the append-only ban audit trail. Writes happen
// through UserRepository.Ban so the audit row and the status flag commit
// together.
type BanRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.BanRecord, error)
}

type banRepository struct {
	pool *pgxpool.Pool
}

// NewBanRepository returns a Postgres-backed implementation.
func NewBanRepository(pool *pgxpool.Pool) BanRepository {
	return &banRepository{pool: pool}
}

func (r *banRepository) ListByUser(ctx context.Context, userID string) ([]domain.BanRecord, error) {
	const query = `
        SELECT id, user_id, banned_by, original_role, ban_reason, banned_at
        FROM banned_users WHERE user_id=$1 ORDER BY banned_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.BanRecord, 0)
	for rows.Next() {
		var rec domain.BanRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.BannedBy, &rec.OriginalRole, &rec.BanReason, &rec.BannedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
