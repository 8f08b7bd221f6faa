package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"travel-service/internal/models"
)

// ActivityLogRepository receives one bulk write per saga window instead of
// one write per event.
type ActivityLogRepository interface {
	InsertBatch(ctx context.Context, entries []models.ActivityEntry) error
}

// ActivityLogRepo is a sqlx-backed implementation.
type ActivityLogRepo struct {
	db *sqlx.DB
}

// NewActivityLogRepo constructs an ActivityLogRepo.
func NewActivityLogRepo(db *sqlx.DB) *ActivityLogRepo {
	return &ActivityLogRepo{db: db}
}

// InsertBatch writes all entries in a single multi-row INSERT.
func (r *ActivityLogRepo) InsertBatch(ctx context.Context, entries []models.ActivityEntry) error {
	if len(entries) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(entries))
	args := make([]any, 0, len(entries)*4)
	for i, e := range entries {
		base := i * 4
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		data := e.Data
		if data == nil {
			data = []byte(`{}`)
		}
		args = append(args, e.UserID, e.Action, []byte(data), e.OccurredAt)
	}

	query := `INSERT INTO activity_log (user_id, action, data, occurred_at) VALUES ` + strings.Join(placeholders, ", ")
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}
