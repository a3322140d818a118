package repository

import (
	"context"
	"time"

	"fleetops/internal/domain"
)

// NotificationRepo provides notification access within a single tenant's store.
type NotificationRepo struct {
	db DBTX
}

func NewNotificationRepo(db DBTX) *NotificationRepo {
	return &NotificationRepo{db: db}
}

var _ domain.NotificationRepository = (*NotificationRepo)(nil)

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, title, message, is_read, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Message, boolToInt(n.IsRead), now)
	if err != nil {
		return nil, mapDBError(err)
	}
	created := *n
	created.CreatedAt = now
	return &created, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	return requireRow(res, "notification %q not found", id)
}

func (r *NotificationRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Notification, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&total); err != nil {
		return nil, 0, mapDBError(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, message, is_read, created_at FROM notifications
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

// DeleteReadBefore removes read notifications created before the cutoff.
// Used by the retention job.
func (r *NotificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE is_read = 1 AND created_at < ?`, cutoff)
	if err != nil {
		return 0, mapDBError(err)
	}
	return res.RowsAffected()
}
