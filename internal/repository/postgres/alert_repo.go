package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NordCoder/nodeping/internal/domain/notification"
	"github.com/jackc/pgx/v5"
)

var _ notification.Journal = (*AlertRepo)(nil)

// AlertRepo stores delivered alerts in the alerts table.
type AlertRepo struct{ db *DB }

func NewAlertRepo(db *DB) *AlertRepo { return &AlertRepo{db: db} }

const (
	qAlertInsert = `
INSERT INTO alerts (target, kind, node_name, node_addr, status, sent_at, payload)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()), $7)
RETURNING id, sent_at;
`
	qAlertRecent = `
SELECT id, target, kind, node_name, node_addr, status, sent_at, payload
FROM alerts
ORDER BY sent_at DESC, id DESC
LIMIT $1;
`
	qAlertByID = `
SELECT id, target, kind, node_name, node_addr, status, sent_at, payload
FROM alerts
WHERE id = $1;
`
)

func (r *AlertRepo) Create(ctx context.Context, a *notification.Record) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qAlertInsert,
		a.Target,
		a.Kind,
		a.NodeName,
		a.NodeAddr,
		a.Status,
		nullTime(a.SentAt),
		a.Payload,
	).Scan(&a.ID, &a.SentAt); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (r *AlertRepo) ListRecent(ctx context.Context, limit int) ([]*notification.Record, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qAlertRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	out := make([]*notification.Record, 0, limit)
	for rows.Next() {
		var a notification.Record
		if err := rows.Scan(&a.ID, &a.Target, &a.Kind, &a.NodeName, &a.NodeAddr, &a.Status, &a.SentAt, &a.Payload); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *AlertRepo) Get(ctx context.Context, id int64) (*notification.Record, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var a notification.Record
	err := r.db.Pool.QueryRow(ctx, qAlertByID, id).
		Scan(&a.ID, &a.Target, &a.Kind, &a.NodeName, &a.NodeAddr, &a.Status, &a.SentAt, &a.Payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alert %d: %w", id, err)
	}
	return &a, nil
}
