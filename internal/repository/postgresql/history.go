package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
)

type historyRepository struct {
	db *database.DB
}

func NewHistoryRepository(db *database.DB) payroll.HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, entry payroll.HistoryEntry) (payroll.HistoryEntry, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.HistoryEntry{}, fmt.Errorf("failed to generate history id: %w", err)
	}
	entry.ID = id.String()

	var detailJSON []byte
	if entry.Detail != nil {
		detailJSON, err = json.Marshal(entry.Detail)
		if err != nil {
			return payroll.HistoryEntry{}, fmt.Errorf("failed to encode history detail: %w", err)
		}
	}

	query := `
		INSERT INTO payroll_history (id, payroll_record_id, actor_id, action, from_status, to_status, reason, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err = q.QueryRow(ctx, query,
		entry.ID, entry.PayrollRecordID, entry.ActorID, entry.Action, entry.FromStatus, entry.ToStatus, entry.Reason, detailJSON,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return payroll.HistoryEntry{}, fmt.Errorf("failed to append payroll history: %w", err)
	}

	return entry, nil
}

func (r *historyRepository) ListByRecord(ctx context.Context, payrollRecordID string) ([]payroll.HistoryEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payroll_record_id, actor_id, action, from_status, to_status, reason, detail, created_at
		FROM payroll_history
		WHERE payroll_record_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, payrollRecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll history: %w", err)
	}
	defer rows.Close()

	var entries []payroll.HistoryEntry
	for rows.Next() {
		var e payroll.HistoryEntry
		var detailBytes []byte
		if err := rows.Scan(
			&e.ID, &e.PayrollRecordID, &e.ActorID, &e.Action, &e.FromStatus, &e.ToStatus, &e.Reason, &detailBytes, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll history: %w", err)
		}
		if len(detailBytes) > 0 {
			_ = json.Unmarshal(detailBytes, &e.Detail)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll history: %w", err)
	}

	return entries, nil
}
