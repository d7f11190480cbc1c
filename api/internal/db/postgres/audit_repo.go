package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
)

var _ domain.ExportAuditRepository = (*AuditRepo)(nil)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// 🛡️ RecordExport is append-only: exports are never updated or deleted through the API.
func (r *AuditRepo) RecordExport(ctx context.Context, export *domain.ReportExport) error {
	const query = `
		INSERT INTO report_exports (id, user_id, fingerprint, conversations, requested_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		export.ID,
		export.UserID,
		export.Fingerprint,
		export.Conversations,
		export.RequestedBy,
		export.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

// ListExports pages through the audit log, newest first.
func (r *AuditRepo) ListExports(ctx context.Context, filter domain.ExportFilter) ([]domain.ReportExport, int, error) {
	query := `SELECT id, user_id, fingerprint, conversations, requested_by, created_at FROM report_exports WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM report_exports WHERE 1=1`

	filterParts := ""
	var args []any
	argCount := 1

	if filter.UserID != "" {
		filterParts += fmt.Sprintf(" AND user_id = $%d", argCount)
		args = append(args, filter.UserID)
		argCount++
	}

	query += filterParts
	countQuery += filterParts

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count exports: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch exports: %w", err)
	}

	exports, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.ReportExport])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan exports: %w", err)
	}
	return exports, total, nil
}

func (r *AuditRepo) FindByFingerprint(ctx context.Context, userID, fingerprint string) (*domain.ReportExport, error) {
	const query = `
		SELECT id, user_id, fingerprint, conversations, requested_by, created_at
		FROM report_exports
		WHERE user_id = $1 AND fingerprint = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	rows, err := r.pool.Query(ctx, query, userID, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to find export: %w", err)
	}
	export, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domain.ReportExport])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan export: %w", err)
	}
	return &export, nil
}

// PurgeExportsBefore deletes audit entries created before cutoff.
func (r *AuditRepo) PurgeExportsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM report_exports WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge exports: %w", err)
	}
	return tag.RowsAffected(), nil
}
