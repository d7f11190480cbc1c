package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReportExport records that an encrypted report left the system.
// 🛡️ Only a keyed fingerprint of the container is kept, never the container or password.
type ReportExport struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	Fingerprint   string    `json:"fingerprint" db:"fingerprint"`
	Conversations int       `json:"conversations" db:"conversations"`
	RequestedBy   string    `json:"requested_by" db:"requested_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type ExportFilter struct {
	UserID string
	Limit  int
	Offset int
}

type ExportAuditRepository interface {
	RecordExport(ctx context.Context, export *ReportExport) error
	ListExports(ctx context.Context, filter ExportFilter) ([]ReportExport, int, error)
	// FindByFingerprint returns the newest export of userID with the given
	// fingerprint, or ErrNotFound.
	FindByFingerprint(ctx context.Context, userID, fingerprint string) (*ReportExport, error)
}
