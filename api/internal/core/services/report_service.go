package services

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
	"github.com/careerdesk/careerdesk/api/internal/core/utils"
	"github.com/careerdesk/careerdesk/api/internal/report"
	"github.com/careerdesk/careerdesk/api/internal/telemetry"
)

const reportContentType = "text/html; charset=utf-8"

//go:embed payload_schema.json
var payloadSchemaJSON string

// ReportService turns consultation histories into password-protected HTML reports.
type ReportService struct {
	cipher         domain.ReportCipher
	builder        *report.Builder
	users          domain.UserRepository
	conversations  domain.ConversationRepository
	audit          domain.ExportAuditRepository
	schema         *gojsonschema.Schema
	fingerprintKey []byte
	metrics        *telemetry.Metrics
	logger         *slog.Logger
	now            func() time.Time
}

type ReportServiceDeps struct {
	Cipher         domain.ReportCipher
	Builder        *report.Builder
	Users          domain.UserRepository
	Conversations  domain.ConversationRepository
	Audit          domain.ExportAuditRepository
	FingerprintKey []byte
	Metrics        *telemetry.Metrics
	Logger         *slog.Logger
}

func NewReportService(deps ReportServiceDeps) (*ReportService, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(payloadSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("report service: compile payload schema: %w", err)
	}
	if deps.Metrics == nil {
		deps.Metrics = telemetry.Noop()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &ReportService{
		cipher:         deps.Cipher,
		builder:        deps.Builder,
		users:          deps.Users,
		conversations:  deps.Conversations,
		audit:          deps.Audit,
		schema:         schema,
		fingerprintKey: deps.FingerprintKey,
		metrics:        deps.Metrics,
		logger:         deps.Logger,
		now:            time.Now,
	}, nil
}

// ValidateReportPassword applies the caller-side policy before any cryptographic work.
func ValidateReportPassword(password, confirmation string) error {
	if utf8.RuneCountInString(password) < domain.MinReportPasswordLength {
		return domain.ErrWeakPassword
	}
	if password != confirmation {
		return domain.ErrPasswordMismatch
	}
	return nil
}

// GenerateReport seals the payload under password and renders the viewer around it.
func (s *ReportService) GenerateReport(ctx context.Context, payload domain.ReportPayload, password string) (*domain.Report, error) {
	return s.generate(ctx, payload, password, "payload")
}

func (s *ReportService) generate(ctx context.Context, payload domain.ReportPayload, password, source string) (*domain.Report, error) {
	if utf8.RuneCountInString(password) < domain.MinReportPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	// 1. Serialization and schema problems surface before any key is derived.
	plaintext, err := s.serialize(payload)
	if err != nil {
		return nil, err
	}
	defer wipe(plaintext)

	// 2. Seal
	start := time.Now()
	container, err := s.cipher.Seal(ctx, plaintext, password)
	if err != nil {
		s.logger.Error("Report sealing failed", slog.String("user_id", payload.UserID), slog.Any("error", err))
		return nil, err
	}
	s.metrics.SealDuration.Observe(time.Since(start).Seconds())

	// 3. Render the self-contained viewer
	body, err := s.builder.Build(container)
	if err != nil {
		return nil, err
	}

	created := s.now()
	s.metrics.ReportsGenerated.WithLabelValues(source).Inc()
	s.logger.Info("Report generated",
		slog.String("user_id", payload.UserID),
		slog.Int("conversations", len(payload.Conversations)),
		slog.String("source", source),
	)

	return &domain.Report{
		Filename:    ReportFilename(payload.UserID, created),
		ContentType: reportContentType,
		Body:        body,
		Container:   container,
		CreatedAt:   created,
	}, nil
}

func (s *ReportService) serialize(payload domain.ReportPayload) ([]byte, error) {
	if payload.Conversations == nil {
		payload.Conversations = []domain.StoredConversation{}
	}
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(plaintext))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPayload, strings.Join(msgs, "; "))
	}
	return plaintext, nil
}

// GenerateStoredReport builds a report from the user's persisted history and
// records the export in the audit log.
func (s *ReportService) GenerateStoredReport(ctx context.Context, userID string, analysis *domain.UserAnalysisCache, password, requestedBy string) (*domain.Report, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	history, _, err := s.conversations.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	payload := domain.ReportPayload{
		UserID:        userID,
		Conversations: history.Data,
		AnalysisCache: analysis,
	}

	rep, err := s.generate(ctx, payload, password, "stored")
	if err != nil {
		return nil, err
	}

	// 🛡️ Fail closed: a report that cannot be audited is not handed out.
	export := &domain.ReportExport{
		ID:            uuid.New(),
		UserID:        userID,
		Fingerprint:   utils.Fingerprint(s.fingerprintKey, rep.Container),
		Conversations: len(history.Data),
		RequestedBy:   requestedBy,
		CreatedAt:     rep.CreatedAt,
	}
	if err := s.audit.RecordExport(ctx, export); err != nil {
		s.logger.Error("Failed to record report export", slog.String("user_id", userID), slog.Any("error", err))
		return nil, fmt.Errorf("record export: %w", err)
	}

	return rep, nil
}

// OpenReport is the server-side mirror of the viewer script.
func (s *ReportService) OpenReport(ctx context.Context, container, password string) (*domain.ReportPayload, error) {
	plaintext, err := s.cipher.Open(ctx, container, password)
	if err != nil {
		s.metrics.ReportOpens.WithLabelValues("rejected").Inc()
		return nil, err
	}
	defer wipe(plaintext)

	var payload domain.ReportPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		s.metrics.ReportOpens.WithLabelValues("rejected").Inc()
		return nil, domain.ErrReportDecryption
	}

	s.metrics.ReportOpens.WithLabelValues("opened").Inc()
	return &payload, nil
}

// OpenReportHTML accepts a downloaded viewer file instead of a bare container.
func (s *ReportService) OpenReportHTML(ctx context.Context, html []byte, password string) (*domain.ReportPayload, error) {
	container, err := report.ExtractContainer(html)
	if err != nil {
		s.metrics.ReportOpens.WithLabelValues("rejected").Inc()
		return nil, domain.ErrReportDecryption
	}
	return s.OpenReport(ctx, container, password)
}

// FindExport reports which audit entry, if any, issued the given container.
func (s *ReportService) FindExport(ctx context.Context, userID, container string) (*domain.ReportExport, error) {
	export, err := s.audit.FindByFingerprint(ctx, userID, utils.Fingerprint(s.fingerprintKey, container))
	if err != nil {
		return nil, err
	}
	if !utils.MatchFingerprint(s.fingerprintKey, container, export.Fingerprint) {
		return nil, domain.ErrNotFound
	}
	return export, nil
}

func (s *ReportService) ListExports(ctx context.Context, filter domain.ExportFilter) ([]domain.ReportExport, int, error) {
	return s.audit.ListExports(ctx, filter)
}

// ReportFilename builds "report_<userId>_<YYYY-MM-DD>.html", replacing anything
// outside [A-Za-z0-9_-] in the user id so the name is safe in a header.
func ReportFilename(userID string, at time.Time) string {
	var b strings.Builder
	for _, r := range userID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return fmt.Sprintf("report_%s_%s.html", b.String(), at.UTC().Format("2006-01-02"))
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
