package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
	"github.com/careerdesk/careerdesk/api/internal/core/services"
	"github.com/careerdesk/careerdesk/api/internal/report"
)

type StoredReportRequest struct {
	Password        string                    `json:"password" validate:"min=4,max=1024"`
	ConfirmPassword string                    `json:"confirmPassword" validate:"eqfield=Password"`
	AnalysisCache   *domain.UserAnalysisCache `json:"analysisCache"`
}

type VerifyExportRequest struct {
	UserID    string `json:"userId" validate:"required,max=100"`
	Container string `json:"container" validate:"required_without=HTML"`
	HTML      string `json:"html" validate:"required_without=Container"`
}

type exportPage struct {
	Exports []domain.ReportExport `json:"exports"`
	Total   int                   `json:"total"`
}

// AdminHandler backs the counsellor console.
type AdminHandler struct {
	Users   *services.UserService
	Reports *services.ReportService
}

func NewAdminHandler(users *services.UserService, reports *services.ReportService) *AdminHandler {
	return &AdminHandler{Users: users, Reports: reports}
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		HandleError(w, r, err)
		return
	}
	if users == nil {
		users = []domain.UserInfo{}
	}
	writeJSON(w, http.StatusOK, users)
}

// GenerateUserReport handles POST /api/v1/admin/users/{id}/report
func (h *AdminHandler) GenerateUserReport(w http.ResponseWriter, r *http.Request) {
	admin, ok := domain.AdminFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req StoredReportRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		HandleError(w, r, passwordPolicyError(err))
		return
	}

	rep, err := h.Reports.GenerateStoredReport(r.Context(), chi.URLParam(r, "id"), req.AnalysisCache, req.Password, admin.Subject)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	writeReport(w, rep)
}

// ListExports handles GET /api/v1/admin/exports?user_id=&limit=&offset=
func (h *AdminHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ExportFilter{UserID: q.Get("user_id")}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	exports, total, err := h.Reports.ListExports(r.Context(), filter)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	if exports == nil {
		exports = []domain.ReportExport{}
	}
	writeJSON(w, http.StatusOK, exportPage{Exports: exports, Total: total})
}

// VerifyExport handles POST /api/v1/admin/exports/verify: given a report that
// surfaced somewhere, find the audit entry that issued it. No password needed.
func (h *AdminHandler) VerifyExport(w http.ResponseWriter, r *http.Request) {
	var req VerifyExportRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		HandleError(w, r, err)
		return
	}

	container := req.Container
	if container == "" {
		extracted, err := report.ExtractContainer([]byte(req.HTML))
		if err != nil {
			HandleError(w, r, domain.ErrNotFound)
			return
		}
		container = extracted
	}

	export, err := h.Reports.FindExport(r.Context(), req.UserID, container)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}
