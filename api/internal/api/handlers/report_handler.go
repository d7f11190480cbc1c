package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
	"github.com/careerdesk/careerdesk/api/internal/core/services"
)

// ==============================================================================
// 1. Request Payloads (Input Validation)
// ==============================================================================

type GenerateReportRequest struct {
	Payload         domain.ReportPayload `json:"payload"`
	Password        string               `json:"password" validate:"min=4,max=1024"`
	ConfirmPassword string               `json:"confirmPassword" validate:"eqfield=Password"`
}

type OpenReportRequest struct {
	Container string `json:"container" validate:"required_without=HTML"`
	HTML      string `json:"html" validate:"required_without=Container"`
	Password  string `json:"password" validate:"required,max=1024"`
}

// ==============================================================================
// 2. The Handler Struct (Dependency Injection)
// ==============================================================================

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// ==============================================================================
// 3. HTTP Methods
// ==============================================================================

// Generate handles POST /api/v1/reports
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateReportRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	if err := validate.Struct(req); err != nil {
		HandleError(w, r, passwordPolicyError(err))
		return
	}

	rep, err := h.Service.GenerateReport(r.Context(), req.Payload, req.Password)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	writeReport(w, rep)
}

// Open handles POST /api/v1/reports/open. It accepts either the bare container
// or the whole downloaded HTML file.
func (h *ReportHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenReportRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		HandleError(w, r, err)
		return
	}

	var (
		payload *domain.ReportPayload
		err     error
	)
	if req.Container != "" {
		payload, err = h.Service.OpenReport(r.Context(), req.Container, req.Password)
	} else {
		payload, err = h.Service.OpenReportHTML(r.Context(), []byte(req.HTML), req.Password)
	}
	if err != nil {
		HandleError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, payload)
}

// writeReport streams the viewer as a download.
func writeReport(w http.ResponseWriter, rep *domain.Report) {
	w.Header().Set("Content-Type", rep.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rep.Filename))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	w.Write(rep.Body)
}

// passwordPolicyError turns validator failures on the password pair into the
// same sentinels the service layer uses, so clients see one message per rule.
func passwordPolicyError(err error) error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	for _, fe := range vErrs {
		switch fe.Field() {
		case "Password":
			if fe.Tag() == "min" {
				return domain.ErrWeakPassword
			}
		case "ConfirmPassword":
			return domain.ErrPasswordMismatch
		}
	}
	return err
}
