package audithandler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"orgaudit/internal/domain/auth"
	"orgaudit/internal/domain/org"
	"orgaudit/internal/platform/cache"
	"orgaudit/internal/report"
	"orgaudit/internal/transport/http/api"
	"orgaudit/internal/transport/http/middleware"
	"orgaudit/internal/transport/http/shared"
)

// Handler serves audits of a CSV request body without touching tenant storage.
type Handler struct {
	Policy   org.Policy
	Cache    cache.Cache
	Recorder org.AuditRecorder
	Perms    middleware.PermissionStore
}

func NewHandler(policy org.Policy, c cache.Cache, recorder org.AuditRecorder, perms middleware.PermissionStore) *Handler {
	return &Handler{Policy: policy, Cache: c, Recorder: recorder, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audits", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermAuditAnalyze, h.Perms))
		r.Post("/validate", h.handleValidate)
		r.Post("/analyze", h.handleAnalyze)
		r.Post("/report.pdf", h.handlePDF)
	})
}

type auditResponse struct {
	Outcome org.Outcome `json:"outcome"`
	Report  *org.Report `json:"report"`
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	validator := shared.NewValidator()
	strict := validator.Bool("strict", r.URL.Query().Get("strict"))
	if validator.Reject(w, requestID) {
		return
	}
	set, _, ok := shared.ReadEmployeeSet(w, r, requestID)
	if !ok {
		return
	}

	rep, err := org.Audit(set, h.Policy, org.AuditOptions{Strict: strict, ValidateOnly: true})
	if err != nil {
		h.failAudit(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{
		"valid":      rep.Outcome() != org.OutcomeValidationFailed,
		"outcome":    rep.Outcome(),
		"validation": rep.Validation,
	}, requestID)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()
	validator := shared.NewValidator()
	policy := validator.Policy(r, h.Policy)
	strict := validator.Bool("strict", query.Get("strict"))
	validator.Enum("format", query.Get("format"), []string{"json", "text"}, "must be json or text")
	if validator.Reject(w, requestID) {
		return
	}
	asText := query.Get("format") == "text"

	set, raw, ok := shared.ReadEmployeeSet(w, r, requestID)
	if !ok {
		return
	}

	key := cache.Key("analyze", policy.Key()+",strict="+strconv.FormatBool(strict), raw)
	if !asText && h.Cache != nil {
		if cached, hit, err := h.Cache.Get(r.Context(), key); err != nil {
			slog.Warn("audit cache read failed", "err", err)
		} else if hit {
			w.Header().Set("X-Cache", "hit")
			api.WriteRaw(w, http.StatusOK, cached, requestID)
			return
		}
	}

	rep, ok := h.audit(w, set, policy, org.AuditOptions{Strict: strict}, requestID)
	if !ok {
		return
	}
	if rep.Outcome() == org.OutcomeValidationFailed {
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "validation_failed", "employee hierarchy failed validation", rep.Validation, requestID)
		return
	}

	if asText {
		var buf bytes.Buffer
		if err := report.WriteText(&buf, rep, report.TextOptions{}); err != nil {
			slog.Error("text report failed", "requestId", requestID, "err", err)
			api.Fail(w, http.StatusInternalServerError, "render_failed", "failed to render report", requestID)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
		return
	}

	payload, err := json.Marshal(auditResponse{Outcome: rep.Outcome(), Report: rep})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "render_failed", "failed to encode report", requestID)
		return
	}
	if h.Cache != nil {
		if err := h.Cache.Set(r.Context(), key, payload); err != nil {
			slog.Warn("audit cache write failed", "err", err)
		}
	}
	api.WriteRaw(w, http.StatusOK, payload, requestID)
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	validator := shared.NewValidator()
	policy := validator.Policy(r, h.Policy)
	if validator.Reject(w, requestID) {
		return
	}
	set, _, ok := shared.ReadEmployeeSet(w, r, requestID)
	if !ok {
		return
	}

	rep, ok := h.audit(w, set, policy, org.AuditOptions{}, requestID)
	if !ok {
		return
	}
	if rep.Outcome() == org.OutcomeValidationFailed {
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "validation_failed", "employee hierarchy failed validation", rep.Validation, requestID)
		return
	}

	var buf bytes.Buffer
	if err := report.WritePDF(&buf, rep, report.PDFOptions{}); err != nil {
		slog.Error("pdf report failed", "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "render_failed", "failed to render report", requestID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="org-audit.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) audit(w http.ResponseWriter, set *org.EmployeeSet, policy org.Policy, opts org.AuditOptions, requestID string) (*org.Report, bool) {
	start := time.Now()
	rep, err := org.Audit(set, policy, opts)
	if err != nil {
		h.record(org.RunStatusFailed, start, nil)
		h.failAudit(w, err, requestID)
		return nil, false
	}
	status := org.RunStatusCompleted
	if rep.Outcome() == org.OutcomeValidationFailed {
		status = org.RunStatusInvalid
	}
	h.record(status, start, rep)
	return rep, true
}

func (h *Handler) record(status string, start time.Time, rep *org.Report) {
	if h.Recorder != nil {
		h.Recorder.RecordAudit(status, time.Since(start), rep)
	}
}

func (h *Handler) failAudit(w http.ResponseWriter, err error, requestID string) {
	if shared.IsPolicyError(err) {
		api.Fail(w, http.StatusBadRequest, "invalid_policy", err.Error(), requestID)
		return
	}
	slog.Error("audit failed", "requestId", requestID, "structural", org.IsStructural(err), "err", err)
	api.Fail(w, http.StatusInternalServerError, "audit_failed", "audit could not complete", requestID)
}
