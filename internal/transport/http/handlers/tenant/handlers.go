package tenanthandler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"orgaudit/internal/domain/activity"
	"orgaudit/internal/domain/auth"
	"orgaudit/internal/domain/org"
	"orgaudit/internal/transport/http/api"
	"orgaudit/internal/transport/http/middleware"
	"orgaudit/internal/transport/http/shared"
)

type OrgService interface {
	LoadEmployeeSet(ctx context.Context, tenantID string) (*org.EmployeeSet, error)
	ReplaceEmployees(ctx context.Context, tenantID string, set *org.EmployeeSet) error
	RunAudit(ctx context.Context, tenantID string, policy org.Policy, opts org.AuditOptions) (string, *org.Report, error)
	CountAuditRuns(ctx context.Context, tenantID string) (int, error)
	ListAuditRuns(ctx context.Context, tenantID string, limit, offset int) ([]org.AuditRun, error)
	GetAuditRun(ctx context.Context, tenantID, runID string) (org.AuditRun, error)
}

// AuditQueue runs tenant audits in the background with the configured policy.
type AuditQueue interface {
	EnqueueAudit(jobType, tenantID string) bool
}

type ActivityLog interface {
	Record(ctx context.Context, evt activity.Event, details any) error
	Count(ctx context.Context, tenantID string, filter activity.Filter) (int, error)
	List(ctx context.Context, tenantID string, filter activity.Filter, limit, offset int) ([]activity.Event, error)
}

type Handler struct {
	Service  OrgService
	Queue    AuditQueue
	Activity ActivityLog
	Policy   org.Policy
	Perms    middleware.PermissionStore
	JobType  string
}

func NewHandler(service OrgService, queue AuditQueue, activityLog ActivityLog, policy org.Policy, perms middleware.PermissionStore, jobType string) *Handler {
	return &Handler{Service: service, Queue: queue, Activity: activityLog, Policy: policy, Perms: perms, JobType: jobType}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tenants/{tenantID}", func(r chi.Router) {
		r.Use(middleware.RequireTenantAccess)
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/employees", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/employees", h.handleReplaceEmployees)
		r.With(middleware.RequirePermission(auth.PermAuditRun, h.Perms)).Post("/audits", h.handleRunAudit)
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/audits", h.handleListRuns)
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/audits/{runID}", h.handleGetRun)
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/activity", h.handleListActivity)
	})
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	tenantID := chi.URLParam(r, "tenantID")
	set, err := h.Service.LoadEmployeeSet(r.Context(), tenantID)
	if err != nil {
		h.fail(w, err, "employee_list_failed", "failed to list employees", requestID)
		return
	}
	employees := set.Employees()
	if employees == nil {
		employees = []org.Employee{}
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleReplaceEmployees(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	tenantID := chi.URLParam(r, "tenantID")
	set, _, ok := shared.ReadEmployeeSet(w, r, requestID)
	if !ok {
		return
	}
	if err := h.Service.ReplaceEmployees(r.Context(), tenantID, set); err != nil {
		h.fail(w, err, "employee_import_failed", "failed to store employees", requestID)
		return
	}
	slog.Info("employees replaced", "tenantId", tenantID, "count", set.Len(), "requestId", requestID)
	h.record(r, activity.ActionEmployeesReplaced, activity.EntityEmployees, tenantID, map[string]int{"employees": set.Len()})
	api.Success(w, map[string]any{
		"tenantId":   tenantID,
		"employees":  set.Len(),
		"validation": org.Validate(set),
	}, requestID)
}

func (h *Handler) handleRunAudit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	tenantID := chi.URLParam(r, "tenantID")
	query := r.URL.Query()

	validator := shared.NewValidator()
	async := validator.Bool("async", query.Get("async"))
	strict := validator.Bool("strict", query.Get("strict"))
	policy := validator.Policy(r, h.Policy)
	if async && (query.Has("minPct") || query.Has("maxPct") || query.Has("maxDepth") || strict) {
		validator.Add("async", "background audits use the configured policy")
	}
	if validator.Reject(w, requestID) {
		return
	}

	if async {
		if h.Queue == nil || !h.Queue.EnqueueAudit(h.JobType, tenantID) {
			api.Fail(w, http.StatusServiceUnavailable, "queue_unavailable", "audit queue is full", requestID)
			return
		}
		h.record(r, activity.ActionAuditQueued, activity.EntityTenant, tenantID, nil)
		api.Accepted(w, map[string]string{"tenantId": tenantID, "status": "queued"}, requestID)
		return
	}

	runID, rep, err := h.Service.RunAudit(r.Context(), tenantID, policy, org.AuditOptions{Strict: strict})
	if err != nil {
		h.fail(w, err, "audit_failed", "audit could not complete", requestID)
		return
	}
	h.record(r, activity.ActionAuditRun, activity.EntityAuditRun, runID, map[string]any{"outcome": rep.Outcome(), "policy": policy})
	api.Created(w, map[string]any{
		"runId":   runID,
		"outcome": rep.Outcome(),
		"report":  rep,
	}, requestID)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	tenantID := chi.URLParam(r, "tenantID")
	page := shared.ParsePagination(r, 20, 100)

	total, err := h.Service.CountAuditRuns(r.Context(), tenantID)
	if err != nil {
		h.fail(w, err, "audit_list_failed", "failed to list audit runs", requestID)
		return
	}
	runs, err := h.Service.ListAuditRuns(r.Context(), tenantID, page.Limit, page.Offset)
	if err != nil {
		h.fail(w, err, "audit_list_failed", "failed to list audit runs", requestID)
		return
	}
	api.Success(w, shared.NewPage(runs, total, page), requestID)
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	run, err := h.Service.GetAuditRun(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "runID"))
	if err != nil {
		h.fail(w, err, "audit_lookup_failed", "failed to load audit run", requestID)
		return
	}
	api.Success(w, run, requestID)
}

func (h *Handler) handleListActivity(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if h.Activity == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "activity log disabled", requestID)
		return
	}
	tenantID := chi.URLParam(r, "tenantID")
	page := shared.ParsePagination(r, 50, 200)
	filter := activity.Filter{
		Action:   strings.TrimSpace(r.URL.Query().Get("action")),
		ClientID: strings.TrimSpace(r.URL.Query().Get("clientId")),
	}

	total, err := h.Activity.Count(r.Context(), tenantID, filter)
	if err != nil {
		h.fail(w, err, "activity_list_failed", "failed to list activity", requestID)
		return
	}
	events, err := h.Activity.List(r.Context(), tenantID, filter, page.Limit, page.Offset)
	if err != nil {
		h.fail(w, err, "activity_list_failed", "failed to list activity", requestID)
		return
	}
	api.Success(w, shared.NewPage(events, total, page), requestID)
}

// record never fails the request; a lost activity row is logged and dropped.
func (h *Handler) record(r *http.Request, action, entityType, entityID string, details any) {
	if h.Activity == nil {
		return
	}
	client, _ := middleware.GetClient(r.Context())
	evt := activity.Event{
		TenantID:   chi.URLParam(r, "tenantID"),
		ClientID:   client.ClientID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         clientIP(r),
	}
	if err := h.Activity.Record(r.Context(), evt, details); err != nil {
		slog.Warn("activity record failed", "action", action, "tenantId", evt.TenantID, "err", err)
	}
}

func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (h *Handler) fail(w http.ResponseWriter, err error, code, message, requestID string) {
	switch {
	case errors.Is(err, org.ErrTenantNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "tenant not found", requestID)
	case errors.Is(err, org.ErrAuditRunNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "audit run not found", requestID)
	case shared.IsPolicyError(err):
		api.Fail(w, http.StatusBadRequest, "invalid_policy", err.Error(), requestID)
	case errors.Is(err, org.ErrInvalidEmployee), errors.Is(err, org.ErrDuplicateEmployee):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_employees", err.Error(), requestID)
	default:
		slog.Error(message, "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
