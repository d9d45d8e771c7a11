package shared

import (
	"errors"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"orgaudit/internal/domain/org"
	"orgaudit/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]ValidationIssue, 0, 4)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{
		Field:  field,
		Reason: reason,
	})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

func (v *Validator) Enum(field, value string, allowed []string, reason string) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return
	}
	for _, candidate := range allowed {
		if normalized == strings.ToLower(strings.TrimSpace(candidate)) {
			return
		}
	}
	v.Add(field, reason)
}

// Float parses an optional query value; ok is false only when raw is present and malformed.
func (v *Validator) Float(field, raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		v.Add(field, "must be a number")
		return 0, false
	}
	return value, true
}

func (v *Validator) Int(field, raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		v.Add(field, "must be an integer")
		return 0, false
	}
	return value, true
}

// Bool accepts the strconv.ParseBool spellings and treats an empty value as false.
func (v *Validator) Bool(field, raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		v.Add(field, "must be true or false")
		return false
	}
	return value
}

// Policy overlays the minPct, maxPct and maxDepth query parameters on base.
// Percentages are whole percents on the wire, so minPct=10 means 0.10.
func (v *Validator) Policy(r *http.Request, base org.Policy) org.Policy {
	query := r.URL.Query()
	policy := base
	if pct, ok := v.Float("minPct", query.Get("minPct")); ok {
		policy.MinAbovePct = pct / 100
	}
	if pct, ok := v.Float("maxPct", query.Get("maxPct")); ok {
		policy.MaxAbovePct = pct / 100
	}
	if depth, ok := v.Int("maxDepth", query.Get("maxDepth")); ok {
		policy.MaxReportingDepth = depth
	}
	if v.HasIssues() {
		return base
	}
	if err := policy.Validate(); err != nil {
		v.Add("policy", strings.TrimPrefix(err.Error(), org.ErrInvalidPolicy.Error()+": "))
		return base
	}
	return policy
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []ValidationIssue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := make([]ValidationIssue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}

// IsPolicyError reports whether err is a rejected policy rather than a server fault.
func IsPolicyError(err error) bool {
	return errors.Is(err, org.ErrInvalidPolicy)
}
