package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"orgaudit/internal/domain/org"
	"orgaudit/internal/report"
)

// AuditNotifier mails a summary of background audits that need attention.
// Clean runs are not mailed.
type AuditNotifier struct {
	Mailer Mailer
	From   string
	To     []string
}

// NewAuditNotifier returns nil when there is nobody to notify.
func NewAuditNotifier(mailer Mailer, from, recipients string) *AuditNotifier {
	var to []string
	for _, addr := range strings.Split(recipients, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	if mailer == nil || len(to) == 0 {
		return nil
	}
	return &AuditNotifier{Mailer: mailer, From: from, To: to}
}

func (n *AuditNotifier) AuditFinished(ctx context.Context, tenantID, runID string, rep *org.Report, err error) {
	if n == nil {
		return
	}
	subject, body, ok := Summary(tenantID, runID, rep, err)
	if !ok {
		return
	}
	for _, to := range n.To {
		if sendErr := n.Mailer.Send(ctx, n.From, to, subject, body); sendErr != nil {
			slog.Warn("audit notification failed", "tenantId", tenantID, "runId", runID, "to", to, "err", sendErr)
		}
	}
}

// Summary builds the notification for one finished audit. ok is false when
// the audit was clean.
func Summary(tenantID, runID string, rep *org.Report, err error) (subject, body string, ok bool) {
	var b strings.Builder
	fmt.Fprintf(&b, "Tenant: %s\n", tenantID)
	if runID != "" {
		fmt.Fprintf(&b, "Audit run: %s\n", runID)
	}
	b.WriteString("\n")

	switch {
	case err != nil:
		subject = fmt.Sprintf("[orgaudit] audit failed for tenant %s", tenantID)
		fmt.Fprintf(&b, "The audit could not be completed: %v\n", err)
	case rep == nil:
		return "", "", false
	case rep.Outcome() == org.OutcomeValidationFailed:
		subject = fmt.Sprintf("[orgaudit] employee data invalid for tenant %s", tenantID)
		b.WriteString("Employee data failed validation:\n")
		for _, f := range rep.Validation.Errors() {
			b.WriteString("  ERROR: " + f.Message + "\n")
		}
		for _, f := range rep.Validation.Warnings() {
			b.WriteString("  WARNING: " + f.Message + "\n")
		}
	case rep.Outcome() == org.OutcomeIssuesFound:
		stats := *rep.Stats
		subject = fmt.Sprintf("[orgaudit] %d issue(s) found for tenant %s", stats.TotalIssues(), tenantID)
		fmt.Fprintf(&b, "Underpaid managers:   %d\n", stats.UnderpaidManagers)
		fmt.Fprintf(&b, "Overpaid managers:    %d\n", stats.OverpaidManagers)
		fmt.Fprintf(&b, "Long reporting lines: %d\n", stats.LongReportingLines)
		fmt.Fprintf(&b, "Compliance rate:      %.1f%%\n\n", stats.ComplianceRate())
		b.WriteString(report.Verdict(stats) + "\n")
	default:
		return "", "", false
	}
	return subject, b.String(), true
}
