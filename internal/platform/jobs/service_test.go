package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"orgaudit/internal/domain/org"
)

type fakeRuns struct {
	mu       sync.Mutex
	started  []string
	finished map[string]string
}

func (f *fakeRuns) StartRun(ctx context.Context, tenantID, jobType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, tenantID+"/"+jobType)
	return "run-" + tenantID, nil
}

func (f *fakeRuns) FinishRun(ctx context.Context, runID, status string, detailsJSON []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finished == nil {
		f.finished = map[string]string{}
	}
	f.finished[runID] = status
	return nil
}

func (f *fakeRuns) status(runID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finished[runID]
}

type fakeAudits struct {
	mu      sync.Mutex
	tenants []string
	audited []string
	fail    map[string]bool
}

func (f *fakeAudits) ListTenants(ctx context.Context) ([]string, error) {
	return f.tenants, nil
}

func (f *fakeAudits) RunAudit(ctx context.Context, tenantID string, policy org.Policy, opts org.AuditOptions) (string, *org.Report, error) {
	f.mu.Lock()
	f.audited = append(f.audited, tenantID)
	f.mu.Unlock()
	if f.fail[tenantID] {
		return "audit-" + tenantID, nil, errors.New("boom")
	}
	return "audit-" + tenantID, &org.Report{Stats: &org.Statistics{UnderpaidManagers: 1}}, nil
}

func runAudit(ctx context.Context, svc *Service, tenantID string) (any, error) {
	return svc.runJob(ctx, job{Type: JobRequestedAudit, TenantID: tenantID, Run: svc.auditTask(tenantID)})
}

func TestRunJobRecordsAudit(t *testing.T) {
	runs := &fakeRuns{}
	audits := &fakeAudits{fail: map[string]bool{"bad": true}}
	svc := New(runs, audits, org.DefaultPolicy(), 0)
	ctx := context.Background()

	details, err := runAudit(ctx, svc, "good")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.(map[string]any)["totalIssues"] != 1 {
		t.Fatalf("unexpected details: %v", details)
	}
	if runs.status("run-good") != "completed" {
		t.Fatalf("expected completed job, got %q", runs.status("run-good"))
	}

	if _, err := runAudit(ctx, svc, "bad"); err == nil {
		t.Fatal("expected audit error")
	}
	if runs.status("run-bad") != "failed" {
		t.Fatalf("expected failed job, got %q", runs.status("run-bad"))
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	svc := New(nil, &fakeAudits{}, org.DefaultPolicy(), 0)
	svc.queue = make(chan job, 1)
	if !svc.EnqueueAudit(JobRequestedAudit, "t1") {
		t.Fatal("expected first job to be queued")
	}
	if svc.EnqueueAudit(JobRequestedAudit, "t2") {
		t.Fatal("expected full queue to drop job")
	}
}

type recordingNotifier struct {
	mu      sync.Mutex
	tenants []string
	failed  []string
}

func (r *recordingNotifier) AuditFinished(ctx context.Context, tenantID, runID string, report *org.Report, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants = append(r.tenants, tenantID)
	if err != nil {
		r.failed = append(r.failed, tenantID)
	}
}

func TestAuditTaskNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := New(&fakeRuns{}, &fakeAudits{fail: map[string]bool{"bad": true}}, org.DefaultPolicy(), 0)
	svc.Notifier = notifier

	if _, err := runAudit(context.Background(), svc, "good"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := runAudit(context.Background(), svc, "bad"); err == nil {
		t.Fatal("expected failing audit to surface its error")
	}
	if len(notifier.tenants) != 2 || len(notifier.failed) != 1 || notifier.failed[0] != "bad" {
		t.Fatalf("unexpected notifications: %+v", notifier)
	}
}

func TestWorkerAuditsAllTenants(t *testing.T) {
	runs := &fakeRuns{}
	audits := &fakeAudits{tenants: []string{"a", "b"}}
	svc := New(runs, audits, org.DefaultPolicy(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	if queued := svc.enqueueAllTenants(ctx); queued != 2 {
		t.Fatalf("expected 2 queued audits, got %d", queued)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runs.status("run-a") == "completed" && runs.status("run-b") == "completed" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("scheduled audits did not complete: a=%q b=%q", runs.status("run-a"), runs.status("run-b"))
}
