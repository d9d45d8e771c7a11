package requestctx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestIDsRoundTrip(t *testing.T) {
	ctx := context.Background()
	if RequestID(ctx) != "" || JobRun(ctx) != "" {
		t.Fatal("expected empty ids on a bare context")
	}
	ctx = WithJobRun(WithRequestID(ctx, "req-1"), "job-7")
	if RequestID(ctx) != "req-1" || JobRun(ctx) != "job-7" {
		t.Fatalf("unexpected ids: %q %q", RequestID(ctx), JobRun(ctx))
	}
}

func TestLoggerTagsIDs(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	Logger(WithJobRun(WithRequestID(context.Background(), "req-1"), "job-7")).Info("audit finished")
	out := buf.String()
	if !strings.Contains(out, "requestId=req-1") || !strings.Contains(out, "jobRunId=job-7") {
		t.Fatalf("expected ids in log line, got %q", out)
	}
}
