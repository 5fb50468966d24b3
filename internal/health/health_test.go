package health

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestReporter_Healthy(t *testing.T) {
	reporter := NewReporter("v1.0.0")

	reporter.RegisterChecker("store", NewSimpleChecker("store", func(context.Context) error {
		return nil
	}))

	report := reporter.Report(context.Background())

	if report.Status != StatusHealthy {
		t.Errorf("expected status healthy, got %s", report.Status)
	}
	if report.Version != "v1.0.0" {
		t.Errorf("expected version v1.0.0, got %s", report.Version)
	}
	if len(report.Checks) != 1 {
		t.Errorf("expected 1 check, got %d", len(report.Checks))
	}
}

func TestReporter_Unhealthy(t *testing.T) {
	reporter := NewReporter("v1.0.0")

	reporter.RegisterChecker("store", NewSimpleChecker("store", func(context.Context) error {
		return errors.New("connection refused")
	}))
	reporter.RegisterChecker("outbox", NewThresholdChecker("outbox", 10, func(context.Context) (int, error) {
		return 50, nil
	}))

	report := reporter.Report(context.Background())

	if report.Status != StatusUnhealthy {
		t.Errorf("expected status unhealthy, got %s", report.Status)
	}
	if report.Checks["outbox"].Status != StatusDegraded {
		t.Errorf("expected outbox degraded, got %s", report.Checks["outbox"].Status)
	}
}

func TestReporter_Degraded(t *testing.T) {
	reporter := NewReporter("v1.0.0")

	reporter.RegisterChecker("store", NewSimpleChecker("store", func(context.Context) error { return nil }))
	reporter.RegisterChecker("outbox", NewThresholdChecker("outbox", 0, func(context.Context) (int, error) {
		return 3, nil
	}))

	report := reporter.Report(context.Background())
	if report.Status != StatusDegraded {
		t.Errorf("expected status degraded, got %s", report.Status)
	}
	if got := report.Checks["outbox"].Message; got != "value 3 exceeds threshold 0" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestReporter_UptimeAndJSON(t *testing.T) {
	reporter := NewReporter("dev")
	reporter.now = func() time.Time { return reporter.startTime.Add(90 * time.Second) }
	reporter.RegisterChecker("b", NewSimpleChecker("b", func(context.Context) error { return nil }))
	reporter.RegisterChecker("a", NewSimpleChecker("a", func(context.Context) error { return nil }))

	if names := reporter.Names(); len(names) != 2 || names[0] != "a" {
		t.Errorf("expected sorted names, got %v", names)
	}

	report := reporter.Report(context.Background())
	if report.UptimeSeconds != 90 {
		t.Errorf("expected uptime 90, got %d", report.UptimeSeconds)
	}

	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if decoded.Status != StatusHealthy || len(decoded.Checks) != 2 {
		t.Errorf("unexpected decoded report: %+v", decoded)
	}
}

func TestSimpleChecker(t *testing.T) {
	checker := NewSimpleChecker("test", func(context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	check := checker.Check(context.Background())

	if check.Status != StatusHealthy {
		t.Errorf("expected status healthy, got %s", check.Status)
	}
	if check.Duration < 10*time.Millisecond {
		t.Errorf("expected duration >= 10ms, got %v", check.Duration)
	}
}

func TestSimpleChecker_Error(t *testing.T) {
	checker := NewSimpleChecker("test", func(context.Context) error {
		return errors.New("test error")
	})

	check := checker.Check(context.Background())

	if check.Status != StatusUnhealthy {
		t.Errorf("expected status unhealthy, got %s", check.Status)
	}
	if check.Message != "test error" {
		t.Errorf("expected message 'test error', got %s", check.Message)
	}
}

func TestThresholdChecker_Error(t *testing.T) {
	checker := NewThresholdChecker("outbox", 5, func(context.Context) (int, error) {
		return 0, errors.New("stats unavailable")
	})

	if check := checker.Check(context.Background()); check.Status != StatusUnhealthy {
		t.Errorf("expected status unhealthy, got %s", check.Status)
	}
}
