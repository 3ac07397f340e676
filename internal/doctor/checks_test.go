package doctor

import (
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestCheckStatus_Text(t *testing.T) {
	tests := []struct {
		status   CheckStatus
		expected string
	}{
		{StatusPass, "pass"},
		{StatusWarn, "warn"},
		{StatusFail, "fail"},
		{CheckStatus(99), "unknown"},
		{CheckStatus(-1), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.status.String(); got != tc.expected {
				t.Errorf("got %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestCheckResult_JSONRoundTrip(t *testing.T) {
	in := CheckResult{Name: "bucket", Status: StatusWarn, Message: "slow", Suggestion: "wait"}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if want := `"status":"warn"`; !strings.Contains(string(data), want) {
		t.Errorf("%s does not contain %s", data, want)
	}

	var out CheckResult
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}

	if err := json.Unmarshal([]byte(`{"status":"meh"}`), &out); err == nil {
		t.Error("expected an error for an unknown status")
	}
}

// mockCheck is a test implementation of Check.
type mockCheck struct {
	name     string
	category string
	result   CheckResult
	delay    time.Duration
	running  *int32
	overlap  *int32
}

func (m *mockCheck) Name() string     { return m.name }
func (m *mockCheck) Category() string { return m.category }

func (m *mockCheck) Run() CheckResult {
	if m.running != nil {
		if atomic.AddInt32(m.running, 1) > 1 {
			atomic.StoreInt32(m.overlap, 1)
		}
		time.Sleep(m.delay)
		atomic.AddInt32(m.running, -1)
	}
	return m.result
}

func mixedChecks() []Check {
	return []Check{
		&mockCheck{name: "config_file", category: "CONFIG", result: CheckResult{Name: "config_file", Status: StatusPass}},
		&mockCheck{name: "bucket", category: "SOURCE", result: CheckResult{Name: "bucket", Status: StatusFail}},
		&mockCheck{name: "secrets", category: "CONFIG", result: CheckResult{Name: "secrets", Status: StatusWarn}},
		&mockCheck{name: "sound_file", category: "AUDIO", result: CheckResult{Name: "sound_file", Status: StatusPass}},
	}
}

func TestRun_KeepsCheckOrder(t *testing.T) {
	report := Run(mixedChecks())

	if len(report.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(report.Results))
	}
	for i, want := range []string{"config_file", "bucket", "secrets", "sound_file"} {
		if report.Results[i].Name != want {
			t.Errorf("result %d: got %s, want %s", i, report.Results[i].Name, want)
		}
	}
}

func TestRun_Concurrent(t *testing.T) {
	var running, overlap int32
	checks := make([]Check, 3)
	for i := range checks {
		checks[i] = &mockCheck{
			name:    "slow",
			result:  CheckResult{Status: StatusPass},
			delay:   50 * time.Millisecond,
			running: &running,
			overlap: &overlap,
		}
	}

	Run(checks)

	if atomic.LoadInt32(&overlap) == 0 {
		t.Error("expected checks to run concurrently")
	}
}

func TestReport_Categories(t *testing.T) {
	cats := Run(mixedChecks()).Categories()

	if len(cats) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(cats))
	}
	if cats[0].Name != "CONFIG" || cats[1].Name != "SOURCE" || cats[2].Name != "AUDIO" {
		t.Errorf("categories out of order: %s, %s, %s", cats[0].Name, cats[1].Name, cats[2].Name)
	}
	if len(cats[0].Results) != 2 || cats[0].Results[1].Name != "secrets" {
		t.Errorf("CONFIG results: %+v", cats[0].Results)
	}
}

func TestReport_Counts(t *testing.T) {
	report := Run(mixedChecks())

	got := report.Counts()
	if got != (Counts{Pass: 2, Warn: 1, Fail: 1}) {
		t.Errorf("got %+v", got)
	}
	if got.Issues() != 2 {
		t.Errorf("expected 2 issues, got %d", got.Issues())
	}
	if !report.Failed() {
		t.Error("expected report to fail")
	}
}

func TestReport_WarningsDontFail(t *testing.T) {
	report := Report{
		Checks:  []Check{&mockCheck{category: "AUDIO"}},
		Results: []CheckResult{{Status: StatusWarn}},
	}
	if report.Failed() {
		t.Error("warnings alone should not fail")
	}
}

func TestReport_Summary(t *testing.T) {
	tests := []struct {
		name     string
		statuses []CheckStatus
		expected string
	}{
		{"all pass", []CheckStatus{StatusPass, StatusPass}, "Everything looks good"},
		{"empty", nil, "Everything looks good"},
		{"one warning", []CheckStatus{StatusPass, StatusWarn}, "1 issue found (0 failed, 1 warning)"},
		{"mixed", []CheckStatus{StatusFail, StatusWarn, StatusWarn}, "3 issues found (1 failed, 2 warnings)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var report Report
			for _, s := range tc.statuses {
				report.Checks = append(report.Checks, &mockCheck{category: "TEST"})
				report.Results = append(report.Results, CheckResult{Status: s})
			}
			if got := report.Summary(); got != tc.expected {
				t.Errorf("got %q, want %q", got, tc.expected)
			}
		})
	}
}
