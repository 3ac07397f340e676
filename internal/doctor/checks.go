package doctor

import (
	"fmt"
	"strings"
	"sync"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

var statusNames = [...]string{"pass", "warn", "fail"}

// String returns the lowercase status name.
func (s CheckStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// MarshalText encodes the status by name in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names written by MarshalText.
func (s *CheckStatus) UnmarshalText(b []byte) error {
	for i, name := range statusNames {
		if strings.EqualFold(string(b), name) {
			*s = CheckStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown check status %q", b)
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Check is one diagnostic. Run must be safe to call concurrently with
// other checks.
type Check interface {
	Name() string

	// Category groups checks in the report: CONFIG, SOURCE, SSH or AUDIO.
	Category() string

	Run() CheckResult
}

// Report pairs each check with its result, in check order.
type Report struct {
	Checks  []Check
	Results []CheckResult
}

// Run executes every check concurrently. Checks sharing a Probe open the
// source once between them.
func Run(checks []Check) Report {
	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(idx int, c Check) {
			defer wg.Done()
			results[idx] = c.Run()
		}(i, check)
	}
	wg.Wait()
	return Report{Checks: checks, Results: results}
}

// Category is the results of one category.
type Category struct {
	Name    string        `json:"name"`
	Results []CheckResult `json:"results"`
}

// Categories groups results by category, in order of first appearance.
func (r Report) Categories() []Category {
	var out []Category
	index := make(map[string]int)
	for i, check := range r.Checks {
		name := check.Category()
		j, ok := index[name]
		if !ok {
			j = len(out)
			index[name] = j
			out = append(out, Category{Name: name})
		}
		out[j].Results = append(out[j].Results, r.Results[i])
	}
	return out
}

// Counts tallies results by status.
type Counts struct {
	Pass int `json:"pass"`
	Warn int `json:"warn"`
	Fail int `json:"fail"`
}

// Issues is the number of warnings and failures.
func (c Counts) Issues() int {
	return c.Warn + c.Fail
}

// Counts tallies the report's results.
func (r Report) Counts() Counts {
	var c Counts
	for _, res := range r.Results {
		switch res.Status {
		case StatusPass:
			c.Pass++
		case StatusWarn:
			c.Warn++
		case StatusFail:
			c.Fail++
		}
	}
	return c
}

// Failed reports whether any check failed. Warnings alone don't fail a run.
func (r Report) Failed() bool {
	return r.Counts().Fail > 0
}

// Summary is the one-line verdict printed under the report.
func (r Report) Summary() string {
	c := r.Counts()
	if c.Issues() == 0 {
		return "Everything looks good"
	}
	return fmt.Sprintf("%d issue%s found (%d failed, %d warning%s)",
		c.Issues(), pluralize(c.Issues()), c.Fail, c.Warn, pluralize(c.Warn))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
