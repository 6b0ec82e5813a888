package quality

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
)

// Report is the JSON summary of a run.
type Report struct {
	RunID          string         `json:"run_id"`
	Started        time.Time      `json:"started"`
	ElapsedSeconds float64        `json:"elapsed_seconds"`
	Images         int            `json:"images"`
	Processed      int            `json:"processed"`
	Skipped        int            `json:"skipped"`
	Failed         int            `json:"failed"`
	Snippets       int            `json:"snippets"`
	Labels         map[string]int `json:"labels"`
	TotalLabels    int            `json:"total_labels"`
	Precision      float64        `json:"precision,omitempty"`
	Recall         float64        `json:"recall,omitempty"`
	Audits         int            `json:"audits,omitempty"`
	AuditPrecision float64        `json:"audit_precision,omitempty"`
}

// Report snapshots the checker for a run that started at started.
func (c *Checker) Report(started time.Time, elapsed time.Duration) Report {
	r := Report{
		RunID:          uuid.NewString(),
		Started:        started.UTC(),
		ElapsedSeconds: elapsed.Seconds(),
		Labels:         c.Counts(),
		TotalLabels:    c.TotalLabels(),
		Precision:      c.TotalPrecision(),
		Recall:         c.TotalRecall(),
		AuditPrecision: c.AuditPrecision(),
		Audits:         c.AuditCount(),
	}
	c.mu.Lock()
	r.Processed = c.processed
	r.Skipped = c.skipped
	r.Failed = c.failed
	r.Snippets = c.saved
	c.mu.Unlock()
	r.Images = r.Processed + r.Skipped + r.Failed
	return r
}

// Write stores the report as indented JSON.
func (r Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
