// Package quality counts classified labels and derives precision, recall
// and audit figures for a run.
package quality

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"
)

// ErrNoSamples is returned when a ratio would divide by zero.
var ErrNoSamples = errors.New("no samples")

// Checker accumulates run statistics. It is safe for concurrent use.
type Checker struct {
	mu sync.Mutex

	counts     map[string]int
	precisions map[string]float64
	recalls    map[string]float64

	processed int
	skipped   int
	failed    int
	saved     int

	auditTotal int
	auditGood  int
}

// NewChecker returns an empty checker.
func NewChecker() *Checker {
	return &Checker{
		counts:     make(map[string]int),
		precisions: make(map[string]float64),
		recalls:    make(map[string]float64),
	}
}

// PutLabel counts one occurrence of label.
func (c *Checker) PutLabel(label string) {
	c.mu.Lock()
	c.counts[label]++
	c.mu.Unlock()
}

// LabelCount returns how often label was counted.
func (c *Checker) LabelCount(label string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[label]
}

// TotalLabels returns the number of counted labels.
func (c *Checker) TotalLabels() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Counts returns a copy of the per-label counts.
func (c *Checker) Counts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// ImageProcessed counts an image whose grid was located.
func (c *Checker) ImageProcessed() {
	c.mu.Lock()
	c.processed++
	c.mu.Unlock()
}

// ImageSkipped counts an image without enough snippets to hold a grid.
func (c *Checker) ImageSkipped() {
	c.mu.Lock()
	c.skipped++
	c.mu.Unlock()
}

// ImageFailed counts an image that could not be loaded or searched.
func (c *Checker) ImageFailed() {
	c.mu.Lock()
	c.failed++
	c.mu.Unlock()
}

// SnippetsSaved adds n to the number of written snippets.
func (c *Checker) SnippetsSaved(n int) {
	c.mu.Lock()
	c.saved += n
	c.mu.Unlock()
}

// PrecisionPerLabel records correct / count(label) for label and returns it.
func (c *Checker) PrecisionPerLabel(label string, correct int) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.counts[label]
	if n == 0 {
		return 0, fmt.Errorf("precision of %q: %w", label, ErrNoSamples)
	}
	p := float64(correct) / float64(n)
	c.precisions[label] = p
	return p, nil
}

// TotalPrecision is the mean of the recorded per-label precisions.
func (c *Checker) TotalPrecision() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return meanOf(c.precisions)
}

// RecallPerLabel records correct / belonging for label and returns it.
// belonging is the number of snippets that truly carry label.
func (c *Checker) RecallPerLabel(label string, belonging, correct int) (float64, error) {
	if belonging == 0 {
		return 0, fmt.Errorf("recall of %q: %w", label, ErrNoSamples)
	}
	r := float64(correct) / float64(belonging)
	c.mu.Lock()
	c.recalls[label] = r
	c.mu.Unlock()
	return r, nil
}

// TotalRecall is the mean of the recorded per-label recalls.
func (c *Checker) TotalRecall() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return meanOf(c.recalls)
}

// RecordAudit records one manual review verdict.
func (c *Checker) RecordAudit(ok bool) {
	c.mu.Lock()
	c.auditTotal++
	if ok {
		c.auditGood++
	}
	c.mu.Unlock()
}

// AuditPrecision returns good / total reviews, or 0 before any review.
func (c *Checker) AuditPrecision() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.auditTotal == 0 {
		return 0
	}
	return float64(c.auditGood) / float64(c.auditTotal)
}

// AuditCount returns the number of reviews.
func (c *Checker) AuditCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auditTotal
}

// WriteSummary prints label counts in a table.
func (c *Checker) WriteSummary(w io.Writer) error {
	counts := c.Counts()
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tCOUNT")
	for _, l := range labels {
		fmt.Fprintf(tw, "%s\t%d\n", l, counts[l])
	}
	fmt.Fprintf(tw, "total\t%d\n", c.TotalLabels())
	return tw.Flush()
}

func meanOf(m map[string]float64) float64 {
	if len(m) == 0 {
		return 0
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]float64, len(keys))
	for i, k := range keys {
		vals[i] = m[k]
	}
	return stat.Mean(vals, nil)
}
