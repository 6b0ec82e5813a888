package main

import (
	"errors"
	"math/rand"
	"os"

	"form-snippets/internal/dataset"
	"form-snippets/internal/quality"
)

// session draws random snippets for review and tallies the verdicts.
type session struct {
	outDir  string
	reg     *dataset.Registry
	rng     *rand.Rand
	checker *quality.Checker
	rounds  int

	current   dataset.Sample
	correct   map[string]int // Confirmed snippets per label
	belonging map[string]int // Reviewed snippets whose true label is known
}

func newSession(outDir string, reg *dataset.Registry, rounds int, seed int64) *session {
	return &session{
		outDir:  outDir,
		reg:     reg,
		rng:     rand.New(rand.NewSource(seed)),
		checker:   quality.NewChecker(),
		rounds:    rounds,
		correct:   make(map[string]int),
		belonging: make(map[string]int),
	}
}

// next picks the next sample and reads its sidecar.
func (s *session) next() (dataset.Sample, string, error) {
	if s.done() {
		return dataset.Sample{}, "", errors.New("audit finished")
	}
	sample, err := dataset.RandomSample(s.outDir, s.reg, s.rng)
	if err != nil {
		return dataset.Sample{}, "", err
	}
	s.current = sample
	sidecar, err := os.ReadFile(sample.Sidecar())
	if err != nil {
		return sample, "", nil
	}
	return sample, string(sidecar), nil
}

// answer records whether the current sample was labelled correctly. When it
// was not, truth names the right label, or is empty if the reviewer did not
// say. Per-label precision and recall are refreshed for the labels involved.
func (s *session) answer(ok bool, truth string) {
	label := s.current.Label
	s.checker.RecordAudit(ok)
	s.checker.PutLabel(label)
	if ok {
		s.correct[label]++
		truth = label
	}
	if truth != "" {
		s.belonging[truth]++
	}

	// label was just counted, so its precision is defined
	_, _ = s.checker.PrecisionPerLabel(label, s.correct[label])
	for _, l := range []string{label, truth} {
		if s.belonging[l] > 0 {
			_, _ = s.checker.RecallPerLabel(l, s.belonging[l], s.correct[l])
		}
	}
}

func (s *session) done() bool {
	return s.checker.AuditCount() >= s.rounds
}

func (s *session) precision() float64 {
	return s.checker.AuditPrecision()
}
