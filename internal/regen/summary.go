package regen

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Outcome classifies what happened to one dataset item.
type Outcome string

const (
	Processed               Outcome = "PROCESSED"
	SkippedNoFile           Outcome = "SKIPPED_NO_FILE"
	SkippedAlreadyProcessed Outcome = "SKIPPED_ALREADY_PROCESSED"
	SkippedExists           Outcome = "SKIPPED_EXISTS"
	ErrorMissingSource      Outcome = "ERROR_MISSING_SOURCE"
	ErrorCorruptImage       Outcome = "ERROR_CORRUPT_IMAGE"
)

// Outcomes lists every classification in report order.
var Outcomes = []Outcome{
	Processed,
	SkippedNoFile,
	SkippedAlreadyProcessed,
	SkippedExists,
	ErrorMissingSource,
	ErrorCorruptImage,
}

// Summary aggregates the outcomes of a run.
type Summary struct {
	RunID  uuid.UUID
	Total  int
	Force  bool
	Counts map[Outcome]int
}

func newSummary(total int, force bool) Summary {
	return Summary{
		RunID:  uuid.New(),
		Total:  total,
		Force:  force,
		Counts: make(map[Outcome]int, len(Outcomes)),
	}
}

// Visited is the number of items that received an outcome.
func (s Summary) Visited() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

func (s Summary) Errors() int {
	return s.Counts[ErrorMissingSource] + s.Counts[ErrorCorruptImage]
}

// Write prints the final report.
func (s Summary) Write(w io.Writer) error {
	lines := []string{
		"",
		"REGENERATION SUMMARY:",
		fmt.Sprintf("\tRun: %s", s.RunID),
		fmt.Sprintf("\tTotal instances: %d", s.Total),
		fmt.Sprintf("\tProcessed (regenerated): %d", s.Counts[Processed]),
		fmt.Sprintf("\tSkipped (no file): %d", s.Counts[SkippedNoFile]),
		fmt.Sprintf("\tSkipped (already processed this run): %d", s.Counts[SkippedAlreadyProcessed]),
		fmt.Sprintf("\tSkipped (thumbnails exist): %d", s.Counts[SkippedExists]),
		fmt.Sprintf("\tErrors (missing source): %d", s.Counts[ErrorMissingSource]),
		fmt.Sprintf("\tErrors (corrupt image): %d", s.Counts[ErrorCorruptImage]),
		"",
	}

	if s.Force {
		lines = append(lines, "Note: --force was used, all thumbnails were regenerated")
	} else {
		lines = append(
			lines,
			"Note: Only missing thumbnails were regenerated",
			"\tUse --force to regenerate all thumbnails",
		)
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
