// Package corpus discovers grading jobs from an exam corpus directory tree.
//
// The corpus is organized as subject/test/{Aufgabenstellungen, student dirs}.
// The Aufgabenstellungen folder holds task statements, shared reference
// materials, and the maximum points file; each student directory holds that
// student's answers and the points a human grader awarded.
//
// Discovery is tolerant: malformed or incomplete entries are skipped with a
// warning and never abort the walk. Only an unreadable root is an error.
package corpus

import "fmt"

// GradingJob pairs one student's answer to one task with its grading context.
//
// Jobs are immutable after discovery; dispatch and aggregation only read them.
type GradingJob struct {
	// JobID is a deterministic composite of subject, test, task, and
	// student directory names.
	JobID string

	// Subject is the subject directory name (e.g., "Chemie").
	Subject string

	// TaskName is the task file stem (e.g., "Aufgabe1a").
	TaskName string

	// TaskText is the full task statement.
	TaskText string

	// MaterialsText is the concatenated reference material for the test.
	// Empty when the test ships no materials.
	MaterialsText string

	// StudentAnswer is the answer text to be graded.
	StudentAnswer string

	// MaxPoints is the maximum achievable score for the task.
	MaxPoints float64

	// ActualPoints is the score the human grader assigned. Bounds against
	// MaxPoints are deliberately not enforced; corpora contain bonus
	// points and the benchmark measures deviation, not validity.
	ActualPoints float64
}

// jobID builds the composite identifier used to join results back to jobs.
func jobID(subject, test, task, student string) string {
	return fmt.Sprintf("%s_%s_%s_%s", subject, test, task, student)
}
