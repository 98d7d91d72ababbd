// Package prompt loads and renders grading prompt templates.
//
// Each immediate subdirectory of the prompts root is one prompt style,
// holding a static system.md and a user.md with named fill points. A style
// missing either file is skipped with a warning; partial configuration is
// tolerated.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/notenlabs/gradebench/pkg/corpus"
)

// Fixed template file names inside a style directory.
const (
	SystemFileName = "system.md"
	UserFileName   = "user.md"
)

// NoMaterialsText substitutes for {materials_text} when a test ships no
// reference materials.
const NoMaterialsText = "Keine Materialien vorhanden."

// Course levels derived from the subject. The level only personalizes the
// prompt; it is never a control-flow input.
const (
	LevelAdvanced = "Leistungskurs"
	LevelBasic    = "Basiskurs"
)

// advancedSubjects are graded at the advanced course level.
var advancedSubjects = map[string]bool{
	"Chemie":     true,
	"Wirtschaft": true,
}

// CourseLevel returns the course level label for a subject.
func CourseLevel(subject string) string {
	if advancedSubjects[subject] {
		return LevelAdvanced
	}
	return LevelBasic
}

// Template is one named prompt style.
type Template struct {
	// StyleName is the style directory name.
	StyleName string

	// System is the static system message body.
	System string

	// User is the user message template with {name} fill points:
	// subject, level, max_points, task_text, student_answer,
	// materials_text.
	User string
}

// RenderUser substitutes the job's fields into the user template.
func (t Template) RenderUser(job corpus.GradingJob) string {
	materials := job.MaterialsText
	if materials == "" {
		materials = NoMaterialsText
	}

	r := strings.NewReplacer(
		"{subject}", job.Subject,
		"{level}", CourseLevel(job.Subject),
		"{max_points}", formatPoints(job.MaxPoints),
		"{task_text}", job.TaskText,
		"{student_answer}", job.StudentAnswer,
		"{materials_text}", materials,
	)
	return r.Replace(t.User)
}

// formatPoints renders a points value without a trailing ".0" for whole
// numbers, matching how graders write them.
func formatPoints(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// LoadTemplates loads every complete prompt style under root.
//
// Styles missing system.md or user.md are skipped with a warning. The result
// is sorted by style name. An empty result is not an error here; callers
// decide whether an empty prompt set aborts the run.
func LoadTemplates(root string, logger *zap.Logger) ([]Template, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read prompts root %s: %w", root, err)
	}

	var templates []Template
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		style := entry.Name()

		system, sysErr := os.ReadFile(filepath.Join(root, style, SystemFileName))
		user, usrErr := os.ReadFile(filepath.Join(root, style, UserFileName))
		if sysErr != nil || usrErr != nil {
			logger.Warn("Skipping prompt style, missing system.md or user.md",
				zap.String("style", style))
			continue
		}

		templates = append(templates, Template{
			StyleName: style,
			System:    string(system),
			User:      string(user),
		})
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].StyleName < templates[j].StyleName })
	return templates, nil
}
