package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// Well-known corpus entry names.
const (
	// TasksDirName is the per-test folder holding task statements,
	// materials, and the maximum points file.
	TasksDirName = "Aufgabenstellungen"

	// MaxPointsFileName maps task keys to maximum achievable points.
	MaxPointsFileName = "Punkte.md"

	// ActualPointsFileName maps task keys to the human-awarded points
	// inside a student directory.
	ActualPointsFileName = "ErhaltenePunkte.md"

	// StudentDirPrefix marks student directories inside a test.
	StudentDirPrefix = "P"

	// ReservedSubjectPrefix marks subject directories excluded from
	// discovery (scratch space, templates).
	ReservedSubjectPrefix = "_"
)

// Config controls discovery file matching.
type Config struct {
	// TaskPattern matches task statement files and student answer files
	// by name. Default: "Aufgabe*.md".
	TaskPattern string

	// MaterialsPattern matches shared reference material files.
	// Default: "M*.md".
	MaterialsPattern string
}

// DefaultConfig returns the default discovery configuration.
func DefaultConfig() Config {
	return Config{
		TaskPattern:      "Aufgabe*.md",
		MaterialsPattern: "M*.md",
	}
}

// Discoverer walks a corpus root and produces grading jobs.
type Discoverer struct {
	root   string
	config Config
	logger *zap.Logger
}

// NewDiscoverer creates a discoverer for the given corpus root.
//
// Zero-valued config fields fall back to DefaultConfig. A nil logger
// disables the skip warnings.
func NewDiscoverer(root string, cfg Config, logger *zap.Logger) (*Discoverer, error) {
	if cfg.TaskPattern == "" {
		cfg.TaskPattern = DefaultConfig().TaskPattern
	}
	if cfg.MaterialsPattern == "" {
		cfg.MaterialsPattern = DefaultConfig().MaterialsPattern
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, p := range []string{cfg.TaskPattern, cfg.MaterialsPattern} {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid file pattern: %q", p)
		}
	}

	return &Discoverer{root: root, config: cfg, logger: logger}, nil
}

// Discover walks the corpus and returns all complete grading jobs.
//
// Incomplete entries (unparseable points files, answers without a matching
// task, tasks without points) are logged and skipped; they never fail the
// walk. The returned slice is sorted by JobID so repeated discovery over an
// unchanged corpus is deterministic.
func (d *Discoverer) Discover() ([]GradingJob, error) {
	subjects, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("read corpus root %s: %w", d.root, err)
	}

	var jobs []GradingJob
	for _, subject := range subjects {
		if !subject.IsDir() || strings.HasPrefix(subject.Name(), ReservedSubjectPrefix) {
			continue
		}
		jobs = append(jobs, d.discoverSubject(subject.Name())...)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].JobID < jobs[j].JobID })
	return jobs, nil
}

func (d *Discoverer) discoverSubject(subject string) []GradingJob {
	subjectPath := filepath.Join(d.root, subject)
	tests, err := os.ReadDir(subjectPath)
	if err != nil {
		d.logger.Warn("Skipping unreadable subject directory",
			zap.String("subject", subject), zap.Error(err))
		return nil
	}

	var jobs []GradingJob
	for _, test := range tests {
		if !test.IsDir() {
			continue
		}
		jobs = append(jobs, d.discoverTest(subject, test.Name())...)
	}
	return jobs
}

func (d *Discoverer) discoverTest(subject, test string) []GradingJob {
	testPath := filepath.Join(d.root, subject, test)
	tasksPath := filepath.Join(testPath, TasksDirName)
	if fi, err := os.Stat(tasksPath); err != nil || !fi.IsDir() {
		return nil
	}

	tasks, materials, err := d.readTasks(tasksPath)
	if err != nil {
		d.logger.Warn("Skipping test with unreadable task folder",
			zap.String("subject", subject), zap.String("test", test), zap.Error(err))
		return nil
	}

	maxPoints, err := ParsePointsFile(filepath.Join(tasksPath, MaxPointsFileName))
	if err != nil {
		d.logger.Warn("Skipping test with unreadable points file",
			zap.String("subject", subject), zap.String("test", test), zap.Error(err))
		return nil
	}
	if len(maxPoints) == 0 {
		d.logger.Warn("Could not parse any max points, skipping all tasks in test",
			zap.String("subject", subject), zap.String("test", test))
		return nil
	}

	entries, err := os.ReadDir(testPath)
	if err != nil {
		d.logger.Warn("Skipping unreadable test directory",
			zap.String("subject", subject), zap.String("test", test), zap.Error(err))
		return nil
	}

	var jobs []GradingJob
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), StudentDirPrefix) {
			continue
		}
		jobs = append(jobs, d.discoverStudent(subject, test, entry.Name(), tasks, materials, maxPoints)...)
	}
	return jobs
}

// readTasks loads task statements keyed by file stem, plus the concatenated
// materials text for the test.
func (d *Discoverer) readTasks(tasksPath string) (map[string]string, string, error) {
	entries, err := os.ReadDir(tasksPath)
	if err != nil {
		return nil, "", err
	}

	tasks := make(map[string]string)
	var materialParts []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == MaxPointsFileName {
			continue
		}
		name := entry.Name()
		path := filepath.Join(tasksPath, name)

		if ok, _ := doublestar.Match(d.config.TaskPattern, name); ok {
			text, err := os.ReadFile(path)
			if err != nil {
				return nil, "", err
			}
			tasks[stem(name)] = string(text)
			continue
		}

		if ok, _ := doublestar.Match(d.config.MaterialsPattern, name); ok {
			text, err := os.ReadFile(path)
			if err != nil {
				return nil, "", err
			}
			materialParts = append(materialParts, fmt.Sprintf("--- %s ---\n%s", stem(name), string(text)))
		}
	}

	sort.Strings(materialParts)
	return tasks, strings.Join(materialParts, "\n\n"), nil
}

func (d *Discoverer) discoverStudent(subject, test, student string, tasks map[string]string, materials string, maxPoints map[string]float64) []GradingJob {
	studentPath := filepath.Join(d.root, subject, test, student)

	actualPoints, err := ParsePointsFile(filepath.Join(studentPath, ActualPointsFileName))
	if err != nil {
		d.logger.Warn("Skipping student with unreadable points file",
			zap.String("student", student), zap.Error(err))
		return nil
	}
	if len(actualPoints) == 0 {
		d.logger.Warn("Could not parse any awarded points, skipping student",
			zap.String("subject", subject), zap.String("test", test), zap.String("student", student))
		return nil
	}

	entries, err := os.ReadDir(studentPath)
	if err != nil {
		d.logger.Warn("Skipping unreadable student directory",
			zap.String("student", student), zap.Error(err))
		return nil
	}

	var jobs []GradingJob
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ok, _ := doublestar.Match(d.config.TaskPattern, name); !ok {
			continue
		}

		taskName := stem(name)
		taskText, known := tasks[taskName]
		if !known {
			continue
		}

		max, haveMax := maxPoints[taskName]
		actual, haveActual := actualPoints[taskName]
		if !haveMax || !haveActual {
			d.logger.Warn("Missing points data for task, skipping job",
				zap.String("task", taskName), zap.String("student", student))
			continue
		}

		answer, err := os.ReadFile(filepath.Join(studentPath, name))
		if err != nil {
			d.logger.Warn("Skipping unreadable answer file",
				zap.String("task", taskName), zap.String("student", student), zap.Error(err))
			continue
		}

		jobs = append(jobs, GradingJob{
			JobID:         jobID(subject, test, taskName, student),
			Subject:       subject,
			TaskName:      taskName,
			TaskText:      taskText,
			MaterialsText: materials,
			StudentAnswer: string(answer),
			MaxPoints:     max,
			ActualPoints:  actual,
		})
	}
	return jobs
}

// stem strips the extension from a file name.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
