package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCorpusFile creates a file under root, making parent dirs as needed.
func writeCorpusFile(t *testing.T, root string, parts []string, content string) {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// buildTestCorpus creates a minimal corpus with one complete job plus
// assorted entries that discovery must skip.
func buildTestCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	// Complete: Chemie/Klausur1, one task, one student.
	writeCorpusFile(t, root, []string{"Chemie", "Klausur1", "Aufgabenstellungen", "Aufgabe1.md"}, "Erklären Sie die Elektrolyse.")
	writeCorpusFile(t, root, []string{"Chemie", "Klausur1", "Aufgabenstellungen", "M1.md"}, "Periodensystem")
	writeCorpusFile(t, root, []string{"Chemie", "Klausur1", "Aufgabenstellungen", "Punkte.md"}, "Nr.1: 10")
	writeCorpusFile(t, root, []string{"Chemie", "Klausur1", "P01", "Aufgabe1.md"}, "Die Elektrolyse zerlegt Stoffe.")
	writeCorpusFile(t, root, []string{"Chemie", "Klausur1", "P01", "ErhaltenePunkte.md"}, "Nr.1: 7")

	// Reserved subject prefix: skipped entirely.
	writeCorpusFile(t, root, []string{"_Vorlagen", "Klausur1", "Aufgabenstellungen", "Aufgabe1.md"}, "x")

	// Test without Aufgabenstellungen: skipped.
	writeCorpusFile(t, root, []string{"Chemie", "Klausur2", "P01", "Aufgabe1.md"}, "x")

	// Student dir without parseable points: skipped.
	writeCorpusFile(t, root, []string{"Chemie", "Klausur1", "P02", "Aufgabe1.md"}, "x")
	writeCorpusFile(t, root, []string{"Chemie", "Klausur1", "P02", "ErhaltenePunkte.md"}, "kein Ergebnis")

	// Non-student dir inside the test: ignored.
	writeCorpusFile(t, root, []string{"Chemie", "Klausur1", "Notizen", "Aufgabe1.md"}, "x")

	return root
}

func TestDiscover(t *testing.T) {
	root := buildTestCorpus(t)

	d, err := NewDiscoverer(root, Config{}, nil)
	require.NoError(t, err)

	jobs, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, "Chemie_Klausur1_Aufgabe1_P01", job.JobID)
	assert.Equal(t, "Chemie", job.Subject)
	assert.Equal(t, "Aufgabe1", job.TaskName)
	assert.Equal(t, "Erklären Sie die Elektrolyse.", job.TaskText)
	assert.Equal(t, "--- M1 ---\nPeriodensystem", job.MaterialsText)
	assert.Equal(t, "Die Elektrolyse zerlegt Stoffe.", job.StudentAnswer)
	assert.Equal(t, 10.0, job.MaxPoints)
	assert.Equal(t, 7.0, job.ActualPoints)
}

func TestDiscoverIsIdempotent(t *testing.T) {
	root := buildTestCorpus(t)

	d, err := NewDiscoverer(root, Config{}, nil)
	require.NoError(t, err)

	first, err := d.Discover()
	require.NoError(t, err)
	second, err := d.Discover()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDiscoverSkipsIncompleteEntries(t *testing.T) {
	root := t.TempDir()

	// Max points cover only Aufgabe1; the student also answered Aufgabe2.
	writeCorpusFile(t, root, []string{"Mathe", "Test1", "Aufgabenstellungen", "Aufgabe1.md"}, "t1")
	writeCorpusFile(t, root, []string{"Mathe", "Test1", "Aufgabenstellungen", "Aufgabe2.md"}, "t2")
	writeCorpusFile(t, root, []string{"Mathe", "Test1", "Aufgabenstellungen", "Punkte.md"}, "Nr.1: 10")
	writeCorpusFile(t, root, []string{"Mathe", "Test1", "P07", "Aufgabe1.md"}, "a1")
	writeCorpusFile(t, root, []string{"Mathe", "Test1", "P07", "Aufgabe2.md"}, "a2")
	writeCorpusFile(t, root, []string{"Mathe", "Test1", "P07", "ErhaltenePunkte.md"}, "Nr.1: 8\nNr.2: 3")

	// Answer with no matching task statement.
	writeCorpusFile(t, root, []string{"Mathe", "Test1", "P07", "Aufgabe9.md"}, "orphan")

	d, err := NewDiscoverer(root, Config{}, nil)
	require.NoError(t, err)

	jobs, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Mathe_Test1_Aufgabe1_P07", jobs[0].JobID)
}

func TestDiscoverEmptyCorpus(t *testing.T) {
	d, err := NewDiscoverer(t.TempDir(), Config{}, nil)
	require.NoError(t, err)

	jobs, err := d.Discover()
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestDiscoverMissingRoot(t *testing.T) {
	d, err := NewDiscoverer(filepath.Join(t.TempDir(), "nope"), Config{}, nil)
	require.NoError(t, err)

	_, err = d.Discover()
	assert.Error(t, err)
}

func TestNewDiscovererRejectsInvalidPattern(t *testing.T) {
	_, err := NewDiscoverer(t.TempDir(), Config{TaskPattern: "Aufgabe[*.md"}, nil)
	assert.Error(t, err)
}
