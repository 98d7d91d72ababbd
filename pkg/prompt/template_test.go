package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notenlabs/gradebench/pkg/corpus"
)

func writeStyle(t *testing.T, root, style string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, style)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestLoadTemplates(t *testing.T) {
	root := t.TempDir()
	writeStyle(t, root, "strict", map[string]string{
		"system.md": "Du bist ein strenger Prüfer.",
		"user.md":   "Bewerte: {student_answer}",
	})
	writeStyle(t, root, "lenient", map[string]string{
		"system.md": "Du bist ein wohlwollender Prüfer.",
		"user.md":   "Bewerte milde: {student_answer}",
	})
	// Incomplete style: must be skipped, not fail the load.
	writeStyle(t, root, "broken", map[string]string{
		"system.md": "nur system",
	})
	// Plain file at root level: ignored.
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0o644))

	templates, err := LoadTemplates(root, nil)
	require.NoError(t, err)
	require.Len(t, templates, 2)

	assert.Equal(t, "lenient", templates[0].StyleName)
	assert.Equal(t, "strict", templates[1].StyleName)
	assert.Equal(t, "Du bist ein strenger Prüfer.", templates[1].System)
}

func TestLoadTemplatesMissingRoot(t *testing.T) {
	_, err := LoadTemplates(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}

func TestRenderUser(t *testing.T) {
	tpl := Template{
		StyleName: "strict",
		User:      "Fach: {subject} ({level})\nMax: {max_points}\nAufgabe: {task_text}\nAntwort: {student_answer}\nMaterial: {materials_text}",
	}

	t.Run("substitutes all fields", func(t *testing.T) {
		rendered := tpl.RenderUser(corpus.GradingJob{
			Subject:       "Chemie",
			TaskText:      "Erklären Sie X.",
			StudentAnswer: "X ist Y.",
			MaterialsText: "M1",
			MaxPoints:     10,
		})

		assert.Equal(t, "Fach: Chemie (Leistungskurs)\nMax: 10\nAufgabe: Erklären Sie X.\nAntwort: X ist Y.\nMaterial: M1", rendered)
	})

	t.Run("empty materials fall back", func(t *testing.T) {
		rendered := tpl.RenderUser(corpus.GradingJob{Subject: "Deutsch", MaxPoints: 12.5})
		assert.Contains(t, rendered, NoMaterialsText)
		assert.Contains(t, rendered, "Basiskurs")
		assert.Contains(t, rendered, "Max: 12.5")
	})
}

func TestCourseLevel(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"Chemie", LevelAdvanced},
		{"Wirtschaft", LevelAdvanced},
		{"Deutsch", LevelBasic},
		{"", LevelBasic},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CourseLevel(tt.subject), tt.subject)
	}
}
