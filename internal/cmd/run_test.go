package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifestYAML = `
version: "1.0"
models:
  - gpt-4o
endpoint:
  base_url: https://api.example.com/v1
  credential_file: /etc/gradebench/token
corpus:
  root: ./corpus
prompts:
  root: ./prompts
`

func TestLoadManifest(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bench.yaml")
		require.NoError(t, os.WriteFile(path, []byte(testManifestYAML), 0o644))

		m, err := loadManifest(&cobra.Command{}, path)
		require.NoError(t, err)
		assert.Equal(t, []string{"gpt-4o"}, m.Models)
	})

	t.Run("from stdin", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader(testManifestYAML))

		m, err := loadManifest(cmd, "-")
		require.NoError(t, err)
		assert.Equal(t, []string{"gpt-4o"}, m.Models)
		assert.Equal(t, "https://api.example.com/v1", m.Endpoint.BaseURL)
	})
}

func TestReadCredential(t *testing.T) {
	dir := t.TempDir()

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		path := filepath.Join(dir, "token")
		require.NoError(t, os.WriteFile(path, []byte("  sk-abc123\n"), 0o600))

		token, err := readCredential(path)
		require.NoError(t, err)
		assert.Equal(t, "sk-abc123", token)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readCredential(filepath.Join(dir, "nope"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Credential file not found")
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty")
		require.NoError(t, os.WriteFile(path, []byte("   \n"), 0o600))

		_, err := readCredential(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Credential file is empty")
	})
}
