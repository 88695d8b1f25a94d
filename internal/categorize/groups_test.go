package categorize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGroupsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "groups.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadGroups(t *testing.T) {
	path := writeGroupsFile(t, `
groups:
  - label: Streaming
    patterns: [NETFLIX, SPOTIFY, VIDELAND]
    category_keywords: [abonnement, streaming]
  - label: Sport
    patterns: [BASICFIT]
`)

	groups, err := LoadGroups(path)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Streaming", groups[0].Label)
	assert.Equal(t, []string{"NETFLIX", "SPOTIFY", "VIDELAND"}, groups[0].Patterns)
	assert.Equal(t, []string{"abonnement", "streaming"}, groups[0].CategoryKeywords)
	assert.Empty(t, groups[1].CategoryKeywords)
}

func TestLoadGroups_Invalid(t *testing.T) {
	_, err := LoadGroups(writeGroupsFile(t, "groups:\n  - patterns: [X]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing label")

	_, err = LoadGroups(writeGroupsFile(t, "groups:\n  - label: Leeg\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no patterns")

	_, err = LoadGroups(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDefaultGroups(t *testing.T) {
	groups := DefaultGroups()
	require.NotEmpty(t, groups)
	for _, g := range groups {
		assert.NotEmpty(t, g.Label)
		assert.NotEmpty(t, g.Patterns)
	}
}
