package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree materializes a small directory tree under t.TempDir() from a
// list of project-relative file paths, each holding trivial content.
func writeTree(t *testing.T, paths ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range paths {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("package x\n"), 0o644))
	}
	return root
}

func TestDiscover_IncludeExclude(t *testing.T) {
	root := writeTree(t,
		"src/a.go",
		"src/b.go",
		"src/vendor/c.go",
		"docs/readme.md",
	)

	got, err := Discover(root, []string{"**/*.go"}, []string{"**/vendor/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.go", "src/b.go"}, got)
}

func TestDiscover_DedupesSymlinks(t *testing.T) {
	root := writeTree(t, "src/a.go")
	require.NoError(t, os.Symlink(filepath.Join(root, "src/a.go"), filepath.Join(root, "src/alias.go")))

	got, err := Discover(root, []string{"**/*.go"}, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1, "symlink alias pointing at the same canonical file must be deduped")
}

func TestDiscover_NoMatches(t *testing.T) {
	root := writeTree(t, "docs/readme.md")

	got, err := Discover(root, []string{"**/*.go"}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestValidatePattern(t *testing.T) {
	assert.NoError(t, ValidatePattern("**/*.go"))
	assert.Error(t, ValidatePattern("[unterminated"))
}
