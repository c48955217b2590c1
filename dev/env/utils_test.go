package devenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module ncucourse\n\ngo 1.23\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(dir, "lib", "nested")
	err = os.MkdirAll(nested, 0777)
	if err != nil {
		t.Fatal(err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	err = os.Chdir(nested)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Chdir(cwd)
	})

	resolved, err := ResolvePath("<dev_state>/courses.db")
	if err != nil {
		t.Fatal(err)
	}
	expectedRoot, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	actual, err := filepath.EvalSymlinks(filepath.Dir(resolved))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, filepath.Join(expectedRoot, "dev", ".state"), actual)
	require.Equal(t, "courses.db", filepath.Base(resolved))

	plain, err := ResolvePath("out/courses.db")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "out/courses.db", plain)
}
