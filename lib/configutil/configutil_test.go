package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl     string `json:"base_url"`
	Concurrency int    `json:"concurrency"`
	Output      string `json:"output"`
}

func writeFile(t *testing.T, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.json5"), `{
		// comments are allowed
		base_url: "https://example.com",
		concurrency: 2,
	}`)
	writeFile(t, filepath.Join(dir, "app.local.json5"), `{ concurrency: 4 }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, testConfig{BaseUrl: "https://example.com", Concurrency: 4}, cfg)

	_, err = ReadConfig[testConfig](filepath.Join(dir, "missing.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigWithDefaults(t *testing.T) {
	dir := t.TempDir()
	defaults := testConfig{BaseUrl: "https://default", Concurrency: 1, Output: "out.json"}

	cfg, err := ReadConfigWithDefaults(filepath.Join(dir, "app.json5"), defaults)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, defaults, cfg)

	writeFile(t, filepath.Join(dir, "app.json5"), `{ output: "custom.json" }`)
	cfg, err = ReadConfigWithDefaults(filepath.Join(dir, "app.json5"), defaults)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, testConfig{BaseUrl: "https://default", Concurrency: 1, Output: "custom.json"}, cfg)

	// explicit zero values override defaults, the local file wins last
	writeFile(t, filepath.Join(dir, "app.json5"), `{ output: "", concurrency: 8 }`)
	writeFile(t, filepath.Join(dir, "app.local.json5"), `{ concurrency: 0 }`)
	cfg, err = ReadConfigWithDefaults(filepath.Join(dir, "app.json5"), defaults)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, testConfig{BaseUrl: "https://default", Concurrency: 0, Output: ""}, cfg)
	require.Equal(t, "out.json", defaults.Output)

	writeFile(t, filepath.Join(dir, "broken.json5"), `{ output: `)
	_, err = ReadConfigWithDefaults(filepath.Join(dir, "broken.json5"), defaults)
	require.Error(t, err)
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	writeFile(t, path, "NCUCOURSE_TEST_DOTENV=loaded\n")
	t.Setenv("NCUCOURSE_TEST_DOTENV", "")
	os.Unsetenv("NCUCOURSE_TEST_DOTENV")

	err := LoadDotenv(filepath.Join(dir, "missing.env"), path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "loaded", os.Getenv("NCUCOURSE_TEST_DOTENV"))
}
