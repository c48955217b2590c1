package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

func readJSON5File[T any](path string) (T, bool, error) {
	var out T
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	if len(contents) == 0 {
		return out, false, nil
	}
	err = json5.Unmarshal(contents, &out)
	if err != nil {
		return out, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, true, nil
}

// reads a configuration file, `name` should come with a file extension,
// it will automatically be lopped off to produce the other extensions.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
func ReadConfig[T any](name string) (T, error) {
	dirname := filepath.Dir(name)
	prefixname, ext := splitExt(filepath.Base(name))

	out, foundDefault, err := readJSON5File[T](name)
	if err != nil {
		return out, err
	}

	localFilepath := filepath.Join(
		dirname,
		fmt.Sprintf("%s.local.%s", prefixname, ext),
	)
	override, foundLocal, err := readJSON5File[T](localFilepath)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localFilepath)
	}

	if !foundDefault && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadConfigWithDefaults is ReadConfig layered on top of defaults. the
// files are decoded over a copy of defaults, so every key they set wins,
// zero values included, and absent keys keep their default. missing files
// are not an error.
func ReadConfigWithDefaults[T any](name string, defaults T) (T, error) {
	dirname := filepath.Dir(name)
	prefixname, ext := splitExt(filepath.Base(name))
	layers := []string{
		name,
		filepath.Join(dirname, fmt.Sprintf("%s.local.%s", prefixname, ext)),
	}

	out := defaults
	for _, path := range layers {
		contents, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return defaults, err
		}
		if len(contents) == 0 {
			continue
		}
		err = json5.Unmarshal(contents, &out)
		if err != nil {
			return defaults, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return out, nil
}

// ReadConfig but it recursively goes up the filesystem until the root
// to find a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	root, err := filepath.Abs("/")
	if err != nil {
		return defaultOut, err
	}
	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for current != root {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if errors.Is(err, os.ErrNotExist) {
			current = filepath.Dir(current)
			continue
		}
		if err != nil {
			return defaultOut, err
		}

		return config, nil
	}

	return defaultOut, os.ErrNotExist
}

// LoadDotenv loads environment variables from the given .env files,
// variables already set in the environment win. missing files are skipped.
func LoadDotenv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		_, err := os.Stat(p)
		if err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}
