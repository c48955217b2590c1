package devenv

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const moduleName = "ncucourse"

var modName = regexp.MustCompile(`(?m)^module *([\w\-_./]+)$`)

func isWorkspaceRoot(currentdir string) bool {
	mod, err := os.ReadFile(filepath.Join(currentdir, "go.mod"))
	if err != nil {
		return false
	}
	matches := modName.FindSubmatch(mod)
	return len(matches) >= 2 && string(matches[1]) == moduleName
}

func GetWorkspaceRoot() (string, error) {
	currentdir, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs("/")
	if err != nil {
		return "", err
	}

	for currentdir != root {
		if isWorkspaceRoot(currentdir) {
			return currentdir, nil
		}
		currentdir = filepath.Dir(currentdir)
	}

	return "", os.ErrNotExist
}

const statePrefix = "<dev_state>"

// ResolvePath expands a leading <dev_state> into the dev/.state directory
// of the workspace, creating it if needed. other paths are returned as is.
func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, statePrefix) {
		return path, nil
	}

	root, err := GetWorkspaceRoot()
	if err != nil {
		return "", err
	}

	err = os.MkdirAll(filepath.Join(root, "dev", ".state"), 0777)
	if err != nil {
		return "", err
	}

	subpath := strings.TrimLeft(strings.TrimPrefix(path, statePrefix), `/\`)
	return filepath.Join(root, "dev", ".state", subpath), nil
}
