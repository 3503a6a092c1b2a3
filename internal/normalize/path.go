package normalize

import (
	"errors"
	"path/filepath"
	"strings"
)

// errEscapesBase is the reason attached to InvalidPath when a relative path
// leaves the base directory while confinement is on.
var errEscapesBase = errors.New("path escapes base directory")

// CleanInput trims raw and strips one layer of surrounding double quotes.
// The result is empty when nothing usable remains.
func CleanInput(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// Resolve turns a cleaned path into the file location to read. Absolute
// paths, and any path when baseDir is empty, are only cleaned; relative
// paths are joined onto baseDir. With confine set, a relative path that
// climbs out of baseDir is rejected.
func Resolve(path, baseDir string, confine bool) (string, error) {
	if err := validatePath(path); err != nil {
		return "", &Error{Kind: KindInvalidPath, Path: path, Err: err}
	}
	if filepath.IsAbs(path) || baseDir == "" {
		return filepath.Clean(path), nil
	}
	if err := validatePath(baseDir); err != nil {
		return "", &Error{Kind: KindInvalidPath, Path: baseDir, Err: err}
	}

	resolved := filepath.Clean(filepath.Join(baseDir, path))
	if confine && escapes(filepath.Clean(baseDir), resolved) {
		return "", &Error{Kind: KindInvalidPath, Path: path, Err: errEscapesBase}
	}
	return resolved, nil
}

// escapes reports whether target lies outside base.
func escapes(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
