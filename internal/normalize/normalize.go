// Package normalize reads a text file and folds it into a single line:
// comment lines are dropped, surviving lines are trimmed and joined, and
// whitespace runs collapse to one space.
package normalize

import (
	"errors"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

var errMalformedInput = errors.New("input is not valid UTF-8")

// Result is the outcome of a successful normalization.
type Result struct {
	// Path is the resolved file that was read.
	Path string `json:"path"`
	// Text is the normalized line; empty when the file had no content.
	Text string `json:"text"`
	// Lines is the number of lines in the file.
	Lines int `json:"lines"`
	// Kept is the number of lines that survived comment filtering.
	Kept int `json:"kept"`
}

// Content returns the normalized text and whether there was any.
func (r Result) Content() (string, bool) {
	return r.Text, r.Text != ""
}

// Normalizer resolves and folds files. The zero value is ready to use.
type Normalizer struct {
	// Confine rejects relative paths that climb out of the base directory.
	Confine bool

	// ReadFile replaces os.ReadFile when set.
	ReadFile func(name string) ([]byte, error)
}

// Normalize resolves raw against baseDir (empty means the working
// directory), reads the file, and folds it. Every error is a *Error.
func (n *Normalizer) Normalize(raw, baseDir string) (Result, error) {
	cleaned := CleanInput(raw)
	if cleaned == "" {
		return Result{}, &Error{Kind: KindMissingPath}
	}

	path, err := Resolve(cleaned, baseDir, n.Confine)
	if err != nil {
		return Result{}, err
	}

	read := n.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(path)
	if err != nil {
		return Result{}, &Error{Kind: KindReadFailure, Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return Result{}, &Error{Kind: KindReadFailure, Path: path, Err: errMalformedInput}
	}

	lines := SplitLines(string(data))
	text, kept := fold(lines)
	return Result{
		Path:  path,
		Text:  text,
		Lines: len(lines),
		Kept:  kept,
	}, nil
}

// Normalize is a convenience wrapper around a zero Normalizer.
func Normalize(raw, baseDir string) (Result, error) {
	var n Normalizer
	return n.Normalize(raw, baseDir)
}

// Text folds in-memory content the same way Normalize folds a file.
func Text(content string) string {
	text, _ := fold(SplitLines(content))
	return text
}

// fold drops comment lines, trims and joins the rest, and collapses
// whitespace. kept counts the lines that survived filtering.
func fold(lines []string) (text string, kept int) {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if IsComment(line) {
			continue
		}
		parts = append(parts, strings.TrimSpace(line))
	}
	return CollapseSpace(strings.Join(parts, " ")), len(parts)
}

// IsComment reports whether line starts with # or // once leading
// whitespace is removed.
func IsComment(line string) bool {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//")
}

// SplitLines splits on \n, \r\n and lone \r. A trailing terminator does not
// produce an extra empty line.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			lines = append(lines, s[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, s[start:i])
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// CollapseSpace replaces every whitespace run with one space and trims
// both ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
