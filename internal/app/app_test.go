package app

import (
	"bytes"
	"encoding/json"
	"os"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/blackwell-systems/readfromfile/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag variable to its default between runs.
func resetFlags() {
	flagNoColor, flagJSON, flagVerbose, flagRecord = false, false, false, false
	flagConfig, flagBaseDir, flagNotify = "", "", ""
	expandNoNewline = false
	watchInterval, watchQuiet = "", false
	historyLimit, historyKind, historyPath, historyPrune = 0, "", "", -1
}

// run executes the root command with args in an isolated HOME.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCommands_Registered(t *testing.T) {
	want := map[string]bool{"expand": false, "watch": false, "mcp": false, "history": false, "doctor": false}
	for _, cmd := range rootCmd.Commands() {
		name := strings.Fields(cmd.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("%s subcommand not registered on rootCmd", name)
		}
	}
}

func TestExpand_SingleFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "args.txt", "# before comment\nkeep   this\n   // another comment\nnext\tline\twith\t  tabs\n\n\nlast line")

	stdout, _, err := run(t, "expand", path)
	require.NoError(t, err)
	assert.Equal(t, "keep this next line with tabs last line\n", stdout)
}

func TestExpand_NoNewline(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "a.txt", "a  b")

	stdout, _, err := run(t, "expand", "-n", path)
	require.NoError(t, err)
	assert.Equal(t, "a b", stdout)
}

func TestExpand_BaseDir(t *testing.T) {
	isolate(t)
	base := t.TempDir()
	writeFile(t, base, filepath.Join("conf", "args.txt"), "relative")

	stdout, _, err := run(t, "expand", "--base-dir", base, filepath.Join("conf", "args.txt"))
	require.NoError(t, err)
	assert.Equal(t, "relative\n", stdout)
}

func TestExpand_MissingFile(t *testing.T) {
	isolate(t)
	missing := filepath.Join(t.TempDir(), "non-existent-file.txt")

	stdout, stderr, err := run(t, "expand", missing)
	assert.ErrorIs(t, err, errExpansionFailed)
	assert.Equal(t, "\n", stdout)
	assert.Contains(t, stderr, "ReadFromFile could not read file: "+missing)
}

func TestExpand_NoArgs(t *testing.T) {
	isolate(t)

	_, stderr, err := run(t, "expand")
	assert.ErrorIs(t, err, errExpansionFailed)
	assert.Contains(t, stderr, "ReadFromFile requires a file path argument")
}

func TestExpand_NotifyNone(t *testing.T) {
	isolate(t)

	_, stderr, err := run(t, "expand", "--notify", "none", "  ")
	assert.ErrorIs(t, err, errExpansionFailed)
	assert.NotContains(t, stderr, "ReadFromFile")
}

func TestExpand_JSONMultiple(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "c.txt", "# only comments")

	stdout, _, err := run(t, "expand", "--json", "--base-dir", dir, "a.txt", "missing.txt", "c.txt")
	assert.ErrorIs(t, err, errExpansionFailed)

	var results []expandResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 3)

	assert.Equal(t, "alpha", results[0].Text)
	assert.False(t, results[0].Empty)
	assert.Equal(t, "read_failure", results[1].Kind)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].Empty)
	assert.Empty(t, results[2].Kind)
}

func TestExpand_RecordAndHistory(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "recorded  text")

	_, _, err := run(t, "expand", "--record", "--base-dir", dir, "a.txt")
	require.NoError(t, err)
	_, _, err = run(t, "expand", "--record", "--notify", "none", "--base-dir", dir, "gone.txt")
	require.Error(t, err)

	stdout, _, err := run(t, "history", "--json")
	require.NoError(t, err)

	var rows []store.Expansion
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "read_failure", rows[0].Kind)
	assert.Equal(t, store.KindOK, rows[1].Kind)
	assert.Equal(t, "recorded text", rows[1].Text)

	stdout, _, err = run(t, "history", "--kind", "ok")
	require.NoError(t, err)
	assert.Contains(t, stdout, "recorded text")
	assert.NotContains(t, stdout, "gone.txt")

	stdout, _, err = run(t, "history", "--prune", "0")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed 2 rows")
}

func TestHistory_Empty(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No expansions recorded.")
}

func TestDoctor_JSON(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "doctor", "--json", "--base-dir", t.TempDir())
	require.NoError(t, err)

	var out doctorOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 4, out.TotalCount)
	assert.Equal(t, 4, out.PassedCount)
}

func TestDoctor_BadBaseDir(t *testing.T) {
	isolate(t)
	file := writeFile(t, t.TempDir(), "file.txt", "x")

	check := checkBaseDir(file)
	assert.False(t, check.Passed)
	assert.Contains(t, check.Message, "not a directory")

	check = checkBaseDir(filepath.Join(file, "missing"))
	assert.False(t, check.Passed)
}

func TestWatch_InvalidInterval(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "a.txt", "x")

	_, _, err := run(t, "watch", "--interval", "10ms", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 100ms")

	_, _, err = run(t, "watch", "--interval", "soon", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid interval")
}

func TestWatch_MissingPathReported(t *testing.T) {
	isolate(t)

	_, stderr, err := run(t, "watch", `""`)
	assert.ErrorIs(t, err, errExpansionFailed)
	assert.Contains(t, stderr, "ReadFromFile requires a file path argument")
}

func TestExpand_RecordManyFilesInParallel(t *testing.T) {
	isolate(t)
	prev := runtime.GOMAXPROCS(8)
	t.Cleanup(func() { runtime.GOMAXPROCS(prev) })

	dir := t.TempDir()
	const n = 32
	args := []string{"expand", "--record", "--base-dir", dir}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("f%02d.txt", i)
		writeFile(t, dir, name, fmt.Sprintf("file %d", i))
		args = append(args, name)
	}

	_, stderr, err := run(t, args...)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "recording outcome")

	stdout, _, err := run(t, "history", "--json", "--limit", "100")
	require.NoError(t, err)

	var rows []store.Expansion
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	assert.Len(t, rows, n)
}
