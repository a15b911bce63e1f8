package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/lacquerai/rankview/internal/execcontext"
	"github.com/stoewer/go-strcase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rewriteGolden = flag.Bool("rewrite-golden", false, "rewrite golden files")

var (
	ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	timeRe = regexp.MustCompile(`\(?\d+(\.\d+)?(ns|µs|ms|s)\)?`)
)

func Test_Valid(t *testing.T) {
	newSingleDirectoryValidateTest(t)
}

func Test_MissingIdentifier(t *testing.T) {
	newSingleDirectoryValidateTest(t)
}

func Test_NoMetrics(t *testing.T) {
	newSingleDirectoryValidateTest(t)
}

func Test_EmptyTable(t *testing.T) {
	newSingleDirectoryValidateTest(t)
}

func Test_BlankMetric(t *testing.T) {
	newSingleDirectoryValidateTest(t)
}

func TestValidateCommand(t *testing.T) {
	output, err := executeCommand(rootCmd, "validate", "testdata/mbti.csv")
	require.NoError(t, err)
	assert.Contains(t, output, "All 1 table(s) are valid")
}

func TestValidateCommandInvalid(t *testing.T) {
	output, err := executeCommand(rootCmd, "validate", "testdata/mbti.csv", "testdata/no_country.csv")
	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, output, `required column "Country" is missing`)
	assert.Contains(t, output, "1 of 2 table(s) failed validation")
}

func TestValidateCommandJSON(t *testing.T) {
	stdout, stderr, err := executeCommandSplit(rootCmd, "validate", "--output", "json", "testdata/mbti.csv", "testdata/no_country.csv")
	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, stderr, "validation failed")

	var summary ValidationSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Valid)
	assert.Equal(t, 1, summary.Invalid)

	valid, invalid := summary.Results[0], summary.Results[1]
	assert.True(t, valid.Valid)
	assert.Equal(t, 5, valid.Rows)
	assert.Equal(t, []string{"INTJ", "ENFP", "ESTP"}, valid.Metrics)

	assert.False(t, invalid.Valid)
	assert.Equal(t, "schema", invalid.Kind)
	assert.NotEmpty(t, invalid.Suggestion)
}

func TestValidateCommandIdentifier(t *testing.T) {
	output, err := executeCommand(rootCmd, "validate", "--identifier", "Nation", "testdata/no_country.csv")
	require.NoError(t, err)
	assert.Contains(t, output, "All 1 table(s) are valid")
}

func TestValidateCommandVerbose(t *testing.T) {
	output, err := executeCommand(rootCmd, "validate", "--verbose", "testdata/mbti.csv")
	require.NoError(t, err)
	assert.Contains(t, output, "Detailed results")
	assert.Contains(t, output, "INTJ ENFP ESTP")
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"a.csv", "nested/b.CSV", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("Country,INTJ\nKorea,1\n"), 0o644))
	}

	files, err := collectFiles([]string{dir}, true)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = collectFiles([]string{dir}, false)
	assert.ErrorContains(t, err, "use --recursive")

	_, err = collectFiles([]string{filepath.Join(dir, "missing.csv")}, false)
	assert.ErrorContains(t, err, "cannot access")

	files, err = collectFiles([]string{filepath.Join(dir, "notes.txt")}, false)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func newSingleDirectoryValidateTest(t *testing.T) {
	t.Helper()
	// get the function name from the caller (i.e. the function that called this function)
	pc, _, _, _ := runtime.Caller(1)
	funcName := runtime.FuncForPC(pc).Name()
	if idx := strings.LastIndex(funcName, "."); idx != -1 {
		funcName = funcName[idx+1:]
	}
	funcName = strings.TrimPrefix(funcName, "Test_")
	directory := "testdata/validate/" + strcase.SnakeCase(funcName)

	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			t.Fatalf("panic in validation: %s\n%s", r, stack)
		}
	}()

	resetFlags(rootCmd)
	showAll = true

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	runCtx := execcontext.RunContext{
		Context: context.Background(),
		StdOut:  stdout,
		StdErr:  stderr,
	}

	_ = validateTables(runCtx, []string{filepath.Join(directory, "table.csv")})
	assertGoldenFile(t, directory, stdout, stderr)
}

func assertGoldenFile(t *testing.T, directory string, stdout *bytes.Buffer, stderr *bytes.Buffer) {
	t.Helper()
	goldenFile := filepath.Join(directory, "golden.txt")
	golden, err := os.ReadFile(goldenFile)

	// Remove ANSI codes and normalize durations
	stdoutClean := timeRe.ReplaceAllString(ansiRe.ReplaceAllString(stdout.String(), ""), "(TIME)")
	stderrClean := timeRe.ReplaceAllString(ansiRe.ReplaceAllString(stderr.String(), ""), "(TIME)")
	actual := stdoutClean + "\nSTDERR:\n" + stderrClean

	if os.IsNotExist(err) {
		golden = []byte(actual)
		err = os.WriteFile(goldenFile, golden, 0644)
		require.NoError(t, err)
	} else {
		require.NoError(t, err)
	}

	if *rewriteGolden {
		_ = os.WriteFile(goldenFile, []byte(actual), 0644)
		return
	}

	if !assert.Equal(t, string(golden), actual) {
		_ = os.WriteFile(filepath.Join(directory, "actual.txt"), []byte(actual), 0644)
	}
}
