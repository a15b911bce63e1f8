package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lacquerai/rankview/internal/engine"
	"github.com/lacquerai/rankview/internal/execcontext"
	"github.com/lacquerai/rankview/internal/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errValidationFailed is returned when at least one table was rejected.
var errValidationFailed = errors.New("validation failed")

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check that tables can be ranked",
	Long: `Check CSV tables before ranking them.

A table passes when it parses as CSV with a header row, has the identifier
column (Country unless --identifier says otherwise) and carries at least one
recognized metric column.

Examples:
  rankview validate mbti.csv                    # Validate a single table
  rankview validate data/*.csv                  # Validate several tables
  rankview validate --recursive ./data          # Validate every CSV under a directory
  rankview validate --output json mbti.csv      # JSON output for CI/CD`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateTables(newRunContext(cmd), args)
	},
}

var (
	recursive bool
	showAll   bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recursively validate tables in directories")
	validateCmd.Flags().BoolVar(&showAll, "show-all", false, "show all validation results, including successful ones")
}

// ValidationResult represents the result of validating one table
type ValidationResult struct {
	File       string        `json:"file" yaml:"file"`
	Valid      bool          `json:"valid" yaml:"valid"`
	Rows       int           `json:"rows,omitempty" yaml:"rows,omitempty"`
	Metrics    []string      `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Duration   time.Duration `json:"duration_ms" yaml:"duration_ms"`
	Kind       string        `json:"kind,omitempty" yaml:"kind,omitempty"`
	Errors     []string      `json:"errors,omitempty" yaml:"errors,omitempty"`
	Suggestion string        `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// ValidationSummary represents the summary of all validation results
type ValidationSummary struct {
	Total    int                `json:"total" yaml:"total"`
	Valid    int                `json:"valid" yaml:"valid"`
	Invalid  int                `json:"invalid" yaml:"invalid"`
	Duration time.Duration      `json:"total_duration_ms" yaml:"total_duration_ms"`
	Results  []ValidationResult `json:"results" yaml:"results"`
}

func validateTables(runCtx execcontext.RunContext, args []string) error {
	start := time.Now()

	files, err := collectFiles(args, recursive)
	if err != nil {
		return fmt.Errorf("failed to collect files: %w", err)
	}

	if len(files) == 0 {
		style.Warning(runCtx, "No CSV files found to validate")
		return nil
	}

	runner := newRunner(nil)
	results := make([]ValidationResult, 0, len(files))

	for _, file := range files {
		result := validateSingleFile(runCtx, runner, file)
		results = append(results, result)

		if !viper.GetBool("quiet") && isText() {
			if result.Valid {
				if showAll {
					style.Success(runCtx, fmt.Sprintf("%s: %d rows, metrics %s (%v)",
						file, result.Rows, strings.Join(result.Metrics, ", "), result.Duration))
				}
			} else {
				style.Error(runCtx, fmt.Sprintf("%s (%v)", file, result.Duration))
				for _, errMsg := range result.Errors {
					fmt.Fprintf(runCtx, "  %s\n", errMsg)
				}
				if result.Suggestion != "" {
					fmt.Fprintf(runCtx, "  %s\n", style.RenderSuggestion(result.Suggestion))
				}
			}
		}
	}

	summary := ValidationSummary{
		Total:    len(results),
		Duration: time.Since(start),
		Results:  results,
	}

	for _, result := range results {
		if result.Valid {
			summary.Valid++
		} else {
			summary.Invalid++
		}
	}

	if err := printResult(runCtx, summary, func(w io.Writer) error {
		return printValidationSummary(w, summary)
	}); err != nil {
		return err
	}

	if summary.Invalid > 0 {
		return errValidationFailed
	}
	return nil
}

func validateSingleFile(runCtx execcontext.RunContext, runner *engine.Runner, filename string) ValidationResult {
	result := ValidationResult{
		File:  filename,
		Valid: true,
	}

	start := time.Now()
	loaded, err := runner.LoadFile(runCtx, filename)
	result.Duration = time.Since(start)

	if err != nil {
		result.Valid = false
		result.Kind = string(engine.ErrorKind(err))
		result.Errors = append(result.Errors, firstLine(err.Error()))
		result.Suggestion = suggestionOf(err)
	} else {
		result.Rows = loaded.Rows
		result.Metrics = loaded.Metrics
	}

	log.Debug().
		Str("file", filename).
		Bool("valid", result.Valid).
		Dur("duration", result.Duration).
		Msg("Validated table")

	return result
}

func collectFiles(args []string, recursive bool) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			if !recursive {
				return nil, fmt.Errorf("%s is a directory, use --recursive to validate directories", arg)
			}
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isCSVFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("error walking directory %s: %w", arg, err)
			}
			continue
		}

		// Explicitly named files are validated whatever their extension.
		files = append(files, arg)
	}

	return files, nil
}

func isCSVFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".csv")
}

func printValidationSummary(w io.Writer, summary ValidationSummary) error {
	if viper.GetBool("quiet") {
		return nil
	}

	fmt.Fprintln(w)
	if summary.Invalid == 0 {
		style.Success(w, fmt.Sprintf("All %d table(s) are valid (%v)", summary.Total, summary.Duration.Round(time.Microsecond)))
	} else {
		style.Error(w, fmt.Sprintf("%d of %d table(s) failed validation (%v)", summary.Invalid, summary.Total, summary.Duration.Round(time.Microsecond)))
	}

	if !viper.GetBool("verbose") {
		return nil
	}

	fmt.Fprintf(w, "\nDetailed results:\n")
	rows := make([][]string, len(summary.Results))
	for i, result := range summary.Results {
		status := "valid"
		if !result.Valid {
			status = "invalid (" + result.Kind + ")"
		}
		rows[i] = []string{
			result.File,
			status,
			fmt.Sprintf("%d", result.Rows),
			strings.Join(result.Metrics, " "),
			result.Duration.String(),
		}
	}

	return style.Table(w, []string{"File", "Status", "Rows", "Metrics", "Duration"}, rows)
}
