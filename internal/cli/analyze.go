package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/lacquerai/rankview/internal/chart"
	"github.com/lacquerai/rankview/internal/stats"
	"github.com/lacquerai/rankview/internal/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stoewer/go-strcase"
)

var (
	// Analyze command flags
	analyzeGroupBy  string
	analyzeValue    string
	analyzeReport   string
	analyzeX        string
	analyzeY        string
	analyzeOutDir   string
	analyzeNoCharts bool
	analyzeHead     int
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <csv>",
	Short: "Summarize a table and save overview charts",
	Long: `Print a descriptive summary of a CSV table and save two overview charts.

The summary covers the table shape, the type and missing-value count of
every column, describe statistics, the first rows and the mean of
--report-value within each --group-by group. The charts are a bar chart of
the mean of --value per group and a scatter plot of --x against --y.

Examples:
  rankview analyze countries.csv                                 # LifeExpectancy means, GDP chart
  rankview analyze countries.csv --report-value Population       # Report mean population by country
  rankview analyze countries.csv --value Population              # Chart mean population by country
  rankview analyze countries.csv --x Population --y GDP --out-dir charts
  rankview analyze countries.csv --no-charts --output json       # Summary only, as JSON`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyzeTable(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeGroupBy, "group-by", "Country", "column to group by")
	analyzeCmd.Flags().StringVar(&analyzeValue, "value", "GDP", "numeric column averaged per group in the bar chart")
	analyzeCmd.Flags().StringVar(&analyzeReport, "report-value", "LifeExpectancy", "numeric column averaged per group in the text report")
	analyzeCmd.Flags().StringVar(&analyzeX, "x", "GDP", "scatter plot x column")
	analyzeCmd.Flags().StringVar(&analyzeY, "y", "LifeExpectancy", "scatter plot y column")
	analyzeCmd.Flags().StringVar(&analyzeOutDir, "out-dir", ".", "directory the charts are written to")
	analyzeCmd.Flags().BoolVar(&analyzeNoCharts, "no-charts", false, "skip writing charts")
	analyzeCmd.Flags().IntVar(&analyzeHead, "head", stats.DefaultHeadRows, "number of rows in the head preview")
}

// AnalyzeOutput is the structured output of the analyze command.
type AnalyzeOutput struct {
	stats.Report `yaml:",inline"`
	Charts       []string `json:"charts,omitempty" yaml:"charts,omitempty"`
}

func analyzeTable(cmd *cobra.Command, path string) error {
	df, err := stats.ReadFrameFile(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	report, err := stats.Analyze(df, stats.Options{
		GroupBy:     analyzeGroupBy,
		Value:       analyzeValue,
		ReportValue: analyzeReport,
		HeadRows:    analyzeHead,
	})
	if err != nil {
		return err
	}
	report.Source = filepath.Base(path)

	output := AnalyzeOutput{Report: *report}

	if !analyzeNoCharts {
		var spinner style.Spinner
		if isText() && !viper.GetBool("quiet") {
			spinner = style.NewSpinner(cmd.ErrOrStderr())
			spinner.SetSuffix(" Rendering charts")
			spinner.Start()
		}

		charts, err := saveOverviewCharts(report, df, analyzeOutDir)
		if spinner != nil {
			spinner.Stop()
		}
		if err != nil {
			return err
		}
		output.Charts = charts
	}

	return printResult(cmd.OutOrStdout(), output, func(w io.Writer) error {
		if err := report.WriteText(w); err != nil {
			return err
		}
		for _, c := range output.Charts {
			style.Success(w, fmt.Sprintf("Chart saved to %s", style.FormatFilePath(c)))
		}
		return nil
	})
}

// saveOverviewCharts writes the group-mean bar chart and the x/y scatter
// plot, returning their paths.
func saveOverviewCharts(report *stats.Report, df dataframe.DataFrame, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating chart directory: %w", err)
	}

	var paths []string

	means := stats.SortByMean(report.GroupMeans)
	keys := make([]string, len(means))
	values := make([]float64, len(means))
	for i, m := range means {
		keys[i] = m.Key
		values[i] = m.Mean
	}

	bar, err := chart.GroupedBar(chart.Axes{
		Title:  fmt.Sprintf("Average %s by %s", report.ValueColumn, report.GroupColumn),
		XLabel: report.GroupColumn,
		YLabel: "Average " + report.ValueColumn,
	}, keys, values)
	if err != nil {
		return nil, err
	}
	barPath := filepath.Join(dir, fmt.Sprintf("mean-%s-by-%s.png",
		strcase.KebabCase(report.ValueColumn), strcase.KebabCase(report.GroupColumn)))
	if err := chart.Save(bar, barPath); err != nil {
		return nil, err
	}
	paths = append(paths, barPath)

	xs, ys, err := stats.Pairs(df, analyzeX, analyzeY)
	if err != nil {
		return nil, err
	}
	scatter, err := chart.Scatter(chart.Axes{
		Title:  fmt.Sprintf("%s vs %s", analyzeX, analyzeY),
		XLabel: analyzeX,
		YLabel: analyzeY,
	}, xs, ys)
	if err != nil {
		return nil, err
	}
	scatterPath := filepath.Join(dir, fmt.Sprintf("%s-vs-%s.png",
		strcase.KebabCase(analyzeX), strcase.KebabCase(analyzeY)))
	if err := chart.Save(scatter, scatterPath); err != nil {
		return nil, err
	}
	paths = append(paths, scatterPath)

	log.Debug().Strs("charts", paths).Msg("Overview charts saved")

	return paths, nil
}
