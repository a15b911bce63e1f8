package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lacquerai/rankview/internal/chart"
	"github.com/lacquerai/rankview/internal/engine"
	"github.com/lacquerai/rankview/internal/execcontext"
	"github.com/lacquerai/rankview/internal/export"
	"github.com/lacquerai/rankview/internal/style"
	pkgEvents "github.com/lacquerai/rankview/pkg/events"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Rank command flags
	rankMetric  string
	rankTop     int
	rankLabels  bool
	rankChart   string
	rankExport  string
	rankPreview int
	rankWidth   int
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank <csv>",
	Short: "Rank a table by one metric and chart the top entries",
	Long: `Rank the rows of a CSV table by one metric column and draw the largest
values as a horizontal bar chart, biggest on top.

Rows whose metric cell is blank or not a number are skipped. A metric whose
values are all zero or all missing is reported instead of charted.

Examples:
  rankview rank mbti.csv --metric INTJ                 # Top 10 countries by INTJ
  rankview rank mbti.csv --metric ENFP --top 5         # Top 5 only
  rankview rank mbti.csv --metric INTJ --chart top.png # Save the chart as PNG
  rankview rank mbti.csv --metric INTJ --export out/   # Write top10-intj.csv into out/
  rankview rank mbti.csv --metric INTJ --output json   # Ranking and figure as JSON`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runCtx := newRunContext(cmd)

		var listener pkgEvents.Listener
		if isText() && !viper.GetBool("quiet") {
			listener = engine.NewProgressTracker(cmd.ErrOrStderr())
		}

		if err := rankTable(runCtx, newRunner(listener), args[0]); err != nil {
			if isText() {
				printFailure(runCtx.StdErr, err)
			}
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringVarP(&rankMetric, "metric", "m", "", "metric column to rank by (default: first metric in the table)")
	rankCmd.Flags().IntVarP(&rankTop, "top", "n", 0, "number of entries to show (default 10)")
	rankCmd.Flags().BoolVar(&rankLabels, "labels", true, "draw value labels next to each bar")
	rankCmd.Flags().StringVar(&rankChart, "chart", "", "save the chart to a .png or .svg file")
	rankCmd.Flags().StringVar(&rankExport, "export", "", "export the ranking to a .csv, .xlsx, .json or .yaml file, or into a directory")
	rankCmd.Flags().IntVar(&rankPreview, "preview", 0, "print the first N raw rows of the table")
	rankCmd.Flags().IntVar(&rankWidth, "width", 40, "width of the terminal bars in columns")

	_ = viper.BindPFlag("top", rankCmd.Flags().Lookup("top"))
	_ = viper.BindPFlag("labels", rankCmd.Flags().Lookup("labels"))
}

// RankOutput is the structured output of the rank command.
type RankOutput struct {
	engine.RankResult `yaml:",inline"`
	Chart             string `json:"chart,omitempty" yaml:"chart,omitempty"`
	Export            string `json:"export,omitempty" yaml:"export,omitempty"`
}

func rankTable(runCtx execcontext.RunContext, runner *engine.Runner, path string) error {
	loaded, err := runner.LoadFile(runCtx, path)
	if err != nil {
		return err
	}

	metric := rankMetric
	if metric == "" {
		metric = loaded.Metrics[0]
		if isText() && !viper.GetBool("quiet") {
			style.Info(runCtx.StdErr, fmt.Sprintf("No --metric given, ranking by %s", metric))
		}
	}

	result, err := runner.Rank(runCtx, loaded.Table, metric, rankTop)
	if err != nil {
		return err
	}

	output := RankOutput{RankResult: *result}

	if rankChart != "" {
		if err := chart.SaveImage(result.Figure, rankChart); err != nil {
			return fmt.Errorf("saving chart: %w", err)
		}
		output.Chart = rankChart
	}

	if rankExport != "" {
		target, err := exportPath(rankExport, result.Ranking.Metric, result.Ranking.N)
		if err != nil {
			return err
		}
		if err := export.WriteFile(result.Ranking, target); err != nil {
			return err
		}
		output.Export = target
	}

	return printResult(runCtx, output, func(w io.Writer) error {
		fmt.Fprintln(w)
		fmt.Fprint(w, chart.RenderTerminal(result.Figure, rankWidth))

		if viper.GetBool("verbose") {
			fmt.Fprintln(w)
			rows := make([][]string, len(result.Ranking.Rows))
			for i, row := range result.Ranking.Rows {
				rows[i] = []string{fmt.Sprintf("%d", row.Rank), row.Identifier, chart.FormatValue(row.Score)}
			}
			if err := style.Table(w, []string{"Rank", result.Ranking.Identifier, metric}, rows); err != nil {
				return err
			}
		}

		if rankPreview > 0 {
			preview := loaded.Table.Preview(rankPreview)
			fmt.Fprintf(w, "\n%s\n", style.TitleStyle.Render("Raw data"))
			if err := style.Table(w, preview[0], preview[1:]); err != nil {
				return err
			}
		}

		if output.Chart != "" {
			style.Success(w, fmt.Sprintf("Chart saved to %s", style.FormatFilePath(output.Chart)))
		}
		if output.Export != "" {
			style.Success(w, fmt.Sprintf("Ranking exported to %s", style.FormatFilePath(output.Export)))
		}
		return nil
	})
}

// exportPath resolves --export: a directory gets a default file name, any
// other value is used as is.
func exportPath(target, metric string, n int) (string, error) {
	isDir := strings.HasSuffix(target, "/") || strings.HasSuffix(target, string(filepath.Separator))
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		isDir = true
	}

	if !isDir {
		if _, err := export.FormatFromPath(target); err != nil {
			return "", err
		}
		return target, nil
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	return filepath.Join(target, export.DefaultFileName(metric, n, export.FormatCSV)), nil
}
