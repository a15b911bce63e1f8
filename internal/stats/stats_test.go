package stats

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	_ "github.com/lacquerai/rankview/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countriesCSV = `Country,Year,Population,GDP,LifeExpectancy
Korea,2001,51000000,300000,82.5
USA,2003,330000000,900000,78.1
Korea,2010,52000000,500000,
Japan,2015,125000000,450000,84.2
USA,2020,331000000,700000,77.9
France,2005,67000000,250000,82.0
`

func readCountries(t *testing.T) *Report {
	t.Helper()
	df, err := ReadFrame(strings.NewReader(countriesCSV))
	require.NoError(t, err)

	report, err := Analyze(df, Options{GroupBy: "Country", Value: "GDP", HeadRows: 3})
	require.NoError(t, err)
	return report
}

func TestAnalyzeShape(t *testing.T) {
	report := readCountries(t)

	assert.Equal(t, 6, report.Rows)
	assert.Equal(t, 5, report.Columns)
	require.Len(t, report.Head, 4)
	assert.Equal(t, []string{"Country", "Year", "Population", "GDP", "LifeExpectancy"}, report.Head[0])
	require.NotEmpty(t, report.Describe)
	assert.Equal(t, "column", report.Describe[0][0])
}

func TestSummarizeMissing(t *testing.T) {
	report := readCountries(t)

	missing := map[string]int{}
	for _, c := range report.Summary {
		missing[c.Name] = c.Missing
	}
	assert.Equal(t, 0, missing["Country"])
	assert.Equal(t, 0, missing["GDP"])
	assert.Equal(t, 1, missing["LifeExpectancy"])
}

func TestGroupMeans(t *testing.T) {
	report := readCountries(t)

	require.Len(t, report.GroupMeans, 4)
	assert.Equal(t, "France", report.GroupMeans[0].Key)
	assert.Equal(t, "USA", report.GroupMeans[3].Key)

	byKey := map[string]float64{}
	for _, g := range report.GroupMeans {
		byKey[g.Key] = g.Mean
	}
	assert.InDelta(t, 400000, byKey["Korea"], 1e-6)
	assert.InDelta(t, 800000, byKey["USA"], 1e-6)
	assert.InDelta(t, 450000, byKey["Japan"], 1e-6)

	sorted := SortByMean(report.GroupMeans)
	assert.Equal(t, "France", sorted[0].Key)
	assert.Equal(t, "USA", sorted[3].Key)
}

func TestGroupMeansSkipsMissing(t *testing.T) {
	df, err := ReadFrame(strings.NewReader(countriesCSV))
	require.NoError(t, err)

	means, err := GroupMeans(df, "Country", "LifeExpectancy")
	require.NoError(t, err)
	require.Len(t, means, 4)

	byKey := map[string]float64{}
	for _, g := range means {
		byKey[g.Key] = g.Mean
	}
	assert.InDelta(t, 82.5, byKey["Korea"], 1e-9)
	assert.InDelta(t, 78.0, byKey["USA"], 1e-9)
}

func TestReportValueSeparateFromChartValue(t *testing.T) {
	df, err := ReadFrame(strings.NewReader(countriesCSV))
	require.NoError(t, err)

	report, err := Analyze(df, Options{GroupBy: "Country", Value: "GDP", ReportValue: "LifeExpectancy"})
	require.NoError(t, err)

	assert.Equal(t, "GDP", report.ValueColumn)
	assert.Equal(t, "LifeExpectancy", report.ReportColumn)
	require.Len(t, report.GroupMeans, 4)
	require.Len(t, report.ReportMeans, 4)
	assert.Equal(t, "Japan", report.ReportMeans[1].Key)
	assert.InDelta(t, 84.2, report.ReportMeans[1].Mean, 1e-9)

	text := report.String()
	assert.Contains(t, text, "=== Mean LifeExpectancy by Country ===")
	assert.NotContains(t, text, "=== Mean GDP by Country ===")
}

func TestGroupMeansErrors(t *testing.T) {
	df, err := ReadFrame(strings.NewReader(countriesCSV))
	require.NoError(t, err)

	_, err = GroupMeans(df, "Region", "GDP")
	assert.ErrorContains(t, err, "Region")

	_, err = GroupMeans(df, "Year", "Country")
	assert.ErrorContains(t, err, "not numeric")
}

func TestPairsSkipsMissing(t *testing.T) {
	df, err := ReadFrame(strings.NewReader(countriesCSV))
	require.NoError(t, err)

	xs, ys, err := Pairs(df, "GDP", "LifeExpectancy")
	require.NoError(t, err)
	assert.Len(t, xs, 5)
	assert.Len(t, ys, 5)
	assert.Equal(t, 300000.0, xs[0])
	assert.Equal(t, 82.5, ys[0])

	_, _, err = Pairs(df, "GDP", "Happiness")
	assert.Error(t, err)
}

func TestReadFrameErrors(t *testing.T) {
	_, err := ReadFrame(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadFrameFile("does-not-exist.csv")
	assert.Error(t, err)
}

func TestReportText(t *testing.T) {
	report := readCountries(t)
	report.Source = "countries.csv"

	text := report.String()
	assert.Contains(t, text, "Rows:    6")
	assert.Contains(t, text, "=== Mean GDP by Country ===")
	assert.Contains(t, text, "800,000.00")

	snaps.MatchSnapshot(t, text)
}
