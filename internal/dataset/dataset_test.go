package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/lacquerai/rankview/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mbtiCSV = `Country,INTJ,ENFP,ISTJ
Korea,2.1,8.5,12.0
Japan,3.4,,9.1
Brazil,n/a,11.2,7.7
`

func TestParseScore(t *testing.T) {
	tests := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{"12.5", 12.5, true},
		{" 7 ", 7, true},
		{"3.25%", 3.25, true},
		{"-1", -1, true},
		{"0", 0, true},
		{"", 0, false},
		{"   ", 0, false},
		{"NA", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"n/a", 0, false},
		{"abc", 0, false},
		{"1,234", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseScore(tt.raw)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	table, err := Load(strings.NewReader(mbtiCSV), "mbti.csv")
	require.NoError(t, err)

	assert.Equal(t, "mbti.csv", table.Source)
	assert.Equal(t, 3, table.Nrow())
	assert.Equal(t, 4, table.Ncol())
	assert.Equal(t, []string{"Country", "INTJ", "ENFP", "ISTJ"}, table.Names())
	assert.Equal(t, []string{"INTJ", "ENFP", "ISTJ"}, table.Metrics())

	scores, err := table.Scores("INTJ")
	require.NoError(t, err)
	assert.Equal(t, []Score{{2.1, true}, {3.4, true}, {0, false}}, scores)

	scores, err = table.Scores("ENFP")
	require.NoError(t, err)
	assert.False(t, scores[1].Valid)
	assert.Equal(t, 2, ValidCount(scores))
}

func TestLoadKeepsAllMissingColumn(t *testing.T) {
	table, err := Load(strings.NewReader("Country,INFJ\nA,x\nB,\n"), "blank.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"INFJ"}, table.Metrics())
	scores, err := table.Scores("INFJ")
	require.NoError(t, err)
	assert.Equal(t, 0, ValidCount(scores))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"header only", "Country,INTJ\n"},
		{"ragged rows", "Country,INTJ\nA,1,2,3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input), "bad.csv")
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, KindLoad, loadErr.Kind())
			assert.Contains(t, err.Error(), "bad.csv")
		})
	}
}

func TestLoadStripsByteOrderMark(t *testing.T) {
	table, err := Load(strings.NewReader("\ufeffCountry,INTJ\nA,1\n"), "excel.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"Country", "INTJ"}, table.Names())
	present, err := ValidateSchema(table, "Country", Vocabulary)
	require.NoError(t, err)
	assert.Equal(t, []string{"INTJ"}, present)
}

func TestLoadDuplicateHeader(t *testing.T) {
	_, err := Load(strings.NewReader("Country,INTJ,INTJ\nA,1,2\n"), "dup.csv")
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), `duplicate column "INTJ"`)
	assert.Contains(t, err.Error(), "dup.csv")
}

func TestSuggestColumnByteOrderMark(t *testing.T) {
	hint := suggestColumn([]string{"\ufeffcountry", "INTJ"}, []string{"Country"})
	assert.Contains(t, hint, `to "Country"`)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mbti.csv")
	require.NoError(t, os.WriteFile(path, []byte(mbtiCSV), 0644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mbti.csv", table.Source)

	_, err = LoadFile(filepath.Join(dir, "missing.csv"))
	var loadErr *LoadError
	assert.True(t, errors.As(err, &loadErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestScoresOnDemand(t *testing.T) {
	table, err := Load(strings.NewReader("Country,Population,INTJ\nA,100,1\nB,oops,2\n"), "mixed.csv")
	require.NoError(t, err)

	scores, err := table.Scores("Population")
	require.NoError(t, err)
	assert.Equal(t, []Score{{100, true}, {0, false}}, scores)

	_, err = table.Scores("GDP")
	var schemaErr *SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestPreview(t *testing.T) {
	table, err := Load(strings.NewReader(mbtiCSV), "mbti.csv")
	require.NoError(t, err)

	preview := table.Preview(2)
	require.Len(t, preview, 3)
	assert.Equal(t, []string{"Country", "INTJ", "ENFP", "ISTJ"}, preview[0])
	assert.Equal(t, "Korea", preview[1][0])

	assert.Len(t, table.Preview(100), 4)
}

func TestValidateSchema(t *testing.T) {
	table, err := Load(strings.NewReader(mbtiCSV), "mbti.csv")
	require.NoError(t, err)

	present, err := ValidateSchema(table, "Country", Vocabulary)
	require.NoError(t, err)
	assert.Equal(t, []string{"INTJ", "ENFP", "ISTJ"}, present)

	present, err = ValidateSchema(table, "", []string{"ISTJ", "ESFP"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ISTJ"}, present)
}

func TestValidateSchemaMissingIdentifier(t *testing.T) {
	table, err := Load(strings.NewReader("country,INTJ\nA,1\n"), "lower.csv")
	require.NoError(t, err)

	_, err = ValidateSchema(table, "Country", Vocabulary)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, KindSchema, schemaErr.Kind())
	assert.Contains(t, schemaErr.Message, `"Country"`)
	assert.Contains(t, schemaErr.Suggestion, `rename "country" to "Country"`)
}

func TestValidateSchemaNoMetrics(t *testing.T) {
	table, err := Load(strings.NewReader("Country,Year,intj\nA,2001,4\n"), "none.csv")
	require.NoError(t, err)

	assert.Empty(t, table.Metrics())

	_, err = ValidateSchema(table, "Country", Vocabulary)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, schemaErr.Message, "no recognized metric columns")
	assert.Equal(t, []string{"Country", "Year", "intj"}, schemaErr.Columns)
	assert.Contains(t, schemaErr.Suggestion, "INTJ")
}

func TestIsMetric(t *testing.T) {
	assert.Len(t, Vocabulary, 16)
	for _, name := range Vocabulary {
		assert.True(t, IsMetric(name))
	}
	assert.False(t, IsMetric("intj"))
	assert.False(t, IsMetric("Country"))
}
