package schema

import "time"

// DatasetSummary describes the table currently held by the dashboard.
type DatasetSummary struct {
	// Source is the file name the table was uploaded as.
	Source string `json:"source"`
	// Rows is the number of data rows.
	Rows int `json:"rows"`
	// Columns lists every header of the table in file order.
	Columns []string `json:"columns"`
	// Metrics lists the recognized metric columns present in the table.
	Metrics []string `json:"metrics"`
	// Preview holds the header and the first data rows as raw text.
	Preview [][]string `json:"preview,omitempty"`
	// Cached reports whether the upload matched the table already held.
	Cached bool `json:"cached"`
}

// RankedRow is one bar of a ranking.
type RankedRow struct {
	// Rank is the 1-based position, largest value first.
	Rank int `json:"rank"`
	// Identifier is the value of the identifier column, e.g. a country name.
	Identifier string `json:"identifier"`
	// Score is the metric value.
	Score float64 `json:"score"`
	// Color is the hex fill of the bar; darker means a larger value.
	Color string `json:"color"`
	// Tooltip is the hover text shown for the bar.
	Tooltip string `json:"tooltip"`
}

// RankingResponse is the top-N ranking of one metric.
type RankingResponse struct {
	// Source is the table the ranking was computed from.
	Source string `json:"source"`
	// Metric is the ranked column.
	Metric string `json:"metric"`
	// IdentifierColumn is the column labelling each row.
	IdentifierColumn string `json:"identifier_column"`
	// N is the requested number of rows.
	N int `json:"n"`
	// Considered is the number of rows with a numeric value.
	Considered int `json:"considered"`
	// Title is the chart title.
	Title string `json:"title"`
	// AxisMax is the upper end of the value axis.
	AxisMax float64 `json:"axis_max"`
	// Rows holds at most N rows, largest value first.
	Rows []RankedRow `json:"rows"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	// Error is the user-facing message.
	Error string `json:"error"`
	// Kind is one of load, schema or empty_result when the failure comes
	// from the table itself.
	Kind string `json:"kind,omitempty"`
	// Suggestion is a hint for fixing the table.
	Suggestion string `json:"suggestion,omitempty"`
	// Columns lists the headers found in the rejected table.
	Columns []string `json:"columns,omitempty"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
	// Dataset is the source of the cached table, if any.
	Dataset string `json:"dataset,omitempty"`
}
