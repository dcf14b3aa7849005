package agent

import (
	"fmt"
	"strings"

	"dida/dataset"
)

// sandboxRules describes the execution environment to the model. Generated
// code runs inside a function body with `df` bound to the dataset and
// `plot` bound to a chart canvas, so the rules spell out exactly what is
// in scope and how results are handed back.
const sandboxRules = `The code you write runs inside a sandboxed Go function body with these bindings already in scope:

- df (*dataset.Table): the current dataset. Methods: NumRows(), NumCols(), ColumnNames(), Column(name) (*dataset.Series, bool), HasColumn(name), AddColumn(series), DropColumn(name), SelectRows(indices), Head(n), Row(i), Filter(func(row map[string]interface{}) bool), AddComputed(name, func(row map[string]interface{}) interface{}), DropDuplicates(), DropNullRows(cols...), FillNulls(name, value), RenameColumn(old, new).
- dataset.Series has: Len(), Value(i), Values (slice of interface{}), NullCount(), UniqueCount(), Mean(), Std(), Min(), Max(), Median(), Sum(), ValueCounts(), Floats(). Cells are float64, string, bool, time.Time, or nil for missing.
- dataset.NewSeries(name, values) constructs a column.
- result (interface{}): assign your final answer to this variable. It may be a scalar, a *dataset.Series, or a *dataset.Table.
- plot (*chart.Canvas): for visualizations. Methods: Title(s), Labels(x, y), Bar(labels []string, values []float64), Line(values []float64), LineXY(xs, ys []float64), Scatter(xs, ys []float64), Hist(values []float64, bins int).
- To transform the dataset itself, reassign df (e.g. df = df.DropDuplicates()) or mutate it with its methods.

Rules:
1. Write only the function body. NO import statements, NO package clause, NO function declarations, NO goroutines.
2. Allowed standard library packages (already imported): fmt, math, sort, strconv, strings, time.
3. Never touch the filesystem, network, or environment.
4. Assign the value to return to the variable named result.`

// historyLimit caps how many prior conversation turns are replayed into
// the prompt.
const historyLimit = 5

// datasetContext renders the dataset summary block shared by every
// code-generating prompt.
func datasetContext(table *dataset.Table) string {
	return fmt.Sprintf("Current dataset:\n%s", table.SummaryString(5))
}

// renderHistory formats the most recent conversation turns for the prompt.
func renderHistory(history []ChatMessage) string {
	if len(history) == 0 {
		return ""
	}
	start := 0
	if len(history) > historyLimit {
		start = len(history) - historyLimit
	}
	var b strings.Builder
	b.WriteString("Recent conversation:\n")
	for _, msg := range history[start:] {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return b.String()
}
