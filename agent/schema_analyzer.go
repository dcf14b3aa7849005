package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dida/dataset"
	"dida/llm"
)

const schemaSystemPrompt = `You are a data schema analyst. You receive computed per-column statistics for a tabular dataset and respond with semantic interpretation.

Respond with ONLY a JSON object in this exact shape:
{
  "column_insights": [
    {"column": "name", "meaning": "what this column represents", "issues": ["data quality issues"], "suggested_action": "what to do about them"}
  ],
  "suggested_target": "the most plausible ML target column, or null",
  "domain_insights": ["observations about the dataset's domain"],
  "warnings": ["dataset-level quality warnings"],
  "questions": ["clarifying questions for the user"],
  "quality_score": 0.0
}
quality_score is 0-100. Include an entry in column_insights for every column.`

// SchemaAnalyzer profiles a dataset column by column and asks the model
// for a semantic interpretation of the computed statistics.
type SchemaAnalyzer struct {
	Base
}

// NewSchemaAnalyzer builds a schema analyzer bound to one session's client.
func NewSchemaAnalyzer(client llm.Client, logFunc func(string)) *SchemaAnalyzer {
	return &SchemaAnalyzer{Base{Name: "SCHEMA", Client: client, Log: logFunc}}
}

// profileColumn computes the deterministic statistics for one column.
// Primary-key detection requires every value distinct and none missing.
func profileColumn(table *dataset.Table, name string) ColumnReport {
	col, _ := table.Column(name)
	rows := table.NumRows()

	report := ColumnReport{
		Name:        name,
		DataType:    string(col.InferType()),
		NullCount:   col.NullCount(),
		UniqueCount: col.UniqueCount(),
	}
	if rows > 0 {
		report.NullPercentage = float64(report.NullCount) / float64(rows) * 100
	}
	report.IsPrimaryKey = rows > 0 && report.NullCount == 0 && report.UniqueCount == rows

	nonNull := col.NonNull()
	limit := 5
	if len(nonNull) < limit {
		limit = len(nonNull)
	}
	report.SampleValues = make([]interface{}, limit)
	for i := 0; i < limit; i++ {
		report.SampleValues[i] = dataset.SanitizeCell(nonNull[i])
	}
	return report
}

// schemaInsights is the model's half of the schema report.
type schemaInsights struct {
	ColumnInsights []struct {
		Column          string   `json:"column"`
		Meaning         string   `json:"meaning"`
		Issues          []string `json:"issues"`
		SuggestedAction string   `json:"suggested_action"`
	} `json:"column_insights"`
	SuggestedTarget string   `json:"suggested_target"`
	DomainInsights  []string `json:"domain_insights"`
	Warnings        []string `json:"warnings"`
	Questions       []string `json:"questions"`
	QualityScore    float64  `json:"quality_score"`
}

// Analyze computes per-column statistics, asks the model to interpret
// them, and merges both halves into one report. The statistics are
// authoritative; the model contributes meaning, issues, and scoring.
func (a *SchemaAnalyzer) Analyze(ctx context.Context, table *dataset.Table) (*SchemaReport, error) {
	report := &SchemaReport{RowCount: table.NumRows()}
	for _, name := range table.ColumnNames() {
		report.Columns = append(report.Columns, profileColumn(table, name))
	}
	a.log("Profiled %d columns over %d rows", len(report.Columns), report.RowCount)

	statsJSON, err := json.MarshalIndent(report.Columns, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode column statistics: %w", err)
	}
	user := fmt.Sprintf("Dataset: %d rows, %d columns.\n\nColumn statistics:\n%s",
		table.NumRows(), table.NumCols(), statsJSON)

	var insights schemaInsights
	if err := a.completeJSON(ctx, schemaSystemPrompt, user, &insights); err != nil {
		return nil, err
	}

	byColumn := make(map[string]int, len(report.Columns))
	for i, c := range report.Columns {
		byColumn[c.Name] = i
	}
	for _, ci := range insights.ColumnInsights {
		idx, ok := byColumn[ci.Column]
		if !ok {
			a.log("Model referenced unknown column %q, skipping", ci.Column)
			continue
		}
		report.Columns[idx].Meaning = ci.Meaning
		report.Columns[idx].Issues = ci.Issues
		report.Columns[idx].SuggestedAction = ci.SuggestedAction
	}

	report.SuggestedTarget = strings.TrimSpace(insights.SuggestedTarget)
	if strings.EqualFold(report.SuggestedTarget, "null") {
		report.SuggestedTarget = ""
	}
	report.DomainInsights = insights.DomainInsights
	report.Warnings = insights.Warnings
	report.Questions = insights.Questions
	report.QualityScore = insights.QualityScore

	a.log("Analysis complete, quality score %.1f", report.QualityScore)
	return report, nil
}
