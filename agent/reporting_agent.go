package agent

import (
	"context"
	"fmt"

	"dida/dataset"
	"dida/llm"
)

const reportingSystemPrompt = `You are a data analysis report writer. You receive a dataset summary and produce a structured analysis report with narrative sections. Each section may include plot code that visualizes its finding.

%s

Plot code, when present, draws on the plot canvas and assigns nothing to result.

Respond with ONLY a JSON object:
{
  "title": "report title",
  "summary": "executive summary paragraph",
  "insights": ["key insight bullets"],
  "sections": [
    {"title": "section title", "content": "section narrative", "plot_code": "sandbox plotting code or empty string"}
  ]
}
Write 3-5 sections covering distributions, relationships, and data quality.`

// ReportingAgent produces a structured analysis report. It only writes the
// report content; executing each section's plot code is the renderer's job.
type ReportingAgent struct {
	Base
}

// NewReportingAgent builds a reporting agent bound to one session's client.
func NewReportingAgent(client llm.Client, logFunc func(string)) *ReportingAgent {
	return &ReportingAgent{Base{Name: "REPORT", Client: client, Log: logFunc}}
}

// Compose asks the model for a full report over the dataset.
func (a *ReportingAgent) Compose(ctx context.Context, table *dataset.Table) (*ReportContent, error) {
	system := fmt.Sprintf(reportingSystemPrompt, sandboxRules)
	user := fmt.Sprintf("%s\n\n%s", datasetContext(table), table.DescribeString())

	var content ReportContent
	if err := a.completeJSON(ctx, system, user, &content); err != nil {
		return nil, err
	}
	a.log("Composed report %q with %d sections", content.Title, len(content.Sections))
	return &content, nil
}
