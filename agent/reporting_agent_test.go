package agent

import (
	"context"
	"testing"

	"dida/llm"
)

func TestReportingCompose(t *testing.T) {
	reply := "```json\n" + `{
  "title": "Sales Overview",
  "summary": "Sales are concentrated in the north region.",
  "insights": ["north leads", "south lags"],
  "sections": [
    {"title": "Regional totals", "content": "North dominates.", "plot_code": "plot.Bar([]string{\"n\"}, []float64{1})"},
    {"title": "Data quality", "content": "No missing values.", "plot_code": ""}
  ]
}` + "\n```"
	client := llm.CompleteFunc(func(ctx context.Context, system, user string) (string, error) {
		return reply, nil
	})

	content, err := NewReportingAgent(client, nil).Compose(context.Background(), salesTable(t))
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if content.Title != "Sales Overview" || len(content.Sections) != 2 {
		t.Fatalf("unexpected report: %+v", content)
	}
	if content.Sections[0].PlotCode == "" {
		t.Fatal("plot code lost in parsing")
	}
	if content.Sections[1].PlotCode != "" {
		t.Fatal("empty plot code should stay empty")
	}
}
