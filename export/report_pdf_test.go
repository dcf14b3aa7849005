package export

import (
	"context"
	"strings"
	"testing"
	"time"

	"dida/agent"
	"dida/dataset"
	"dida/sandbox"
)

func TestRenderProducesPDF(t *testing.T) {
	table, err := dataset.FromColumns([]*dataset.Series{
		dataset.NewSeries("region", []interface{}{"north", "south"}),
		dataset.NewSeries("sales", []interface{}{100.0, 200.0}),
	})
	if err != nil {
		t.Fatalf("FromColumns failed: %v", err)
	}

	content := &agent.ReportContent{
		Title:    "Sales Report",
		Summary:  "Two regions, south ahead.",
		Insights: []string{"south leads"},
		Sections: []agent.ReportSection{
			{Title: "Totals", Content: "South outsells north.",
				PlotCode: "plot.Bar([]string{\"north\", \"south\"}, []float64{100, 200})"},
			{Title: "Notes", Content: "No missing values."},
			// A failing plot must not fail the document.
			{Title: "Broken", Content: "Figure omitted.", PlotCode: "os.Exit(1)"},
		},
	}

	renderer := NewPDFRenderer(sandbox.NewExecutor(10*time.Second, nil), nil)
	pdf, err := renderer.Render(context.Background(), content, table)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Fatal("output is not a PDF document")
	}
}
