// Package export renders generated analysis reports to PDF.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"dida/agent"
	"dida/dataset"
	"dida/sandbox"
)

// PDFRenderer lays a composed report out as a PDF. Section plot code is
// executed through the sandbox against the session dataset; a section
// whose plot fails is rendered without its figure rather than failing
// the document.
type PDFRenderer struct {
	exec    *sandbox.Executor
	logFunc func(string)
}

// NewPDFRenderer builds a renderer sharing the application's executor.
func NewPDFRenderer(exec *sandbox.Executor, logFunc func(string)) *PDFRenderer {
	return &PDFRenderer{exec: exec, logFunc: logFunc}
}

func (r *PDFRenderer) log(msg string) {
	if r.logFunc != nil {
		r.logFunc("[PDF] " + msg)
	}
}

// Render produces the PDF bytes for a report over the given dataset.
func (r *PDFRenderer) Render(ctx context.Context, content *agent.ReportContent, table *dataset.Table) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	r.addTitle(m, content.Title)
	r.addSummary(m, content.Summary)
	if len(content.Insights) > 0 {
		r.addInsights(m, content.Insights)
	}
	for _, section := range content.Sections {
		r.addSection(ctx, m, section, table)
	}

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	r.log(fmt.Sprintf("Rendered report %q (%d sections)", content.Title, len(content.Sections)))
	return document.GetBytes(), nil
}

func (r *PDFRenderer) addTitle(m core.Maroto, title string) {
	m.AddRow(20,
		col.New(12).Add(
			text.New(title, props.Text{
				Size:  18,
				Style: fontstyle.Bold,
				Align: align.Center,
			}),
		),
	)
	m.AddRow(8,
		col.New(12).Add(
			text.New(fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04")), props.Text{
				Size:  8,
				Align: align.Center,
			}),
		),
	)
	m.AddRow(5)
}

func (r *PDFRenderer) addSummary(m core.Maroto, summary string) {
	m.AddRow(8,
		col.New(12).Add(
			text.New("Summary", props.Text{Size: 13, Style: fontstyle.Bold}),
		),
	)
	m.AddRow(textRowHeight(summary),
		col.New(12).Add(
			text.New(summary, props.Text{Size: 10}),
		),
	)
	m.AddRow(5)
}

func (r *PDFRenderer) addInsights(m core.Maroto, insights []string) {
	m.AddRow(8,
		col.New(12).Add(
			text.New("Key Insights", props.Text{Size: 13, Style: fontstyle.Bold}),
		),
	)
	for i, insight := range insights {
		m.AddRow(textRowHeight(insight),
			col.New(12).Add(
				text.New(fmt.Sprintf("%d. %s", i+1, insight), props.Text{Size: 10}),
			),
		)
	}
	m.AddRow(5)
}

func (r *PDFRenderer) addSection(ctx context.Context, m core.Maroto, section agent.ReportSection, table *dataset.Table) {
	m.AddRow(8,
		col.New(12).Add(
			text.New(section.Title, props.Text{Size: 13, Style: fontstyle.Bold}),
		),
	)
	m.AddRow(textRowHeight(section.Content),
		col.New(12).Add(
			text.New(section.Content, props.Text{Size: 10}),
		),
	)

	if strings.TrimSpace(section.PlotCode) != "" {
		if img := r.renderPlot(ctx, section, table); img != nil {
			m.AddRow(80,
				col.New(12).Add(
					image.NewFromBytes(img, extension.Png),
				),
			)
		}
	}
	m.AddRow(5)
}

// renderPlot executes a section's plot code and returns the PNG, or nil
// when execution fails or draws nothing.
func (r *PDFRenderer) renderPlot(ctx context.Context, section agent.ReportSection, table *dataset.Table) []byte {
	execResult := r.exec.Run(ctx, section.PlotCode, table)
	if !execResult.Success {
		r.log(fmt.Sprintf("Plot for section %q failed: %s", section.Title, execResult.Error))
		return nil
	}
	if len(execResult.Image) == 0 {
		r.log(fmt.Sprintf("Plot code for section %q drew nothing", section.Title))
		return nil
	}
	return execResult.Image
}

// textRowHeight sizes a text row for its content, roughly one line of
// height per 90 characters.
func textRowHeight(s string) float64 {
	lines := len(s)/90 + 1
	return float64(lines) * 5
}
