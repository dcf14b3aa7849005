package agent

import "dida/sandbox"

// ChatMessage is one turn of prior conversation supplied by the caller.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ColumnReport is the per-column portion of a schema analysis, combining
// computed statistics with the model's semantic read of the column.
type ColumnReport struct {
	Name            string        `json:"name"`
	DataType        string        `json:"data_type"`
	NullCount       int           `json:"null_count"`
	NullPercentage  float64       `json:"null_percentage"`
	UniqueCount     int           `json:"unique_count"`
	SampleValues    []interface{} `json:"sample_values"`
	IsPrimaryKey    bool          `json:"is_primary_key"`
	Meaning         string        `json:"meaning,omitempty"`
	Issues          []string      `json:"issues,omitempty"`
	SuggestedAction string        `json:"suggested_action,omitempty"`
}

// SchemaReport is the full result of schema analysis.
type SchemaReport struct {
	Columns         []ColumnReport `json:"columns"`
	RowCount        int            `json:"row_count"`
	SuggestedTarget string         `json:"suggested_target,omitempty"`
	DomainInsights  []string       `json:"domain_insights,omitempty"`
	Warnings        []string       `json:"warnings,omitempty"`
	Questions       []string       `json:"questions,omitempty"`
	QualityScore    float64        `json:"quality_score"`
}

// ChatResult is the answer to one conversational analysis turn.
type ChatResult struct {
	Response   string                    `json:"response"`
	Code       string                    `json:"code,omitempty"`
	Data       *sandbox.NormalizedResult `json:"data,omitempty"`
	ChartImage []byte                    `json:"chart_image,omitempty"`
}

// CleaningResult reports an applied cleaning pass. Preview holds the
// sanitized head of the cleaned dataset.
type CleaningResult struct {
	Steps   []string                 `json:"steps"`
	Code    string                   `json:"code"`
	Summary string                   `json:"summary"`
	Preview []map[string]interface{} `json:"preview"`
}

// FeatureResult reports an applied feature-engineering pass.
type FeatureResult struct {
	NewFeatures []string                 `json:"new_features"`
	Code        string                   `json:"code"`
	Summary     string                   `json:"summary"`
	Preview     []map[string]interface{} `json:"preview"`
}

// ReportSection is one narrative section of a generated report. PlotCode,
// when present, is sandbox code that renders the section's figure.
type ReportSection struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	PlotCode string `json:"plot_code,omitempty"`
}

// ReportContent is the structured report produced by the reporting agent.
type ReportContent struct {
	Title    string          `json:"title"`
	Summary  string          `json:"summary"`
	Insights []string        `json:"insights"`
	Sections []ReportSection `json:"sections"`
}
