package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dida/agent"
	"dida/config"
	"dida/database"
	"dida/dataset"
	"dida/export"
	"dida/llm"
	"dida/logger"
	"dida/mlprep"
	"dida/sandbox"
)

// App is the application facade. It owns the shared services (config,
// logging, key store, session store, sandbox executor) and exposes the
// session-scoped operations the transport layer calls.
type App struct {
	cfg     config.Config
	log     *logger.Logger
	keys    *llm.KeyStore
	factory *llm.Factory
	store   *database.Store
	exec    *sandbox.Executor
	mysql   *database.MySQLImporter

	mu       sync.RWMutex
	datasets map[string]*dataset.Table
}

// NewApp wires the application together from loaded configuration.
func NewApp(cfg config.Config, log *logger.Logger) *App {
	keys := llm.NewKeyStore(cfg.APIKey, log.Log)
	return &App{
		cfg:      cfg,
		log:      log,
		keys:     keys,
		factory:  llm.NewFactory(cfg, keys, log.Log),
		store:    database.NewStore(cfg.DataCacheDir, log.Log),
		exec:     sandbox.NewExecutor(time.Duration(cfg.SandboxTimeoutSec)*time.Second, log.Log),
		mysql:    database.NewMySQLImporter(log.Log),
		datasets: make(map[string]*dataset.Table),
	}
}

// table returns the session's working dataset, loading it from the store
// when the in-memory cache misses (e.g. after a restart).
func (a *App) table(sessionID string) (*dataset.Table, error) {
	a.mu.RLock()
	t, ok := a.datasets[sessionID]
	a.mu.RUnlock()
	if ok {
		return t, nil
	}
	if !a.store.HasSession(sessionID) {
		return nil, fmt.Errorf("no dataset loaded for session %s", sessionID)
	}
	t, err := a.store.LoadCurrent(sessionID)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.datasets[sessionID] = t
	a.mu.Unlock()
	return t, nil
}

// adopt replaces the session's working dataset in memory and on disk.
func (a *App) adopt(sessionID string, t *dataset.Table) error {
	a.mu.Lock()
	a.datasets[sessionID] = t
	a.mu.Unlock()
	return a.store.SaveCurrent(sessionID, t)
}

// newSession registers a freshly ingested dataset under a new session ID.
func (a *App) newSession(t *dataset.Table) (string, error) {
	sessionID := uuid.New().String()
	if err := a.adopt(sessionID, t); err != nil {
		return "", err
	}
	a.log.Logf("[APP] Created session %s: %d rows, %d columns", sessionID, t.NumRows(), t.NumCols())
	return sessionID, nil
}

// UploadResult describes a freshly created session.
type UploadResult struct {
	SessionID string                   `json:"session_id"`
	Info      dataset.BasicInfo        `json:"info"`
	Preview   []map[string]interface{} `json:"preview"`
}

func (a *App) uploadResult(sessionID string, t *dataset.Table) *UploadResult {
	return &UploadResult{
		SessionID: sessionID,
		Info:      t.Info(),
		Preview:   t.Preview(a.cfg.MaxPreviewRows),
	}
}

// UploadCSV ingests a CSV or TSV file and opens a session for it.
func (a *App) UploadCSV(path string) (*UploadResult, error) {
	t, err := dataset.LoadFile(path)
	if err != nil {
		return nil, err
	}
	sessionID, err := a.newSession(t)
	if err != nil {
		return nil, err
	}
	return a.uploadResult(sessionID, t), nil
}

// PasteData ingests pasted delimited text and opens a session for it.
func (a *App) PasteData(data string, delimiter rune, hasHeader bool) (*UploadResult, error) {
	t, err := dataset.ParsePasted(data, delimiter, hasHeader)
	if err != nil {
		return nil, err
	}
	sessionID, err := a.newSession(t)
	if err != nil {
		return nil, err
	}
	return a.uploadResult(sessionID, t), nil
}

// ImportMySQL pulls one table from a MySQL server and opens a session.
func (a *App) ImportMySQL(cfg database.MySQLConfig, tableName string) (*UploadResult, error) {
	t, err := a.mysql.ImportTable(cfg, tableName)
	if err != nil {
		return nil, err
	}
	sessionID, err := a.newSession(t)
	if err != nil {
		return nil, err
	}
	return a.uploadResult(sessionID, t), nil
}

// ListMySQLTables lists the tables available for import.
func (a *App) ListMySQLTables(cfg database.MySQLConfig) ([]string, error) {
	return a.mysql.ListTables(cfg)
}

// Preview returns the sanitized head of the session's dataset.
func (a *App) Preview(sessionID string) ([]map[string]interface{}, error) {
	t, err := a.table(sessionID)
	if err != nil {
		return nil, err
	}
	return t.Preview(a.cfg.MaxPreviewRows), nil
}

// DeleteSession drops a session's dataset from memory and disk.
func (a *App) DeleteSession(sessionID string) error {
	a.mu.Lock()
	delete(a.datasets, sessionID)
	a.mu.Unlock()
	a.keys.RemoveSessionKey(sessionID)
	return a.store.DeleteSession(sessionID)
}

// SetSessionKey registers a per-session API key overriding the system key.
func (a *App) SetSessionKey(sessionID, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return &agent.ConfigurationError{Field: "api_key", Reason: "key must not be empty"}
	}
	a.keys.SetSessionKey(sessionID, apiKey)
	return nil
}

// RemoveSessionKey drops a session's key, falling back to the system key.
func (a *App) RemoveSessionKey(sessionID string) {
	a.keys.RemoveSessionKey(sessionID)
}

// ValidateKey checks an API key with a minimal completion round trip.
// The bool reports usability; the string carries the failure class.
func (a *App) ValidateKey(ctx context.Context, apiKey string) (bool, string) {
	return a.factory.ValidateKey(ctx, apiKey)
}

// AnalyzeSchema profiles the session dataset and returns the merged
// statistical and semantic schema report.
func (a *App) AnalyzeSchema(ctx context.Context, sessionID string) (*agent.SchemaReport, error) {
	t, err := a.table(sessionID)
	if err != nil {
		return nil, err
	}
	client, err := a.factory.ClientFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return agent.NewSchemaAnalyzer(client, a.log.Log).Analyze(ctx, t)
}

// Chat answers one conversational question about the session dataset.
// The dataset is never modified by chat.
func (a *App) Chat(ctx context.Context, sessionID, message string, history []agent.ChatMessage) (*agent.ChatResult, error) {
	t, err := a.table(sessionID)
	if err != nil {
		return nil, err
	}
	client, err := a.factory.ClientFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return agent.NewChatAgent(client, a.exec, a.log.Log).Ask(ctx, t, message, history)
}

// Clean runs a generated cleaning pass. The session dataset is replaced
// only when execution succeeds.
func (a *App) Clean(ctx context.Context, sessionID string) (*agent.CleaningResult, error) {
	t, err := a.table(sessionID)
	if err != nil {
		return nil, err
	}
	client, err := a.factory.ClientFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cleaned, result, err := agent.NewCleaningAgent(client, a.exec, a.log.Log).Clean(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := a.adopt(sessionID, cleaned); err != nil {
		return nil, err
	}
	return result, nil
}

// EngineerFeatures runs a generated feature-engineering pass, replacing
// the session dataset on success.
func (a *App) EngineerFeatures(ctx context.Context, sessionID, instructions string) (*agent.FeatureResult, error) {
	t, err := a.table(sessionID)
	if err != nil {
		return nil, err
	}
	client, err := a.factory.ClientFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	engineered, result, err := agent.NewFeatureAgent(client, a.exec, a.log.Log).Engineer(ctx, t, instructions)
	if err != nil {
		return nil, err
	}
	if err := a.adopt(sessionID, engineered); err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateReport composes a structured analysis report for the session
// dataset. The report content is returned; rendering is separate.
func (a *App) GenerateReport(ctx context.Context, sessionID string) (*agent.ReportContent, error) {
	t, err := a.table(sessionID)
	if err != nil {
		return nil, err
	}
	client, err := a.factory.ClientFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return agent.NewReportingAgent(client, a.log.Log).Compose(ctx, t)
}

// ExportReportPDF composes a report and renders it to PDF bytes,
// executing each section's plot code against the session dataset.
func (a *App) ExportReportPDF(ctx context.Context, sessionID string) ([]byte, error) {
	content, err := a.GenerateReport(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	t, err := a.table(sessionID)
	if err != nil {
		return nil, err
	}
	return export.NewPDFRenderer(a.exec, a.log.Log).Render(ctx, content, t)
}

// PrepareForML runs the deterministic preparation pipeline with advisory
// recommendations, persists the four split artifacts, and returns the
// run summary. The working dataset itself is left untouched.
func (a *App) PrepareForML(ctx context.Context, sessionID string, opts agent.MLPrepOptions) (*agent.MLPrepReport, error) {
	t, err := a.table(sessionID)
	if err != nil {
		return nil, err
	}
	client, err := a.factory.ClientFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	outcome, report, err := agent.NewMLPrepAgent(client, a.log.Log).Prepare(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	if err := a.store.SaveSplit(sessionID, outcome); err != nil {
		return nil, fmt.Errorf("failed to persist split artifacts: %w", err)
	}
	return report, nil
}

// LoadSplit reloads the persisted split artifacts of a session.
func (a *App) LoadSplit(sessionID string) (xTrain, xTest *dataset.Table, yTrain, yTest *dataset.Series, err error) {
	return a.store.LoadSplit(sessionID)
}

// DetectProblemType exposes the fixed problem-type policy for a column
// without running the full pipeline.
func (a *App) DetectProblemType(sessionID, targetColumn string) (string, error) {
	t, err := a.table(sessionID)
	if err != nil {
		return "", err
	}
	col, ok := t.Column(targetColumn)
	if !ok {
		return "", &agent.ConfigurationError{
			Field:  "target_column",
			Reason: fmt.Sprintf("column %q does not exist in the dataset", targetColumn),
		}
	}
	return string(mlprep.DetectProblemType(col)), nil
}
