// Package mcp exposes the document engine over the Model Context Protocol:
// template CRUD, binding resolution, rate matching, the extraction queue
// and PDF rendering, each as one tool.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/inkform/docpress/internal/binding"
	"github.com/inkform/docpress/internal/config"
	"github.com/inkform/docpress/internal/document"
	"github.com/inkform/docpress/internal/export"
	"github.com/inkform/docpress/internal/extract"
	"github.com/inkform/docpress/internal/match"
	"github.com/inkform/docpress/internal/render"
	"github.com/inkform/docpress/internal/store"
)

// Server wires the engine components behind an MCP tool surface.
type Server struct {
	config    *config.Config
	store     *store.Store
	cache     *store.TemplateCache
	renderer  *render.Renderer
	matcher   *match.Matcher
	queue     *extract.Queue
	batcher   *export.Batcher
	log       *zap.Logger
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers every tool.
func NewServer(cfg *config.Config, st *store.Store, log *zap.Logger) (*Server, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		config:   cfg,
		store:    st,
		cache:    store.NewTemplateCache(cfg.DataDir),
		renderer: render.New(log),
		matcher:  match.New(cfg.MatchThreshold, cfg.OvertimeKeywords),
		log:      log,
	}
	s.batcher = export.NewBatcher(s.renderer, log)
	s.queue = extract.NewQueue(extract.NewTextExtractor(), s.currentTemplate, log)
	s.queue.SetSuggester(s.suggestRates)

	s.mcpServer = server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)
	s.registerTools()
	return s, nil
}

// currentTemplate resolves the working template: newest stored, then the
// JSON cache, then the built-in default.
func (s *Server) currentTemplate() *document.Template {
	return store.LoadTemplateOrDefault(s.store, s.cache, s.log)
}

// suggestRates runs on every successfully extracted timesheet: matched
// catalog rates overwrite extracted rates and totals are recomputed.
func (s *Server) suggestRates(rec *document.Record) {
	rates, err := s.store.ListRates()
	if err != nil {
		s.log.Warn("rate catalog unavailable, skipping suggestions", zap.Error(err))
		return
	}
	candidates := s.matcher.FindCandidates(rec.Metadata.ClientRef, rates)
	if applied := s.matcher.Apply(rec, candidates); applied > 0 {
		s.log.Info("applied suggested rates",
			zap.String("clientRef", rec.Metadata.ClientRef),
			zap.Int("lines", applied))
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"template_list",
		mcp.WithDescription("List all stored document templates"),
	), s.handleTemplateList)

	s.mcpServer.AddTool(mcp.NewTool(
		"template_get",
		mcp.WithDescription("Get a stored template as JSON"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Template id"),
		),
	), s.handleTemplateGet)

	s.mcpServer.AddTool(mcp.NewTool(
		"template_save",
		mcp.WithDescription("Create or update a template from its JSON body"),
		mcp.WithString("template",
			mcp.Required(),
			mcp.Description("Template JSON (id optional; one is assigned when absent)"),
		),
	), s.handleTemplateSave)

	s.mcpServer.AddTool(mcp.NewTool(
		"template_delete",
		mcp.WithDescription("Delete a stored template"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Template id"),
		),
	), s.handleTemplateDelete)

	s.mcpServer.AddTool(mcp.NewTool(
		"render_document",
		mcp.WithDescription("Render a document record to a positioned PDF in the output directory"),
		mcp.WithString("record",
			mcp.Required(),
			mcp.Description("Document record JSON"),
		),
		mcp.WithString("template_id",
			mcp.Description("Template to render with (current template if empty)"),
		),
	), s.handleRenderDocument)

	s.mcpServer.AddTool(mcp.NewTool(
		"resolve_binding",
		mcp.WithDescription("Resolve a data-binding path against a document record"),
		mcp.WithString("record",
			mcp.Required(),
			mcp.Description("Document record JSON"),
		),
		mcp.WithString("binding",
			mcp.Description("Binding path, for example metadata.invoiceNumber or amountInWords"),
		),
		mcp.WithString("content",
			mcp.Description("Static fallback content used when the binding is empty"),
		),
	), s.handleResolveBinding)

	s.mcpServer.AddTool(mcp.NewTool(
		"amount_in_words",
		mcp.WithDescription("Spell out a monetary amount in words"),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("Amount to spell out"),
		),
		mcp.WithString("currency",
			mcp.Description("Currency code (default USD)"),
		),
	), s.handleAmountInWords)

	s.mcpServer.AddTool(mcp.NewTool(
		"match_rates",
		mcp.WithDescription("Find rate catalog entries matching a document reference"),
		mcp.WithString("reference",
			mcp.Required(),
			mcp.Description("Client reference to match, for example COMP1-TPIS-ITP-0001"),
		),
	), s.handleMatchRates)

	s.mcpServer.AddTool(mcp.NewTool(
		"import_rates",
		mcp.WithDescription("Import a rate catalog CSV (ITP or generic column layout)"),
		mcp.WithString("csv",
			mcp.Required(),
			mcp.Description("CSV content"),
		),
		mcp.WithString("mode",
			mcp.Description("\"merge\" upserts by reference (default), \"replace\" swaps the whole catalog"),
		),
	), s.handleImportRates)

	s.mcpServer.AddTool(mcp.NewTool(
		"enqueue_document",
		mcp.WithDescription("Queue a scanned PDF for extraction and template merge"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("kind",
			mcp.Description("Document kind: invoice, po or timesheet (default invoice)"),
		),
	), s.handleEnqueueDocument)

	s.mcpServer.AddTool(mcp.NewTool(
		"queue_status",
		mcp.WithDescription("Show every queue item and its processing status"),
	), s.handleQueueStatus)

	s.mcpServer.AddTool(mcp.NewTool(
		"queue_discard",
		mcp.WithDescription("Remove an item from the extraction queue"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Queue item id"),
		),
	), s.handleQueueDiscard)

	s.mcpServer.AddTool(mcp.NewTool(
		"export_batch",
		mcp.WithDescription("Render every successfully processed document of a kind into a ZIP of PDFs"),
		mcp.WithString("kind",
			mcp.Description("Document kind to export (default invoice)"),
		),
	), s.handleExportBatch)

	s.mcpServer.AddTool(mcp.NewTool(
		"export_csv",
		mcp.WithDescription("Export successfully processed documents of a kind as a line-item CSV"),
		mcp.WithString("kind",
			mcp.Description("Document kind to export (default invoice)"),
		),
	), s.handleExportCSV)

	s.mcpServer.AddTool(mcp.NewTool(
		"server_info",
		mcp.WithDescription("Get server information, configuration and queue counts"),
	), s.handleServerInfo)
}

// Handler functions

func (s *Server) handleTemplateList(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := s.store.ListTemplates()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(templates) == 0 {
		return mcp.NewToolResultText("No templates stored. The built-in default template is in use."), nil
	}

	text := fmt.Sprintf("Found %d template(s):\n", len(templates))
	for i, t := range templates {
		text += fmt.Sprintf("%d. %s\n   ID: %s\n   Elements: %d\n", i+1, t.Name, t.ID, len(t.Elements))
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleTemplateGet(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tmpl, err := s.store.GetTemplate(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := json.MarshalIndent(tmpl, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *Server) handleTemplateSave(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := request.RequireString("template")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var tmpl document.Template
	if err := json.Unmarshal([]byte(body), &tmpl); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid template JSON: %v", err)), nil
	}
	saved, err := s.store.SaveTemplate(&tmpl)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// Keep the degraded-mode cache in step with the store.
	if err := s.cache.Save(saved); err != nil {
		s.log.Warn("template cache write failed", zap.Error(err))
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved template %q with id %s", saved.Name, saved.ID)), nil
}

func (s *Server) handleTemplateDelete(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.DeleteTemplate(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted template %s", id)), nil
}

func (s *Server) handleRenderDocument(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := request.RequireString("record")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var rec document.Record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid record JSON: %v", err)), nil
	}
	rec.Recalc()

	tmpl := s.currentTemplate()
	if id, ok := request.GetArguments()["template_id"].(string); ok && id != "" {
		tmpl, err = s.store.GetTemplate(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	path, err := s.renderer.RenderToFile(tmpl, &rec, s.config.OutputDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Rendered PDF: %s\n", path)
	text += fmt.Sprintf("Template: %s\n", tmpl.Name)
	text += fmt.Sprintf("Grand Total: %s %s\n", binding.FormatAmount(rec.GrandTotal), rec.Currency)
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleResolveBinding(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := request.RequireString("record")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var rec document.Record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid record JSON: %v", err)), nil
	}

	args := request.GetArguments()
	bindingPath, _ := args["binding"].(string)
	content, _ := args["content"].(string)

	return mcp.NewToolResultText(binding.Resolve(&rec, bindingPath, content)), nil
}

func (s *Server) handleAmountInWords(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	amount, ok := args["amount"].(float64)
	if !ok {
		return mcp.NewToolResultError("amount is required and must be a number"), nil
	}
	currency, _ := args["currency"].(string)
	if currency == "" {
		currency = "USD"
	}
	return mcp.NewToolResultText(binding.NumberToWords(amount, currency)), nil
}

func (s *Server) handleMatchRates(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reference, err := request.RequireString("reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rates, err := s.store.ListRates()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	candidates := s.matcher.FindCandidates(reference, rates)
	if len(candidates) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No rates match reference %q (catalog has %d entries)", reference, len(rates))), nil
	}

	text := fmt.Sprintf("Found %d matching rate(s) for %q:\n", len(candidates), reference)
	for i, r := range candidates {
		text += fmt.Sprintf("%d. %s\n   %s\n   %s %s per %s", i+1, r.ReferenceNo, r.Description,
			binding.FormatAmount(r.Rate), r.Currency, r.Unit)
		if r.OTRate > 0 {
			text += fmt.Sprintf(", OT %s", binding.FormatAmount(r.OTRate))
		}
		text += "\n"
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleImportRates(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	csvBody, err := request.RequireString("csv")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rates, err := store.ImportRatesCSV(strings.NewReader(csvBody))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mode, _ := request.GetArguments()["mode"].(string)
	if mode == "replace" {
		if err := s.store.ReplaceRates(rates); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Replaced rate catalog with %d entries", len(rates))), nil
	}

	n, err := s.store.UpsertRates(rates)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Imported %d rate(s)", n)), nil
}

func (s *Server) handleEnqueueDocument(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	kind := document.KindInvoice
	if k, ok := request.GetArguments()["kind"].(string); ok && k != "" {
		kind = document.DocumentKind(k)
		switch kind {
		case document.KindInvoice, document.KindPO, document.KindTimesheet:
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown document kind %q", k)), nil
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot access file: %v", err)), nil
	}
	if info.Size() > s.config.MaxFileSize {
		return mcp.NewToolResultError(fmt.Sprintf("file exceeds maximum size of %d bytes", s.config.MaxFileSize)), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot read file: %v", err)), nil
	}

	// The queue runs the extraction under its own lifecycle; the tool
	// call returning (and its context dying) must not abort the work.
	item := s.queue.Enqueue(extract.Request{
		FileName: filepath.Base(path),
		Kind:     kind,
		Content:  content,
	})

	text := fmt.Sprintf("Queued %s for extraction\n", item.FileName)
	text += fmt.Sprintf("Item ID: %s\n", item.ID)
	text += fmt.Sprintf("Kind: %s\n", item.Kind)
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleQueueStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items := s.queue.Items()
	if len(items) == 0 {
		return mcp.NewToolResultText("Queue is empty"), nil
	}

	counts := s.queue.Counts()
	text := fmt.Sprintf("Queue: %d item(s) (%d pending, %d processing, %d success, %d error)\n\n",
		len(items),
		counts[extract.StatusPending], counts[extract.StatusProcessing],
		counts[extract.StatusSuccess], counts[extract.StatusError])

	for i, item := range items {
		text += fmt.Sprintf("%d. %s [%s] %s\n", i+1, item.ID, item.Status, item.FileName)
		if item.Status == extract.StatusError && item.Error != "" {
			text += fmt.Sprintf("   Error: %s\n", item.Error)
		}
		if item.Status == extract.StatusSuccess && item.Record != nil {
			text += fmt.Sprintf("   Invoice No: %s, Grand Total: %s %s\n",
				item.Record.Metadata.InvoiceNumber,
				binding.FormatAmount(item.Record.GrandTotal), item.Record.Currency)
		}
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleQueueDiscard(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !s.queue.Discard(id) {
		return mcp.NewToolResultError(fmt.Sprintf("no queue item with id %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Discarded queue item %s", id)), nil
}

func (s *Server) handleExportBatch(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := exportKind(request)
	records := s.successfulRecords(kind)
	if len(records) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no successfully processed %s documents to export", kind)), nil
	}

	files, err := s.batcher.RenderBatch(s.currentTemplate(), records)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path := filepath.Join(s.config.OutputDir, export.BatchFileName(kind, time.Now()))
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer out.Close()
	if err := export.WriteZip(out, files); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Exported %d PDF(s) to %s\n", len(files), path)
	for i, f := range files {
		text += fmt.Sprintf("%d. %s\n", i+1, f.Name)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleExportCSV(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := exportKind(request)
	records := s.successfulRecords(kind)
	if len(records) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no successfully processed %s documents to export", kind)), nil
	}

	data, err := export.RecordsCSV(records)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := fmt.Sprintf("%s_records_%s.csv", kind, time.Now().Format("2006-01-02"))
	path := filepath.Join(s.config.OutputDir, name)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Exported %d record(s) to %s", len(records), path)), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts := s.queue.Counts()
	templates, err := s.store.ListTemplates()
	templateCount := len(templates)
	if err != nil {
		templateCount = 0
	}
	rates, err := s.store.ListRates()
	rateCount := len(rates)
	if err != nil {
		rateCount = 0
	}

	text := fmt.Sprintf("%s v%s\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Mode: %s\n", s.config.Mode)
	text += fmt.Sprintf("Data directory: %s\n", s.config.DataDir)
	text += fmt.Sprintf("Output directory: %s\n", s.config.OutputDir)
	text += fmt.Sprintf("Max file size: %d MB\n", s.config.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("Match threshold: %.2f\n", s.config.MatchThreshold)
	text += fmt.Sprintf("Templates stored: %d\n", templateCount)
	text += fmt.Sprintf("Rate catalog entries: %d\n", rateCount)
	text += fmt.Sprintf("Queue: %d success, %d error, %d in flight\n",
		counts[extract.StatusSuccess], counts[extract.StatusError],
		counts[extract.StatusPending]+counts[extract.StatusProcessing])
	text += fmt.Sprintf("Current template: %s\n", s.currentTemplate().Name)
	return mcp.NewToolResultText(text), nil
}

func exportKind(request mcp.CallToolRequest) document.DocumentKind {
	if k, ok := request.GetArguments()["kind"].(string); ok && k != "" {
		return document.DocumentKind(k)
	}
	return document.KindInvoice
}

// successfulRecords collects the records of completed queue items of one
// kind, in queue order.
func (s *Server) successfulRecords(kind document.DocumentKind) []*document.Record {
	var records []*document.Record
	for _, item := range s.queue.Items() {
		if item.Status == extract.StatusSuccess && item.Kind == kind && item.Record != nil {
			records = append(records, item.Record)
		}
	}
	return records
}

// Run starts the MCP server in the configured mode.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over stdin/stdout. Logging stays on stderr so
// the protocol stream is never polluted.
func (s *Server) runStdioMode(_ context.Context) error {
	s.log.Info("starting MCP server in stdio mode",
		zap.String("dataDir", s.config.DataDir),
		zap.String("outputDir", s.config.OutputDir))
	defer s.queue.Close()

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over streamable HTTP.
func (s *Server) runServerMode(_ context.Context) error {
	addr := s.config.Address()
	s.log.Info("starting MCP server in http mode", zap.String("addr", addr))
	defer s.queue.Close()

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	if err := httpServer.Start(addr); err != nil {
		return fmt.Errorf("failed to serve http: %w", err)
	}
	return nil
}
