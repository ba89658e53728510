package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inkform/docpress/internal/config"
	"github.com/inkform/docpress/internal/document"
	"github.com/inkform/docpress/internal/mcp"
	"github.com/inkform/docpress/internal/render"
	"github.com/inkform/docpress/internal/store"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// buildLogger constructs the process logger. Everything goes to stderr:
// in stdio mode stdout carries the MCP protocol stream and must stay clean.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, log *zap.Logger) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
		if err := <-serverErrCh; err != nil {
			log.Error("server shutdown with error", zap.Error(err))
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	log.Info("server stopped")
}

// runStdioMode handles stdio mode execution. The parent process controls
// the lifecycle; exit when stdin closes or serving fails.
func runStdioMode(ctx context.Context, server *mcp.Server, log *zap.Logger) {
	if err := server.Run(ctx); err != nil {
		log.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

// runRenderOnce renders a single record headlessly:
// docpress render <template.json> <record.json>
// The PDF lands in the configured output directory.
func runRenderOnce(templatePath, recordPath string) error {
	cfg := config.DefaultConfig()
	if dir := os.Getenv("DOCPRESS_OUTDIR"); dir != "" {
		cfg.OutputDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	tmplBody, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}
	var tmpl document.Template
	if err := json.Unmarshal(tmplBody, &tmpl); err != nil {
		return fmt.Errorf("decoding template: %w", err)
	}

	recBody, err := os.ReadFile(recordPath)
	if err != nil {
		return fmt.Errorf("reading record: %w", err)
	}
	var rec document.Record
	if err := json.Unmarshal(recBody, &rec); err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}
	rec.Recalc()

	path, err := render.New(log).RenderToFile(&tmpl, &rec, cfg.OutputDir)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// One-shot render mode bypasses the server entirely
	if len(os.Args) > 1 && os.Args[1] == "render" {
		if len(os.Args) != 4 {
			fmt.Fprintln(os.Stderr, "usage: docpress render <template.json> <record.json>")
			os.Exit(2)
		}
		if err := runRenderOnce(os.Args[2], os.Args[3]); err != nil {
			fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	log, err := buildLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.IsDebug() {
		log.Debug("starting with configuration", zap.String("config", cfg.String()))
	}

	st, err := store.New(cfg.DataDir, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer func() { _ = st.Close() }()

	server, err := mcp.NewServer(cfg, st, log)
	if err != nil {
		log.Fatal("failed to create MCP server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server, log)
	} else {
		runStdioMode(ctx, server, log)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("docpress\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
